package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiclink/api/internal/models"
)

func (env *testEnv) doProfileForm(t *testing.T, method string, fields map[string]string, photos map[string][]byte) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range photos {
		fw, err := w.CreateFormFile("photos", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, "/", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func TestCreateProfileForUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "P@ss1word")

	rec, c := env.doProfileForm(t, http.MethodPost, map[string]string{
		"description": "likes long walks",
		"interests":   "hiking, jazz",
	}, map[string][]byte{
		"me.jpg": []byte("fake-jpeg-bytes"),
	})
	c.SetParamNames("userId")
	c.SetParamValues(user.ID.String())

	require.NoError(t, env.Profiles.CreateProfileForUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var profile models.Profile
	require.NoError(t, env.DB.Preload("Photos").Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "likes long walks", profile.Description)
	assert.Equal(t, "hiking, jazz", profile.Interests)
	require.Len(t, profile.Photos, 1)

	// File lands in the upload dir under a uuid-prefixed name.
	stored := filepath.Join(env.Profiles.UploadDir, filepath.Base(profile.Photos[0].URL))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake-jpeg-bytes"), data)
	assert.Contains(t, profile.Photos[0].URL, "_me.jpg")
}

func TestCreateProfileForUser_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doProfileForm(t, http.MethodPost, map[string]string{"description": "x"}, nil)
	c.SetParamNames("userId")
	c.SetParamValues(uuid.NewString())

	he := httpError(t, env.Profiles.CreateProfileForUser(c))
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCreateProfileForUser_AlreadyExists(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "P@ss1word")

	rec, c := env.doProfileForm(t, http.MethodPost, map[string]string{"description": "x"}, nil)
	c.SetParamNames("userId")
	c.SetParamValues(user.ID.String())
	require.NoError(t, env.Profiles.CreateProfileForUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	_, c = env.doProfileForm(t, http.MethodPost, map[string]string{"description": "y"}, nil)
	c.SetParamNames("userId")
	c.SetParamValues(user.ID.String())

	he := httpError(t, env.Profiles.CreateProfileForUser(c))
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Equal(t, "Profile already exists for this user", he.Message)
}

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "P@ss1word")

	profile := models.Profile{UserID: user.ID, Description: "desc", Interests: "art"}
	require.NoError(t, env.DB.Create(&profile).Error)
	photo := models.Photo{ProfileID: profile.ID, URL: "/uploads/x.jpg"}
	require.NoError(t, env.DB.Create(&photo).Error)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("profileId")
	c.SetParamValues(profile.ID.String())
	require.NoError(t, env.Profiles.GetProfileByProfileID(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp profileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, profile.ID, resp.ID)
	assert.Equal(t, user.ID, resp.UserID)
	require.Len(t, resp.Photos, 1)
	assert.Equal(t, "/uploads/x.jpg", resp.Photos[0].URL)

	recByUser := httptest.NewRecorder()
	cByUser := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), recByUser)
	cByUser.SetParamNames("userId")
	cByUser.SetParamValues(user.ID.String())
	require.NoError(t, env.Profiles.GetProfileByUserID(cByUser))
	require.Equal(t, http.StatusOK, recByUser.Code)
}

func TestGetProfile_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("profileId")
	c.SetParamValues(uuid.NewString())

	he := httpError(t, env.Profiles.GetProfileByProfileID(c))
	assert.Equal(t, http.StatusNotFound, he.Code)
	assert.Equal(t, "Profile not found", he.Message)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "P@ss1word")

	profile := models.Profile{UserID: user.ID, Description: "old", Interests: "old"}
	require.NoError(t, env.DB.Create(&profile).Error)

	rec, c := env.doJSONRequest(http.MethodPut, "/", map[string]string{
		"description": "new description",
		"interests":   "new interests",
	})
	c.SetParamNames("profileId")
	c.SetParamValues(profile.ID.String())

	require.NoError(t, env.Profiles.UpdateProfile(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var fresh models.Profile
	require.NoError(t, env.DB.Where("id = ?", profile.ID).First(&fresh).Error)
	assert.Equal(t, "new description", fresh.Description)
	assert.Equal(t, "new interests", fresh.Interests)
}

func TestUpdateProfilePhotos_ReplacesAll(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@x.com", "P@ss1word")

	rec, c := env.doProfileForm(t, http.MethodPost, map[string]string{"description": "x"}, map[string][]byte{
		"old.jpg": []byte("old-bytes"),
	})
	c.SetParamNames("userId")
	c.SetParamValues(user.ID.String())
	require.NoError(t, env.Profiles.CreateProfileForUser(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var profile models.Profile
	require.NoError(t, env.DB.Preload("Photos").Where("user_id = ?", user.ID).First(&profile).Error)
	require.Len(t, profile.Photos, 1)
	oldPath := filepath.Join(env.Profiles.UploadDir, filepath.Base(profile.Photos[0].URL))

	recUpd, cUpd := env.doProfileForm(t, http.MethodPut, nil, map[string][]byte{
		"new1.jpg": []byte("new-bytes-1"),
		"new2.jpg": []byte("new-bytes-2"),
	})
	cUpd.SetParamNames("profileId")
	cUpd.SetParamValues(profile.ID.String())
	require.NoError(t, env.Profiles.UpdateProfilePhotos(cUpd))
	require.Equal(t, http.StatusNoContent, recUpd.Code)

	_, err := os.Stat(oldPath)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var photos []models.Photo
	require.NoError(t, env.DB.Where("profile_id = ?", profile.ID).Find(&photos).Error)
	assert.Len(t, photos, 2)
}
