package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chiclink/api/internal/logging"
	"github.com/chiclink/api/internal/models"
	"github.com/chiclink/api/internal/service/search"
)

type ProfileHandler struct {
	DB        *gorm.DB
	ES        *elasticsearch.Client
	Index     string
	UploadDir string
}

type photoResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

type profileResponse struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Description string          `json:"description"`
	Interests   string          `json:"interests"`
	Photos      []photoResponse `json:"photos"`
}

func newProfileResponse(profile *models.Profile) profileResponse {
	photos := make([]photoResponse, len(profile.Photos))
	for i, p := range profile.Photos {
		photos[i] = photoResponse{ID: p.ID, URL: p.URL}
	}
	return profileResponse{
		ID:          profile.ID,
		UserID:      profile.UserID,
		Description: profile.Description,
		Interests:   profile.Interests,
		Photos:      photos,
	}
}

func (h *ProfileHandler) GetProfileByProfileID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("profileId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile id")
	}
	return h.getProfile(c, "id = ?", id)
}

func (h *ProfileHandler) GetProfileByUserID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return h.getProfile(c, "user_id = ?", id)
}

func (h *ProfileHandler) getProfile(c echo.Context, query string, id uuid.UUID) error {
	var profile models.Profile
	err := h.DB.Preload("Photos").Where(query, id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, newProfileResponse(&profile))
}

func (h *ProfileHandler) CreateProfileForUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var existing models.Profile
	if err := h.DB.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Profile already exists for this user")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile := models.Profile{
		UserID:      userID,
		Description: c.FormValue("description"),
		Interests:   c.FormValue("interests"),
	}
	if err := h.DB.Create(&profile).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if form, err := c.MultipartForm(); err == nil {
		if photos := form.File["photos"]; len(photos) > 0 {
			if err := h.savePhotos(photos, profile.ID); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
	}

	h.indexProfile(c, &profile)

	return c.NoContent(http.StatusCreated)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	profileID, err := uuid.Parse(c.Param("profileId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile id")
	}

	var req struct {
		Description string `json:"description"`
		Interests   string `json:"interests"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var profile models.Profile
	if err := h.DB.Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile.Description = req.Description
	profile.Interests = req.Interests

	if err := h.DB.Save(&profile).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.indexProfile(c, &profile)

	return c.NoContent(http.StatusNoContent)
}

// UpdateProfilePhotos replaces every stored photo, files included.
func (h *ProfileHandler) UpdateProfilePhotos(c echo.Context) error {
	profileID, err := uuid.Parse(c.Param("profileId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile id")
	}

	var profile models.Profile
	if err := h.DB.Preload("Photos").Where("id = ?", profileID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	for _, photo := range profile.Photos {
		path := filepath.Join(h.UploadDir, filepath.Base(photo.URL))
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.FromContext(c.Request().Context()).Warn("cannot remove photo file", "path", path, "error", err)
		}
		if err := h.DB.Delete(&photo).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := h.savePhotos(form.File["photos"], profileID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// savePhotos writes each upload under a uuid-prefixed name so client file
// names never collide, then records the public URL.
func (h *ProfileHandler) savePhotos(photos []*multipart.FileHeader, profileID uuid.UUID) error {
	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return err
	}

	for _, file := range photos {
		name := uuid.New().String() + "_" + filepath.Base(file.Filename)

		src, err := file.Open()
		if err != nil {
			return err
		}
		dst, err := os.Create(filepath.Join(h.UploadDir, name))
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}

		photo := models.Photo{
			ProfileID: profileID,
			URL:       "/uploads/" + name,
		}
		if err := h.DB.Create(&photo).Error; err != nil {
			return err
		}
	}
	return nil
}

func (h *ProfileHandler) indexProfile(c echo.Context, profile *models.Profile) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc := search.ProfileDoc{
		ID:          profile.ID.String(),
		UserID:      profile.UserID.String(),
		Description: profile.Description,
		Interests:   profile.Interests,
	}
	if err := search.IndexProfile(ctx, h.ES, h.Index, doc); err != nil {
		logging.FromContext(c.Request().Context()).Error("es index error", "error", err)
	}
}
