package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/chiclink/api/internal/directory"
	"github.com/chiclink/api/internal/hash"
	"github.com/chiclink/api/internal/models"
	"github.com/chiclink/api/internal/mykafka"
	"github.com/chiclink/api/internal/service"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Auth     *AuthHandler
	Users    *UserHandler
	Profiles *ProfileHandler
	Likes    *LikeHandler
	Messages *MessageHandler

	Secret []byte
}

func InitTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.Photo{}, &models.Like{}, &models.Message{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := InitTestDB(t)
	secret := []byte("test-jwt-secret")

	dir := directory.New(db)
	svc := service.NewAuthService(dir, service.TokenConfig{
		Secret:   secret,
		Issuer:   "chiclink-test",
		Audience: "chiclink-clients",
	})

	prod := &mykafka.Producer{}

	return &testEnv{
		T:        t,
		E:        echo.New(),
		DB:       db,
		Auth:     &AuthHandler{Svc: svc, Producer: prod},
		Users:    &UserHandler{DB: db},
		Profiles: &ProfileHandler{DB: db, UploadDir: t.TempDir()},
		Likes:    &LikeHandler{DB: db, Producer: prod},
		Messages: &MessageHandler{DB: db, Producer: prod},
		Secret:   secret,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: pwHash,
		Phone:        "+15550000000",
		Birthday:     time.Date(1995, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:       "female",
		Location:     "Paris",
	}
	require.NoError(t, env.DB.Create(user).Error)
	return user
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	return he
}
