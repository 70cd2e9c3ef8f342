// Package service implements the credential and token lifecycle: login,
// registration, password change and refresh-token exchange.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chiclink/api/internal/directory"
	"github.com/chiclink/api/internal/logging"
	"github.com/chiclink/api/internal/models"
)

const accessTokenTTL = 3 * time.Hour

var (
	// ErrUnauthorized covers both unknown email and wrong password so the
	// caller cannot tell registered emails apart.
	ErrUnauthorized = errors.New("invalid email or password")
	ErrInvalidToken = errors.New("invalid token")
)

// UserDirectory is the identity capability the service consumes. Password
// hashes stay behind it.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	CreateUser(ctx context.Context, user *models.User, password string) error
	ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error
}

// TokenConfig is read once at startup and immutable afterwards.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

type AuthService struct {
	Directory UserDirectory
	Tokens    TokenConfig
}

func NewAuthService(dir UserDirectory, tokens TokenConfig) *AuthService {
	return &AuthService{Directory: dir, Tokens: tokens}
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Birthday  time.Time
	Gender    string
	Location  string
	Password  string
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		l.Error("directory lookup failed", "error", err)
		return nil, err
	}
	if !s.Directory.VerifyPassword(user, password) {
		return nil, ErrUnauthorized
	}

	access, expiresAt, err := s.issueAccessToken(jwt.MapClaims{"email": user.Email})
	if err != nil {
		l.Error("cannot sign access token", "error", err)
		return nil, err
	}

	refresh, err := NewRefreshToken()
	if err != nil {
		l.Error("cannot generate refresh token", "error", err)
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	user := &models.User{
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Email:     params.Email,
		Phone:     params.Phone,
		Birthday:  params.Birthday,
		Gender:    params.Gender,
		Location:  params.Location,
	}

	if err := s.Directory.CreateUser(ctx, user, params.Password); err != nil {
		var policyErr *directory.PolicyError
		if !errors.Is(err, directory.ErrEmailTaken) && !errors.As(err, &policyErr) {
			l.Error("directory create failed", "error", err)
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.Directory.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.Directory.ChangePassword(ctx, user, oldPassword, newPassword)
}

// Refresh exchanges an expired but correctly signed access token for a fresh
// token pair. The recovered claim set is re-issued as is, with a new
// expiration. The accompanying opaque refresh token is regenerated; it is not
// stored and therefore not checked (see DESIGN.md).
func (s *AuthService) Refresh(expiredToken string) (*LoginResult, error) {
	claims, err := s.parseExpiredToken(expiredToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	access, expiresAt, err := s.issueAccessToken(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := NewRefreshToken()
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}
