// Package directory is the user directory: identity storage, lookup and
// password verification/management. The credential service consumes it as a
// capability and never touches password hashes itself.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chiclink/api/internal/hash"
	"github.com/chiclink/api/internal/models"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("User with this email already exists")
)

// PolicyError carries a directory validation message verbatim. Only the first
// violated rule is reported.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string { return e.Message }

type Directory struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Directory {
	return &Directory{DB: db}
}

// FindByEmail matches case-insensitively; email uniqueness is enforced the
// same way on create.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.DB.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (d *Directory) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := d.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (d *Directory) VerifyPassword(user *models.User, password string) bool {
	return hash.CheckPassword(user.PasswordHash, password)
}

// CreateUser validates the password against the directory policy, hashes it
// and inserts the record. The caller fills every identity field except the
// hash.
func (d *Directory) CreateUser(ctx context.Context, user *models.User, password string) error {
	if _, err := d.FindByEmail(ctx, user.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := validatePassword(password); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("cannot hash password: %w", err)
	}
	user.PasswordHash = pwHash

	if err := d.DB.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (d *Directory) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	if !d.VerifyPassword(user, oldPassword) {
		return &PolicyError{Message: "Incorrect password."}
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("cannot hash password: %w", err)
	}

	if err := d.DB.WithContext(ctx).Model(user).Update("password_hash", pwHash).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// validatePassword mirrors the identity defaults: length plus one digit, one
// lowercase, one uppercase and one non-alphanumeric character.
func validatePassword(password string) error {
	if len(password) < 6 {
		return &PolicyError{Message: "Passwords must be at least 6 characters."}
	}

	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		default:
			hasSymbol = true
		}
	}

	switch {
	case !hasDigit:
		return &PolicyError{Message: "Passwords must have at least one digit ('0'-'9')."}
	case !hasLower:
		return &PolicyError{Message: "Passwords must have at least one lowercase ('a'-'z')."}
	case !hasUpper:
		return &PolicyError{Message: "Passwords must have at least one uppercase ('A'-'Z')."}
	case !hasSymbol:
		return &PolicyError{Message: "Passwords must have at least one non alphanumeric character."}
	}
	return nil
}
