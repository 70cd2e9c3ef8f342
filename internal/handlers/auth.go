package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/chiclink/api/internal/directory"
	"github.com/chiclink/api/internal/logging"
	"github.com/chiclink/api/internal/mykafka"
	"github.com/chiclink/api/internal/service"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	Expiration   time.Time `json:"expiration"`
}

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Birthday        string `json:"birthday"`
	Gender          string `json:"gender"`
	Location        string `json:"location"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type changePasswordRequest struct {
	UserID      uuid.UUID `json:"userId"`
	OldPassword string    `json:"oldPassword"`
	NewPassword string    `json:"newPassword"`
}

type tokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusUnauthorized)
		}
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	h.publish(c, map[string]interface{}{
		"type":  "user_logged_in",
		"email": req.Email,
	}, req.Email)

	return c.JSON(http.StatusOK, loginResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		Expiration:   res.ExpiresAt,
	})
}

func (h *AuthHandler) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" ||
		req.Birthday == "" || req.Gender == "" || req.Location == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required field")
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "The password and confirmation password do not match.")
	}
	birthday, err := time.Parse("2006-01-02", req.Birthday)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid birthday")
	}

	user, err := h.Svc.Register(c.Request().Context(), service.RegisterParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  birthday,
		Gender:    req.Gender,
		Location:  req.Location,
		Password:  req.Password,
	})
	if err != nil {
		var policyErr *directory.PolicyError
		switch {
		case errors.Is(err, directory.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.As(err, &policyErr):
			return echo.NewHTTPError(http.StatusBadRequest, policyErr.Message)
		default:
			l.Error("register failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	h.publish(c, map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	}, user.ID.String())

	return c.NoContent(http.StatusCreated)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err := h.Svc.ChangePassword(c.Request().Context(), req.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		var policyErr *directory.PolicyError
		switch {
		case errors.Is(err, directory.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound)
		case errors.As(err, &policyErr):
			return echo.NewHTTPError(http.StatusBadRequest, policyErr.Message)
		default:
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Refresh(req.Token)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":        res.AccessToken,
		"refreshToken": res.RefreshToken,
	})
}

func (h *AuthHandler) publish(c echo.Context, event map[string]interface{}, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", fmt.Sprint(key), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
