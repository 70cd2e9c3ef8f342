package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/chiclink/api/internal/logging"
	"github.com/chiclink/api/internal/models"
	"github.com/chiclink/api/internal/mykafka"
)

type LikeHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

func (h *LikeHandler) AddLike(c echo.Context) error {
	senderID, err := uuid.Parse(c.QueryParam("senderId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid senderId")
	}
	receiverID, err := uuid.Parse(c.QueryParam("receiverId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receiverId")
	}

	if senderID == receiverID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot like yourself.")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("id IN ?", []uuid.UUID{senderID, receiverID}).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count != 2 {
		return echo.NewHTTPError(http.StatusNotFound, "User not found.")
	}

	var existing models.Like
	err = h.DB.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "You already liked this user.")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	like := models.Like{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Timestamp:  time.Now().UTC(),
	}
	if err := h.DB.Create(&like).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":       "like_created",
		"senderID":   senderID,
		"receiverID": receiverID,
	}, senderID.String())

	return c.JSON(http.StatusOK, like)
}

func (h *LikeHandler) GetUserLikes(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var likes []models.Like
	if err := h.DB.Where("receiver_id = ?", userID).Find(&likes).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, likes)
}

func (h *LikeHandler) DeleteLike(c echo.Context) error {
	senderID, err := uuid.Parse(c.Param("senderId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid senderId")
	}
	receiverID, err := uuid.Parse(c.Param("receiverId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid receiverId")
	}

	var like models.Like
	err = h.DB.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).First(&like).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Like not found.")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&like).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":       "like_deleted",
		"senderID":   senderID,
		"receiverID": receiverID,
	}, senderID.String())

	return c.NoContent(http.StatusNoContent)
}

func (h *LikeHandler) publish(c echo.Context, event map[string]interface{}, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "like_events", fmt.Sprint(key), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
