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

type MessageHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type createMessageRequest struct {
	SenderID       uuid.UUID `json:"senderId"`
	ReceiverID     uuid.UUID `json:"receiverId"`
	MessageContent string    `json:"messageContent"`
}

func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req createMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.MessageContent == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message content is required")
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("id IN ?", []uuid.UUID{req.SenderID, req.ReceiverID}).Count(&count).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if count != 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid sender or receiver.")
	}

	message := models.Message{
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		MessageContent: req.MessageContent,
		Timestamp:      time.Now().UTC(),
	}
	if err := h.DB.Create(&message).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]interface{}{
		"type":       "message_sent",
		"messageID":  message.ID,
		"senderID":   message.SenderID,
		"receiverID": message.ReceiverID,
	}, message.SenderID.String())

	return c.JSON(http.StatusOK, message)
}

func (h *MessageHandler) GetSentMessages(c echo.Context) error {
	return h.listMessages(c, "sender_id")
}

func (h *MessageHandler) GetReceivedMessages(c echo.Context) error {
	return h.listMessages(c, "receiver_id")
}

func (h *MessageHandler) listMessages(c echo.Context, column string) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var messages []models.Message
	if err := h.DB.Where(column+" = ?", userID).Order("timestamp ASC").Find(&messages).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) publish(c echo.Context, event map[string]interface{}, key string) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "message_events", fmt.Sprint(key), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}
