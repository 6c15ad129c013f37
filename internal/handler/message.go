package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
)

// MessageHandler lets users contact a horse's owner and manage their
// inbox.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Horses   *repository.HorseRepo
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *repository.MessageRepo, horses *repository.HorseRepo) *MessageHandler {
	return &MessageHandler{Messages: messages, Horses: horses}
}

// Send handles POST /v1/messages.  The receiver is resolved from the
// horse's owner chain, so senders never address user ids directly.
func (h *MessageHandler) Send(c echo.Context) error {
	var req struct {
		MicrochipID string `json:"microchip_id"`
		Subject     string `json:"subject"`
		Content     string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MicrochipID == "" || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "microchip_id and content are required"})
	}

	profile, err := h.Horses.GetProfile(c.Request().Context(), req.MicrochipID)
	if err != nil {
		if errors.Is(err, repository.ErrHorseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "horse not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if profile.OwnerUserID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "this horse has no registered owner to contact"})
	}
	a := actor(c)
	if *profile.OwnerUserID == a.ID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you already own this horse"})
	}

	m := &model.Message{
		SenderID:    a.ID,
		ReceiverID:  *profile.OwnerUserID,
		MicrochipID: &req.MicrochipID,
		Subject:     req.Subject,
		Content:     req.Content,
		Timestamp:   time.Now().UTC(),
	}
	if err := h.Messages.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": m.ID})
}

// Inbox handles GET /v1/messages/inbox, newest first.
func (h *MessageHandler) Inbox(c echo.Context) error {
	msgs, err := h.Messages.ListInbox(c.Request().Context(), actor(c).ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": msgs})
}

// MarkRead handles POST /v1/messages/:id/read.  Only the receiver may
// mark a message as read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	err = h.Messages.MarkRead(c.Request().Context(), id, actor(c).ID)
	switch {
	case errors.Is(err, repository.ErrMessageNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the receiver can mark a message as read"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"read": true})
}
