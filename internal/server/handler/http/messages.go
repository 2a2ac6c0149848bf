package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/middleware"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"go.uber.org/zap"
)

// MessageService defines the inbox operations required by the HTTP handlers.
type MessageService interface {
	Submit(ctx context.Context, username, content string) error
	List(ctx context.Context, ownerID string) ([]models.Message, error)
	AcceptingMessages(ctx context.Context, ownerID string) (bool, error)
	SetAcceptingMessages(ctx context.Context, ownerID string, accept bool) error
	DeleteMessage(ctx context.Context, ownerID, messageID string) error
}

// MessageHandler handles anonymous submissions and the owner's inbox.
type MessageHandler struct {
	MessageService MessageService
	Log            *zap.Logger
}

// SendMessageRequest represents the JSON payload of an anonymous message.
type SendMessageRequest struct {
	Username string `json:"username"`
	Content  string `json:"content"`
}

// AcceptMessagesRequest represents the JSON payload toggling the inbox.
type AcceptMessagesRequest struct {
	AcceptMessages *bool `json:"acceptMessages"`
}

// SendMessage handles POST /api/send-message.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.MessageService.Submit(r.Context(), req.Username, req.Content); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "Message sent successfully", nil)
}

// GetMessages handles GET /api/get-messages.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	messages, err := h.MessageService.List(r.Context(), owner.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "Messages fetched successfully", envelope{"messages": messages})
}

// AcceptMessagesStatus handles GET /api/accept-messages.
func (h *MessageHandler) AcceptMessagesStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	accepting, err := h.MessageService.AcceptingMessages(r.Context(), owner.ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "User message setting fetched successfully", envelope{"isAcceptingMessages": accepting})
}

// UpdateAcceptMessages handles POST /api/accept-messages.
func (h *MessageHandler) UpdateAcceptMessages(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	var req AcceptMessagesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if req.AcceptMessages == nil {
		writeError(w, h.Log, common.Invalid("acceptMessages", "acceptMessages must be a boolean"))
		return
	}
	if err := h.MessageService.SetAcceptingMessages(r.Context(), owner.ID, *req.AcceptMessages); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "Message acceptance status updated successfully", envelope{"isAcceptingMessages": *req.AcceptMessages})
}

// DeleteMessage handles DELETE /api/delete-message/{id}.
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(w, r)
	if !ok {
		return
	}
	if err := h.MessageService.DeleteMessage(r.Context(), owner.ID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeOK(w, "Message Deleted Successfully", nil)
}

func (h *MessageHandler) owner(w http.ResponseWriter, r *http.Request) (models.SessionUser, bool) {
	user, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.Log, common.ErrUnauthenticated)
	}
	return user, ok
}
