package handlers

import (
	"context"
	"net/http"

	"portfolio-backend/internal/log"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
	"portfolio-backend/internal/session"
)

type ChatHandler struct {
	store *session.Store
}

func NewChatHandler(store *session.Store) *ChatHandler {
	return &ChatHandler{store: store}
}

// SendMessage submits a visitor message and waits for the assistant reply.
// Blank input or a second message while one is in flight is a no-op and
// answers with accepted=false.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.store.Get(middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	// The reply belongs to the page, not the request: a dropped connection
	// must not cancel it.
	reply, accepted := p.Conversation.Submit(context.WithoutCancel(r.Context()), req.Message)
	if !accepted {
		writeJSON(w, http.StatusOK, models.ChatResponse{Accepted: false, Session: p.Snapshot()})
		return
	}

	html, err := services.RenderMarkdown(reply.Text)
	if err != nil {
		log.Warnw("Failed to render reply markdown", "session_id", p.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Accepted:  true,
		Reply:     reply.Text,
		ReplyHTML: html,
		Session:   p.Snapshot(),
	})
}
