package handlers

import (
	"context"
	"net/http"

	"portfolio-backend/internal/models"
)

type contactSender interface {
	Send(ctx context.Context, req models.ContactRequest) error
}

type ContactHandler struct {
	contact contactSender
}

func NewContactHandler(contact contactSender) *ContactHandler {
	return &ContactHandler{contact: contact}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.contact.Send(r.Context(), req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ContactResponse{Success: true})
}
