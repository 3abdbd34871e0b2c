package handlers

import (
	"net/http"

	"portfolio-backend/internal/log"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/sections"
	"portfolio-backend/internal/session"
)

type SessionHandler struct {
	store *session.Store
	auth  *middleware.SessionAuth
}

func NewSessionHandler(store *session.Store, auth *middleware.SessionAuth) *SessionHandler {
	return &SessionHandler{store: store, auth: auth}
}

// page resolves the session named by the bearer token; on failure it has
// already written the response.
func (h *SessionHandler) page(w http.ResponseWriter, r *http.Request) (*session.Page, bool) {
	p, err := h.store.Get(middleware.GetSessionID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return nil, false
	}
	return p, true
}

// Create opens a page session at the fragment the browser loaded with.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	p := h.store.Create(req.Fragment)
	token, err := h.auth.GenerateSessionToken(p.ID)
	if err != nil {
		h.store.Delete(p.ID)
		log.Error("Failed to sign session token", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start session", r))
		return
	}

	writeJSON(w, http.StatusCreated, models.CreateSessionResponse{Token: token, Session: p.Snapshot()})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.page(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	id := middleware.GetSessionID(r.Context())
	if !h.store.Delete(id) {
		handleServiceError(w, r, &session.ErrNotFound{ID: id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req models.NavigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	p.Router.Navigate(req.Target)
	writeJSON(w, http.StatusOK, p.Snapshot())
}

// Fragment reports a fragment change that did not come from Navigate, such
// as back/forward or a hand-edited URL.
func (h *SessionHandler) Fragment(w http.ResponseWriter, r *http.Request) {
	var req models.FragmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	p.SetFragment(req.Fragment)
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (h *SessionHandler) Visibility(w http.ResponseWriter, r *http.Request) {
	var req models.VisibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	entries := make([]sections.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, sections.Entry{
			SectionID:      e.SectionID,
			IsIntersecting: e.IsIntersecting,
			Ratio:          e.Ratio,
		})
	}
	p.Tracker.HandleBatch(entries)
	writeJSON(w, http.StatusOK, p.Snapshot())
}

func (h *SessionHandler) Draft(w http.ResponseWriter, r *http.Request) {
	var req models.DraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, ok := h.page(w, r)
	if !ok {
		return
	}

	p.Conversation.SetDraft(req.Text)
	writeJSON(w, http.StatusOK, p.Snapshot())
}
