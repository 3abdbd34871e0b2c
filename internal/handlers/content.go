package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-backend/internal/content"
	"portfolio-backend/internal/services"
)

type ContentHandler struct {
	store *content.Store
}

func NewContentHandler(store *content.Store) *ContentHandler {
	return &ContentHandler{store: store}
}

// Get returns everything the page renders: personal info, skills, projects.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Portfolio())
}

func (h *ContentHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	project, ok := h.store.Project(id)
	if !ok {
		handleServiceError(w, r, &services.NotFoundError{Message: "Project not found"})
		return
	}
	writeJSON(w, http.StatusOK, project)
}
