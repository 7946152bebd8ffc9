package handlers

import (
	"net/http"

	"craftfolio.dev/internal/services"
)

// AboutHandler serves the about profile
type AboutHandler struct {
	aboutService *services.AboutService
}

// NewAboutHandler creates a new AboutHandler
func NewAboutHandler(as *services.AboutService) *AboutHandler {
	return &AboutHandler{aboutService: as}
}

// GetAbout handles GET /api/about. It answers null until a profile is saved.
func (h *AboutHandler) GetAbout(w http.ResponseWriter, r *http.Request) {
	about, err := h.aboutService.Get(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch about data.")
		return
	}

	respondJSON(w, http.StatusOK, about)
}
