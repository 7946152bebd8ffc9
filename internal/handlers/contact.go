package handlers

import (
	"log/slog"
	"net/http"

	"craftfolio.dev/internal/services"
)

// ContactHandler accepts messages from the contact form
type ContactHandler struct {
	contactService *services.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(cs *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: cs}
}

// ContactRequest is the body of POST /api/contact
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// SendMessage handles POST /api/contact
func (h *ContactHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.contactService.Submit(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send message.")
		return
	}

	slog.InfoContext(r.Context(), "contact message received", "id", msg.ID)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Message sent successfully!"})
}
