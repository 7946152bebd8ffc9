package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/services"
)

// ProjectHandler handles project-related endpoints
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(ps *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: ps}
}

// ListProjects handles GET /api/projects?category=&search=&page=&limit=
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.ProjectQuery{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("search")),
		Page:     parseIntParam(r, "page", services.DefaultPage),
		Limit:    parseIntParam(r, "limit", services.DefaultLimit),
	}

	page, err := h.projectService.List(r.Context(), query)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch projects.")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// ListAllProjects handles GET /api/projects/admin
func (h *ProjectHandler) ListAllProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListAll(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch projects.")
		return
	}

	respondJSON(w, http.StatusOK, models.ProjectList{Projects: projects})
}

// GetProject handles GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch project.")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in models.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create project.")
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

// UpdateProject handles PUT /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.ProjectInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projectService.Update(r.Context(), id, in)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update project.")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// DeleteProject handles DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err, "Failed to delete project.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam parses an integer query parameter with a default value
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}
