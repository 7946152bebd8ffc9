// Package store persists projects, the about profile and contact messages.
package store

import (
	"context"
	"errors"
	"strings"

	"craftfolio.dev/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("record not found")

// ProjectFilter selects a window of projects
type ProjectFilter struct {
	// Category matches exactly when non-empty
	Category string
	// Search matches title or description, case-insensitively
	Search string
	Limit  int
	Offset int
}

// ProjectStore persists projects
type ProjectStore interface {
	ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int, error)
	AllProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	InsertProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id string) error
}

// AboutStore persists the singleton about profile
type AboutStore interface {
	// GetAbout returns nil and no error when no profile has been saved
	GetAbout(ctx context.Context) (*models.About, error)
	PutAbout(ctx context.Context, a *models.About) error
}

// ContactStore persists contact messages
type ContactStore interface {
	InsertContact(ctx context.Context, m *models.ContactMessage) error
	ListContacts(ctx context.Context, limit int) ([]models.ContactMessage, error)
}

// Store is the full persistence surface used by the services
type Store interface {
	ProjectStore
	AboutStore
	ContactStore
	Ping(ctx context.Context) error
	Close() error
}

// likeEscaper escapes LIKE wildcards using '!' as the escape character
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a lowercase substring pattern for LIKE ... ESCAPE '!'
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
