package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/store"
)

// Pagination defaults for project listings
const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 100
)

// ProjectService handles project-related operations
type ProjectService struct {
	store store.ProjectStore
	now   func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(s store.ProjectStore) *ProjectService {
	return &ProjectService{store: s, now: time.Now}
}

// List returns one page of projects matching the category and search filters
func (s *ProjectService) List(ctx context.Context, q models.ProjectQuery) (*models.ProjectPage, error) {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	filter := store.ProjectFilter{
		Search: q.Search,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	// a page whose offset overflows int is past the end; count only
	if page-1 > math.MaxInt/limit {
		filter.Limit = 0
		filter.Offset = 0
	}
	if q.Category != "" && q.Category != string(models.CategoryAll) {
		filter.Category = q.Category
	}

	projects, total, err := s.store.ListProjects(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return &models.ProjectPage{
		Projects:    projects,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		Total:       total,
	}, nil
}

// ListAll returns every project without filtering or pagination
func (s *ProjectService) ListAll(ctx context.Context) ([]models.Project, error) {
	projects, err := s.store.AllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetByID returns a specific project by ID
func (s *ProjectService) GetByID(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// Create validates and stores a new project
func (s *ProjectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	in = normalizeProject(in)
	if err := validateProject(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	project := &models.Project{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Link:        in.Link,
		Thumbnail:   in.Thumbnail,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.InsertProject(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// Update replaces all mutable fields of an existing project
func (s *ProjectService) Update(ctx context.Context, id string, in models.ProjectInput) (*models.Project, error) {
	in = normalizeProject(in)
	if err := validateProject(in); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Title = in.Title
	existing.Description = in.Description
	existing.Link = in.Link
	existing.Thumbnail = in.Thumbnail
	existing.Category = in.Category
	existing.UpdatedAt = s.now().UTC()

	err = s.store.UpdateProject(ctx, existing)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return existing, nil
}

// Delete removes a project
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteProject(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
