package services

import (
	"context"
	"fmt"
	"strings"

	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/store"
)

// AboutService serves the singleton about profile
type AboutService struct {
	store store.AboutStore
}

// NewAboutService creates a new AboutService
func NewAboutService(s store.AboutStore) *AboutService {
	return &AboutService{store: s}
}

// Get returns the profile, or nil when none has been saved
func (s *AboutService) Get(ctx context.Context) (*models.About, error) {
	about, err := s.store.GetAbout(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get about: %w", err)
	}
	return about, nil
}

// Save validates and replaces the profile
func (s *AboutService) Save(ctx context.Context, a models.About) (*models.About, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Description = strings.TrimSpace(a.Description)
	a.ProfilePicture = strings.TrimSpace(a.ProfilePicture)

	if a.Name == "" {
		return nil, invalid(`"name" is required`)
	}
	if a.Description == "" {
		return nil, invalid(`"description" is required`)
	}

	skills := make([]string, 0, len(a.Skills))
	for _, skill := range a.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	a.Skills = skills

	if err := s.store.PutAbout(ctx, &a); err != nil {
		return nil, fmt.Errorf("failed to save about: %w", err)
	}
	return &a, nil
}
