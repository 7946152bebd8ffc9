package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/store"
)

// ContactService accepts messages from the contact form
type ContactService struct {
	store store.ContactStore
	now   func() time.Time
}

// NewContactService creates a new ContactService
func NewContactService(s store.ContactStore) *ContactService {
	return &ContactService{store: s, now: time.Now}
}

// Submit sanitizes, validates and stores a visitor message
func (s *ContactService) Submit(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	name = sanitizeContact(name)
	email = sanitizeContact(email)
	message = sanitizeContact(message)

	if err := validateContact(name, email, message); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertContact(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}
	return msg, nil
}

// List returns up to limit messages, newest first
func (s *ContactService) List(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if limit < 1 {
		limit = 50
	}
	msgs, err := s.store.ListContacts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return msgs, nil
}
