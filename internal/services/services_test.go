package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"craftfolio.dev/internal/models"
	"craftfolio.dev/internal/store"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// setupTestStore opens an in-memory sqlite store with the schema applied
func setupTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	s, err := store.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err, "Failed to create test database")
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// steppingClock returns a clock that advances one second per call
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func validInput(title string, category models.Category) models.ProjectInput {
	return models.ProjectInput{
		Title:       title,
		Description: "A project worth showing off",
		Link:        "https://github.com/example/project",
		Thumbnail:   "/uploads/" + title + ".png",
		Category:    category,
	}
}
