package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftfolio.dev/internal/auth"
	"craftfolio.dev/internal/models"
)

func newTestAuthService(t *testing.T) (*AuthService, *auth.TokenIssuer) {
	t.Helper()
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	issuer := auth.NewTokenIssuer([]byte("test-secret"), time.Hour, "craftfolio")
	accounts := []models.Account{{ID: 1, Username: "admin", PasswordHash: hash}}
	return NewAuthService(accounts, issuer), issuer
}

func TestAuthService_LoginSuccess(t *testing.T) {
	t.Parallel()
	svc, issuer := newTestAuthService(t)

	token, err := svc.Login(context.Background(), "admin", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, 1, id.AccountID)
	assert.Equal(t, "admin", id.Username)
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "battery staple"},
		{"unknown user", "root", "correct horse"},
		{"username is case-sensitive", "Admin", "correct horse"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token, err := svc.Login(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Empty(t, token)
		})
	}
}

func TestAuthService_LoginMissingFields(t *testing.T) {
	t.Parallel()
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
