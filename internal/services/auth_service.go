package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"craftfolio.dev/internal/auth"
	"craftfolio.dev/internal/models"
)

// AuthService verifies admin credentials and issues bearer tokens
type AuthService struct {
	accounts []models.Account
	tokens   *auth.TokenIssuer
	// dummyHash is checked when no account matches so both failure paths cost one bcrypt compare
	dummyHash string
}

// NewAuthService creates an AuthService over a fixed set of configured accounts
func NewAuthService(accounts []models.Account, tokens *auth.TokenIssuer) *AuthService {
	dummy, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		slog.Error("failed to prepare dummy password hash", "error", err)
	}
	return &AuthService{accounts: accounts, tokens: tokens, dummyHash: dummy}
}

// Login checks the credentials and returns a signed token on success
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	// blank credentials are reported the same as wrong ones
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	account, found := s.lookup(username)
	hash := s.dummyHash
	if found {
		hash = account.PasswordHash
	}

	if err := auth.CheckPassword(password, hash); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			slog.WarnContext(ctx, "password check failed", "username", username, "error", err)
		}
		return "", ErrInvalidCredentials
	}
	if !found {
		return "", ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(models.Identity{AccountID: account.ID, Username: account.Username})
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.InfoContext(ctx, "admin logged in", "username", account.Username, "expires", expires)
	return token, nil
}

// lookup finds an account by exact, case-sensitive username
func (s *AuthService) lookup(username string) (models.Account, bool) {
	for _, a := range s.accounts {
		if a.Username == username {
			return a, true
		}
	}
	return models.Account{}, false
}
