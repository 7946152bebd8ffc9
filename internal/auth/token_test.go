package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftfolio.dev/internal/models"
)

var testSecret = []byte("test-secret-test-secret-test-secret")

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour, "craftfolio")
	token, expires, err := issuer.Issue(models.Identity{AccountID: 1, Username: "rilians"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	id, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, 1, id.AccountID)
	assert.Equal(t, "rilians", id.Username)
}

func TestNewTokenIssuer_DefaultTTL(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, 0, "craftfolio")
	assert.Equal(t, time.Hour, issuer.TTL())
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(testSecret, time.Hour, "craftfolio").WithClock(func() time.Time { return issuedAt })

	token, _, err := issuer.Issue(models.Identity{AccountID: 1, Username: "rilians"})
	require.NoError(t, err)

	// Still valid just before expiry
	before := issuer.WithClock(func() time.Time { return issuedAt.Add(59 * time.Minute) })
	_, err = before.Parse(token)
	require.NoError(t, err)

	after := issuer.WithClock(func() time.Time { return issuedAt.Add(61 * time.Minute) })
	_, err = after.Parse(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewTokenIssuer(testSecret, time.Hour, "craftfolio").
		Issue(models.Identity{AccountID: 1, Username: "rilians"})
	require.NoError(t, err)

	other := NewTokenIssuer([]byte("another-secret-another-secret-xx"), time.Hour, "craftfolio")
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Tampered(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour, "craftfolio")
	token, _, err := issuer.Issue(models.Identity{AccountID: 1, Username: "rilians"})
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = issuer.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		AccountID: 1,
		Username:  "rilians",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Hour, "craftfolio").Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer(testSecret, time.Hour, "craftfolio").Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
