package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateAccessToken(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
		role   string
	}{
		{"Customer token", 1, "test@example.com", "user"},
		{"Admin token", 2, "admin@example.com", "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, claims, err := GenerateAccessToken(tt.userID, tt.email, tt.role, testSecret, 15*time.Minute)
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			require.NotNil(t, claims)
			assert.NotEmpty(t, claims.ID)
			assert.Equal(t, tt.role, claims.Role)
		})
	}
}

func TestGenerateAccessToken_UniqueIDs(t *testing.T) {
	_, c1, err := GenerateAccessToken(1, "a@example.com", "user", testSecret, time.Minute)
	require.NoError(t, err)
	_, c2, err := GenerateAccessToken(1, "a@example.com", "user", testSecret, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestValidateToken(t *testing.T) {
	userID := uint(123)
	email := "test@example.com"
	role := "user"

	token, _, err := GenerateAccessToken(userID, email, role, testSecret, 15*time.Minute)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: userID}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"Valid token", token, testSecret, nil},
		{"Invalid secret", token, "wrong-secret", ErrInvalidToken},
		{"Invalid token format", "invalid.token.format", testSecret, ErrInvalidToken},
		{"Empty token", "", testSecret, ErrInvalidToken},
		{"Unsigned token", noneToken, testSecret, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, userID, claims.UserID)
			assert.Equal(t, email, claims.Email)
			assert.Equal(t, role, claims.Role)
			assert.Equal(t, "123", claims.Subject)
		})
	}
}

func TestExpiredToken(t *testing.T) {
	token, _, err := GenerateAccessToken(1, "test@example.com", "user", testSecret, -time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestTokenClaims(t *testing.T) {
	token, _, err := GenerateAccessToken(42, "user@example.com", "admin", testSecret, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC)

	a := GenerateOrderNumber(now)
	b := GenerateOrderNumber(now)

	assert.Regexp(t, `^ORD-20250114-[0-9A-F]{8}$`, a)
	assert.NotEqual(t, a, b)
}
