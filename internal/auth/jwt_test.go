package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "fan@example.com")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "fan@example.com", claims.Email)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "fan@example.com")
	require.NoError(t, err)

	_, err = NewJWTService("secret-b", 1).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewJWTService("secret", 1).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
