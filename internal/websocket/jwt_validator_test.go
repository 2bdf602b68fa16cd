package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	assert.NoError(t, claims.Validate(context.Background()))
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.osdesk.app")
	require.NoError(t, err)
	assert.NotNil(t, v.validator)
}

func TestAuth0JWTValidator_ValidateToken_Rejects(t *testing.T) {
	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.osdesk.app")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not a jwt", "invalid-token"},
		{"garbage segments", "a.b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth0ID, err := v.ValidateToken(context.Background(), tt.token)
			assert.Empty(t, auth0ID)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}
