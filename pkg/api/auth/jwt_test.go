package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{Secret: "short"})
	assert.ErrorIs(t, err, ErrInvalidSecretLength)
}

func TestGenerateAndValidate(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: testSecret})
	require.NoError(t, err)

	tok, err := svc.GenerateToken("files-app")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "files-app", claims.Client)
	assert.Equal(t, "nsmd", claims.Issuer)
}

func TestValidateToken(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: testSecret, TokenDuration: time.Minute})
	require.NoError(t, err)
	tok, err := svc.GenerateToken("c")
	require.NoError(t, err)

	other, err := NewJWTService(JWTConfig{Secret: testSecret + "x"})
	require.NoError(t, err)

	expired, err := NewJWTService(JWTConfig{Secret: testSecret, TokenDuration: time.Minute})
	require.NoError(t, err)
	expired.now = func() time.Time { return time.Now().Add(time.Hour) }

	wrongIssuer, err := NewJWTService(JWTConfig{Secret: testSecret, Issuer: "someone-else"})
	require.NoError(t, err)

	tests := []struct {
		name string
		svc  *JWTService
		tok  string
		want error
	}{
		{"garbage", svc, "not-a-token", ErrInvalidToken},
		{"wrong secret", other, tok.AccessToken, ErrInvalidToken},
		{"expired", expired, tok.AccessToken, ErrExpiredToken},
		{"wrong issuer", wrongIssuer, tok.AccessToken, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateToken(tt.tok)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
