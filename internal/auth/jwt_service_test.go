package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	tokenID, token, err := svc.GenerateSessionToken(42, "a@x.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenID)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, tokenID, claims.ID)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("test-secret", -time.Minute)

	_, token, err := svc.GenerateSessionToken(42, "a@x.com")
	assert.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-one", time.Hour)
	verifier := NewJWTService("secret-two", time.Hour)

	_, token, err := issuer.GenerateSessionToken(42, "a@x.com")
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)

	_, err := svc.ValidateToken("definitely.not.a.jwt")
	assert.Error(t, err)
}
