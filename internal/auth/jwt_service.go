package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims represents session token claims.
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService signs and validates session tokens. Each token carries a unique
// JTI which the session store tracks; deleting the JTI revokes the session
// before the token itself expires.
type JWTService struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTService creates a new JWT service with the given secret and session TTL.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured session lifetime.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateSessionToken generates a new session token for the user.
// The token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateSessionToken(userID uint, email string) (tokenID string, token string, err error) {
	tokenID = uuid.New().String()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tokenObj.SignedString(s.secret)
	return tokenID, token, err
}

// ValidateToken validates a session token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.ID == "" {
		return nil, errors.New("token ID not found")
	}

	return claims, nil
}
