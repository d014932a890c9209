package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

var signingMethod = jwt.SigningMethodHS256

// Claims identifies the signed-in user carried by a session token
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionToken is a signed token and the moment it stops being valid
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

// GenerateSessionToken signs a session token for the user valid for expiry
func GenerateSessionToken(userID uuid.UUID, email, name, secret string, expiry time.Duration) (*SessionToken, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	now := time.Now()
	expiresAt := now.Add(expiry)
	claims := Claims{
		UserID: userID,
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("signing jwt: %w", err)
	}

	return &SessionToken{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies a session token
func ValidateToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return claims, nil
}
