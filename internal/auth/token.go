// Package auth signs session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Austinpowers7/storehive-backend/internal/entity"
)

type Claims struct {
	ID      string      `json:"id"`
	Email   string      `json:"email"`
	Role    entity.Role `json:"role"`
	StoreID string      `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Secret is the signing key, shared with the HTTP middleware.
func (t *TokenIssuer) Secret() []byte {
	return t.secret
}

func (t *TokenIssuer) Issue(user *entity.User) (string, error) {
	now := t.now()
	claims := &Claims{
		ID:      user.ID,
		Email:   user.Email,
		Role:    user.Role,
		StoreID: user.StoreID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString(t.secret)
}

func (t *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tkn *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.ID == "" {
		return nil, errors.New("invalid token: missing id claim")
	}
	return claims, nil
}
