// Package auth issues and verifies the signed session tokens carried in the
// Authorization header.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskmanager/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken   = errors.New("auth: missing bearer token")
	ErrMalformedToken = errors.New("auth: malformed authorization header")
	ErrInvalidToken   = errors.New("auth: invalid or expired token")
)

// Identity is what a token says about its bearer.
type Identity struct {
	ID       string
	Username string
	Email    string
	Role     model.Role
}

// Claims are the custom claims embedded in every token.
type Claims struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{ID: c.ID, Username: c.Username, Email: c.Email, Role: c.Role}
}

// Revoker remembers revoked token ids until their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// TokenManager signs tokens with HS256. revoker may be nil, in which case
// tokens stay valid until they expire.
type TokenManager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration, revoker Revoker) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, revoker: revoker, now: time.Now}
}

// WithClock replaces the time source; used by tests to mint and check expiry.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for id and returns it with its expiry.
func (m *TokenManager) Issue(id Identity) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := Claims{
		ID:       id.ID,
		Username: id.Username,
		Email:    id.Email,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse checks signature, algorithm and expiry of a raw token.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify extracts the bearer token from an Authorization header value,
// parses it and rejects revoked tokens.
func (m *TokenManager) Verify(ctx context.Context, header string) (*Claims, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	claims, err := m.Parse(raw)
	if err != nil {
		return nil, err
	}
	if m.revoker != nil && claims.RegisteredClaims.ID != "" {
		revoked, err := m.revoker.IsRevoked(ctx, claims.RegisteredClaims.ID)
		if err != nil {
			return nil, fmt.Errorf("auth: revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// Revoke invalidates the token described by claims until it expires.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.revoker == nil || claims.ExpiresAt == nil {
		return nil
	}
	return m.revoker.Revoke(ctx, claims.RegisteredClaims.ID, claims.ExpiresAt.Time)
}

// BearerToken returns the token segment of "Bearer <token>".
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, rest, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(rest)
	if token == "" || strings.Contains(token, " ") {
		return "", ErrMalformedToken
	}
	return token, nil
}
