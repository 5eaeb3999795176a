// Package auth maps bearer tokens from the identity provider to a Session
// carried on the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the identity of the caller. The zero value is anonymous.
type Session struct {
	UID              string `json:"uid"`
	Email            string `json:"email"`
	DisplayName      string `json:"displayName"`
	PhoneNumber      string `json:"phoneNumber"`
	ProfileCompleted bool   `json:"profileCompleted"`
}

// Anonymous reports whether the session has no user behind it
func (s Session) Anonymous() bool { return s.UID == "" }

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored in ctx, or an anonymous one
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}

var (
	ErrNoSecret     = errors.New("jwt secret is not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the token payload issued by the identity provider
type Claims struct {
	Email            string `json:"email,omitempty"`
	DisplayName      string `json:"display_name,omitempty"`
	PhoneNumber      string `json:"phone_number,omitempty"`
	ProfileCompleted bool   `json:"profile_completed,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens with a shared secret
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens returns a Tokens for secret. An empty secret verifies nothing.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for s that expires after ttl
func (t *Tokens) Issue(s Session, ttl time.Duration) (string, error) {
	if len(t.secret) == 0 {
		return "", ErrNoSecret
	}
	now := t.now()
	claims := Claims{
		Email:            s.Email,
		DisplayName:      s.DisplayName,
		PhoneNumber:      s.PhoneNumber,
		ProfileCompleted: s.ProfileCompleted,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and returns the session it describes
func (t *Tokens) Verify(tokenString string) (Session, error) {
	if len(t.secret) == 0 {
		return Session{}, ErrNoSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{
		UID:              claims.Subject,
		Email:            claims.Email,
		DisplayName:      claims.DisplayName,
		PhoneNumber:      claims.PhoneNumber,
		ProfileCompleted: claims.ProfileCompleted,
	}, nil
}
