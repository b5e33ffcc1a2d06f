// Package auth mints and verifies the bearer tokens API clients send.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "fuelctl"

var (
	ErrNoSecret     = errors.New("auth secret not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Tokens signs HS256 tokens with a shared secret.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a secret is configured.
func (t *Tokens) Enabled() bool {
	return len(t.secret) > 0
}

// Mint returns a signed token for subject.
func (t *Tokens) Mint(subject string) (string, error) {
	if !t.Enabled() {
		return "", ErrNoSecret
	}

	if subject == "" {
		return "", errors.New("empty subject")
	}

	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature, issuer and expiry of raw and returns its
// subject.
func (t *Tokens) Verify(raw string) (string, error) {
	if !t.Enabled() {
		return "", ErrNoSecret
	}

	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	return claims.Subject, nil
}
