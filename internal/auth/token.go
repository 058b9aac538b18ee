// Package auth handles the bearer credential the storefront attaches to
// remote commerce API calls. The token is opaque to us except for its expiry
// claim: an expired token must never leave the process on a request, and its
// rejection tells the holder to discard it immediately.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no auth token")
	ErrTokenExpired = errors.New("auth token expired")
)

// Session is the explicit per-request credential context. It replaces any
// ambient process-wide credential: callers pass it, nothing reads globals.
type Session struct {
	UserID string
	Token  string
}

func (s Session) Authenticated() bool { return s.Token != "" }

// ParseExpiry decodes the token's registered claims without verifying the
// signature (the commerce API is the verifying party) and returns the expiry.
// A token without an expiry claim is treated as non-expiring.
func ParseExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Check validates that the session carries a usable token. Malformed tokens
// fail with the parse error; expired tokens fail with ErrTokenExpired.
func Check(s Session, now time.Time) error {
	if !s.Authenticated() {
		return ErrNoToken
	}
	exp, err := ParseExpiry(s.Token)
	if err != nil {
		return err
	}
	if !exp.IsZero() && now.After(exp) {
		return ErrTokenExpired
	}
	return nil
}
