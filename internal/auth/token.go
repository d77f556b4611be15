// Package auth turns session tokens into identity events.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrMalformedToken is returned when a token is not a parseable JWT
var ErrMalformedToken = errors.New("session token is not a valid JWT")

// Claims is the part of a session token the client cares about
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token does not expire
}

// Expired reports whether the token is past its expiry at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type sessionClaims struct {
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

// ParseToken reads the subject and expiry of a session token. The signature
// is not checked; the persistence API does that on every request.
func ParseToken(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrMalformedToken
	}

	var sc sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &sc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	c := Claims{Subject: sc.Subject}
	if c.Subject == "" {
		c.Subject = sc.UserID
	}
	if c.Subject == "" {
		return Claims{}, fmt.Errorf("%w: no subject", ErrMalformedToken)
	}
	if sc.ExpiresAt != nil {
		c.ExpiresAt = sc.ExpiresAt.Time
	}
	return c, nil
}

// Event reports the identity now in effect. An empty UserID means signed out.
type Event struct {
	UserID string
	Token  string
}

// SignedOut reports whether the event ends the session.
func (e Event) SignedOut() bool {
	return e.UserID == ""
}

// eventFor builds the event for a raw token. Missing, malformed and expired
// tokens all read as signed out.
func eventFor(raw string, now time.Time) Event {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Event{}
	}
	c, err := ParseToken(raw)
	if err != nil || c.Expired(now) {
		return Event{}
	}
	return Event{UserID: c.Subject, Token: raw}
}
