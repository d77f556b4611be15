package auth

import (
	"errors"
	"time"
)

// ErrReadOnly is returned when signing in or out of a fixed token source
var ErrReadOnly = errors.New("session token is fixed by the environment")

// Static serves a token supplied from outside, such as HABITUAL_TOKEN.
// It never changes identity.
type Static struct {
	raw string
	now func() time.Time
}

func NewStatic(raw string) *Static {
	return &Static{raw: raw, now: time.Now}
}

func (s *Static) Token() (string, error) {
	if s.raw == "" {
		return "", ErrNotFound
	}
	return s.raw, nil
}

func (s *Static) Current() (Event, error) {
	return eventFor(s.raw, s.now()), nil
}

func (s *Static) SignIn(string) (Claims, error) {
	return Claims{}, ErrReadOnly
}

func (s *Static) SignOut() error {
	return ErrReadOnly
}

// Events never delivers; the identity cannot change.
func (s *Static) Events() <-chan Event {
	return nil
}
