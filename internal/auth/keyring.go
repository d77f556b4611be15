package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

var (
	// ErrNotFound is returned when no session token is stored
	ErrNotFound = errors.New("session token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// KeyringProvider keeps the session token in the OS keyring and announces
// sign-in and sign-out as events.
type KeyringProvider struct {
	service string
	user    string
	now     func() time.Time

	mu     sync.Mutex
	events chan Event
}

func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{
		service: constants.AppName,
		user:    constants.DefaultKeyringUser,
		now:     time.Now,
		events:  make(chan Event, 8),
	}
}

// Events delivers identity changes caused by SignIn and SignOut.
func (p *KeyringProvider) Events() <-chan Event {
	return p.events
}

// Token returns the stored session token.
func (p *KeyringProvider) Token() (string, error) {
	tok, err := keyring.Get(p.service, p.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return tok, nil
}

// Current returns the identity of the stored token. A missing or expired
// token yields a signed-out event.
func (p *KeyringProvider) Current() (Event, error) {
	tok, err := p.Token()
	if errors.Is(err, ErrNotFound) {
		return Event{}, nil
	}
	if err != nil {
		return Event{}, err
	}
	return eventFor(tok, p.now()), nil
}

// SignIn validates and stores token, then announces the new identity.
func (p *KeyringProvider) SignIn(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	claims, err := ParseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.Expired(p.now()) {
		return Claims{}, fmt.Errorf("session token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
	}
	if err := keyring.Set(p.service, p.user, token); err != nil {
		return Claims{}, fmt.Errorf("failed to store session token in keyring: %w", err)
	}
	logger.Auth().Info("signed in", "user", claims.Subject)
	p.publish(Event{UserID: claims.Subject, Token: token})
	return claims, nil
}

// SignOut removes the stored token and announces the sign-out. Signing out
// without a stored token is not an error.
func (p *KeyringProvider) SignOut() error {
	if err := keyring.Delete(p.service, p.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete session token from keyring: %w", err)
	}
	logger.Auth().Info("signed out")
	p.publish(Event{})
	return nil
}

func (p *KeyringProvider) publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case p.events <- ev:
	default:
		// Keep only the newest identity when nobody is listening
		select {
		case <-p.events:
		default:
		}
		p.events <- ev
	}
}

// IsAvailable checks if the OS keyring can be read.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
