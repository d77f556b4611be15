package auth

import "sync"

// Holder keeps the token of the identity currently in effect. It is handed
// to the API client as its token source and updated on identity events.
type Holder struct {
	mu    sync.RWMutex
	token string
}

func (h *Holder) Set(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// Token returns the current token or ErrNotFound when signed out.
func (h *Holder) Token() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.token == "" {
		return "", ErrNotFound
	}
	return h.token, nil
}
