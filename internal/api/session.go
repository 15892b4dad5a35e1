package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// ─── Sessions ───────────────────────────────────────────────────────────────
// Cookie-based session lookup: an opaque UUID token maps to an account ID.
// Sessions live in memory only; a restart logs everyone out. The engine
// never sees tokens — it trusts the account ID this layer resolves.

const sessionCookie = "recurrency_session"

// Sessions maps opaque tokens to account IDs.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]string
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]string)}
}

// Start issues a token for the account and sets the session cookie.
func (s *Sessions) Start(w http.ResponseWriter, accountID string) {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = accountID
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   365 * 24 * 3600,
	})
}

// Resolve returns the account ID for the request's session cookie.
func (s *Sessions) Resolve(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	s.mu.RLock()
	id, ok := s.tokens[c.Value]
	s.mu.RUnlock()
	return id, ok
}

// End revokes the request's session and clears the cookie.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.tokens, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:   sessionCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// EndAllFor revokes every session belonging to the account, used when the
// account is deleted.
func (s *Sessions) EndAllFor(accountID string) {
	s.mu.Lock()
	for token, id := range s.tokens {
		if id == accountID {
			delete(s.tokens, token)
		}
	}
	s.mu.Unlock()
}
