// Package session holds the process-wide current session: the token and
// user established by login or signup. Mutation happens only in direct
// response to explicit user action (login, signup, logout); every
// authenticated backend call reads the token concurrently.
package session

import (
	"errors"
	"sync"
	"time"

	"snapfeed/internal/backend"
)

// ErrNotLoggedIn is returned when an operation requires a session and
// none is established.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the single-writer, many-reader holder of the current
// credentials. The zero value is a logged-out session.
type Session struct {
	mu    sync.RWMutex
	state State
}

// State is the persistable snapshot of a session.
type State struct {
	Token     string       `json:"token"`
	User      backend.User `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

// Begin installs credentials from a successful login or signup.
func (s *Session) Begin(creds backend.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{
		Token:     creds.SessionToken,
		User:      creds.User,
		CreatedAt: time.Now(),
	}
}

// Restore installs a previously persisted session state.
func (s *Session) Restore(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// End clears the session after logout.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}

// Token returns the current session token, or "" when logged out.
// It satisfies backend.TokenProvider.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// User returns the logged-in user. ErrNotLoggedIn is returned when no
// session is established.
func (s *Session) User() (backend.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Token == "" {
		return backend.User{}, ErrNotLoggedIn
	}
	return s.state.User, nil
}

// LoggedIn reports whether a session is established.
func (s *Session) LoggedIn() bool {
	return s.Token() != ""
}

// Snapshot returns a copy of the current state for persistence.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
