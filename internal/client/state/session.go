package state

import (
	"errors"
	"sync"
)

// ErrIncompleteCredentials is returned when SetCredentials is called
// without both a token and an email.
var ErrIncompleteCredentials = errors.New("token and email are both required")

// Snapshot is a point-in-time copy of the session. Empty strings stand
// for "not set".
type Snapshot struct {
	Token            string
	Email            string
	ActiveCategoryID string
}

// Session holds the signed-in identity and the last category the user
// acted in. Token and email are always both set or both empty.
type Session struct {
	mu               sync.RWMutex
	token            string
	email            string
	activeCategoryID string
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Read() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Token: s.token, Email: s.email, ActiveCategoryID: s.activeCategoryID}
}

// SetCredentials stores token and email in one step.
func (s *Session) SetCredentials(token, email string) error {
	if token == "" || email == "" {
		return ErrIncompleteCredentials
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.email = token, email
	return nil
}

func (s *Session) SetActiveCategory(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeCategoryID = id
}

// Clear drops the credentials and the active category.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.email, s.activeCategoryID = "", "", ""
}

// LoggedIn reports whether an email is present.
func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email != ""
}

// Token returns the current credential, "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
