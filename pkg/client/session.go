package client

import "sync"

// Session is the process-wide holder of the current token pair. It is
// constructed once and passed into the client explicitly; requests
// read the token at call time.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

func NewSession() *Session {
	return &Session{}
}

// Set stores a new token pair, replacing any previous one.
func (s *Session) Set(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// Clear drops both tokens. Called on logout and on any 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
}

// AccessToken returns the current access token, or "" when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token, or "".
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// IsAuthenticated reports whether an access token is held.
func (s *Session) IsAuthenticated() bool {
	return s.AccessToken() != ""
}
