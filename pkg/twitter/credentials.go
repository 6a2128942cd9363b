package twitter

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// SessionCredentials is a logged-in browser session used for posts that
// guests cannot see.
type SessionCredentials struct {
	AuthToken string    `json:"auth_token"`
	CT0       string    `json:"ct0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValid checks that both cookies are present.
func (sc *SessionCredentials) IsValid() bool {
	return sc != nil && sc.AuthToken != "" && sc.CT0 != ""
}

// Cookie renders the Cookie header value.
func (sc *SessionCredentials) Cookie() string {
	return "auth_token=" + sc.AuthToken + "; ct0=" + sc.CT0
}

// ParseSessionCookie reads auth_token and ct0 from a Cookie header string
// such as "auth_token=...; ct0=...; guest_id=...".
func ParseSessionCookie(raw string) (SessionCredentials, bool) {
	cookies, err := http.ParseCookie(strings.TrimSpace(raw))
	if err != nil {
		return SessionCredentials{}, false
	}
	var sc SessionCredentials
	for _, c := range cookies {
		switch c.Name {
		case "auth_token":
			sc.AuthToken = c.Value
		case "ct0":
			sc.CT0 = c.Value
		}
	}
	return sc, sc.IsValid()
}

// CredentialStore holds the optional session credentials. Safe for
// concurrent use.
type CredentialStore struct {
	mu    sync.RWMutex
	creds *SessionCredentials
}

// NewCredentialStore creates a store, seeded from a cookie string when it
// holds a usable session.
func NewCredentialStore(cookie string) *CredentialStore {
	s := &CredentialStore{}
	if sc, ok := ParseSessionCookie(cookie); ok {
		s.Set(sc)
	}
	return s
}

// Set stores credentials.
func (s *CredentialStore) Set(creds SessionCredentials) {
	if creds.UpdatedAt.IsZero() {
		creds.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
}

// Get returns a copy of the stored credentials, or nil.
func (s *CredentialStore) Get() *SessionCredentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return nil
	}
	c := *s.creds
	return &c
}

// UpdateCSRF records a rotated ct0.
func (s *CredentialStore) UpdateCSRF(ct0 string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds != nil && ct0 != "" && s.creds.CT0 != ct0 {
		s.creds.CT0 = ct0
		s.creds.UpdatedAt = time.Now()
	}
}

// Clear removes stored credentials.
func (s *CredentialStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = nil
}

// Apply attaches the stored session, if any, to auth without changing its mode.
func (s *CredentialStore) Apply(auth AuthConfig) AuthConfig {
	creds := s.Get()
	if !creds.IsValid() {
		auth.Cookie = ""
		auth.CSRFToken = ""
		return auth
	}
	auth.Cookie = creds.Cookie()
	auth.CSRFToken = creds.CT0
	return auth
}

// CredentialStatus describes the stored session without exposing it.
type CredentialStatus struct {
	HasCredentials bool       `json:"has_credentials"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Status returns the current credential state.
func (s *CredentialStore) Status() CredentialStatus {
	creds := s.Get()
	if !creds.IsValid() {
		return CredentialStatus{}
	}
	return CredentialStatus{HasCredentials: true, UpdatedAt: &creds.UpdatedAt}
}
