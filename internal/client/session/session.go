// Package session owns the authenticated-session lifecycle: acquiring a
// bearer credential from the platform identity exchange, persisting it,
// tracking expiry, refreshing it with a single-flight guard and wrapping
// every backend call with retry-once-on-unauthorized semantics.
package session

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Status is the single source of truth for whether dependent code may issue
// authenticated calls. Exactly one value holds at a time.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
	StatusError           Status = "error"
)

// User identifies the platform user bound to a session.
type User struct {
	PlatformUserID int64  `json:"platformUserId"`
	Username       string `json:"username,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	LanguageCode   string `json:"languageCode,omitempty"`
}

// Session is an adopted authentication exchange result. A Session is either
// absent or had ExpiresAt in the future at the moment it was adopted.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expiry returns the session's expiry. When the exchange response carried no
// usable timestamp it falls back to the bearer token's exp claim, parsed
// without signature verification (the client never validates tokens, the
// backend does). A zero return means the expiry is unknown.
func (s *Session) Expiry() time.Time {
	if !s.ExpiresAt.IsZero() {
		return s.ExpiresAt
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Expired reports whether the session's expiry is known and in the past.
func (s *Session) Expired(now time.Time) bool {
	exp := s.Expiry()
	return !exp.IsZero() && !exp.After(now)
}

// decodeSession parses a persisted session blob. Any structural error is
// returned so the caller can fail closed and clear the store.
func decodeSession(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func encodeSession(s *Session) ([]byte, error) {
	return json.Marshal(s)
}
