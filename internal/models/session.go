package models

import (
	"time"
)

// Session represents an active user login session.
type Session struct {
	SessionID string    `json:"session_id"` // UUID, carried as the jti of the session token
	Username  string    `json:"username"`   // Identity the session is bound to
	Host      string    `json:"host"`       // The host of the the client
	UserAgent string    `json:"user_agent"` // The useragent of the request
	CreatedAt time.Time `json:"created_at"` // When the session was created
	Expiry    time.Time `json:"expiry"`     // When the session expires
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.Expiry)
}
