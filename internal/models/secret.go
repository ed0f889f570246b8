package models

import "time"

// SecretRecord is the per-user key ("root") used to hash that user's password.
// It lives in its own namespace and is never part of an HTTP payload.
type SecretRecord struct {
	Main      string    `json:"main"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
