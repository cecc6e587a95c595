package domain

import "time"

// Session is issued once an identity has verified a login code.
type Session struct {
	SessionID string    `json:"id"`
	Identity  string    `json:"email"`
	CreatedAt time.Time `json:"created"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}
