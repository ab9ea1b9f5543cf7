package domain

import "time"

// Session is the durable record that lets a user resume work across page
// reloads. It stores the display name chosen at login; the per-user data
// store is reopened from that name on restore.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has lapsed at the reference time.
// A zero reference means "now".
func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}
