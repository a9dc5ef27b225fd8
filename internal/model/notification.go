package model

import "time"

// Notification is a message addressed to one user, created as a side effect
// of someone liking their post. Self-likes never produce one.
type Notification struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Message   string    `json:"message"   db:"message"`
	Read      bool      `json:"read"      db:"read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
