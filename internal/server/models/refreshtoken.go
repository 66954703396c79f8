package models

import "time"

// RefreshToken is a server-side session record. The opaque Token value is
// rotated on every refresh.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
