package domain

import "time"

// User is an authenticated shop owner account. Display details live in
// Profile; the user row only carries credentials.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
