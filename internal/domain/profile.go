package domain

import "time"

// Profile is the shop owner's profile. There is at most one per user;
// the row id is the owning user's id.
type Profile struct {
	ID        string
	FullName  string
	Phone     string
	ShopName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
