package dto

import "time"

// SaveProfileRequest payload (upsert semantics).
type SaveProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	ShopName string `json:"shop_name"`
}

// ProfileResponse representation.
type ProfileResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	ShopName  string    `json:"shop_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
