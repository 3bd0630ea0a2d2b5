package domain

import "time"

// Invitation is the payload stored behind an invitation token. Tokens
// are short-lived and single-use; acceptance links the invited account
// to the property.
type Invitation struct {
	Token      string    `json:"token"`
	PropertyID string    `json:"property_id"`
	OwnerID    string    `json:"owner_id"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}
