package dto

import (
	"time"

	"github.com/spec-kit/property-service/internal/domain"
)

// CreatePropertyRequest payload.
type CreatePropertyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// PropertyResponse describes a property.
type PropertyResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	TenantID  *string   `json:"tenant_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InviteRequest payload for issuing invitations.
type InviteRequest struct {
	PropertyID string      `json:"property_id"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
}

// InvitationResponse returns the issued token metadata.
type InvitationResponse struct {
	Token      string      `json:"token"`
	PropertyID string      `json:"property_id"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// AcceptInviteRequest payload for redeeming a token.
type AcceptInviteRequest struct {
	Token string `json:"token"`
}
