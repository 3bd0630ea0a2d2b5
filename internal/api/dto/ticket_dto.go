package dto

import (
	"time"

	"github.com/spec-kit/property-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	PropertyID  string `json:"property_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// TransitionRequest payload for status changes.
type TransitionRequest struct {
	Status     domain.TicketStatus `json:"status"`
	ProviderID *string             `json:"provider_id,omitempty"`
}

// TicketResponse describes a maintenance ticket.
type TicketResponse struct {
	ID                 string              `json:"id"`
	PropertyID         string              `json:"property_id"`
	TenantID           string              `json:"tenant_id"`
	AssignedProviderID *string             `json:"assigned_provider_id,omitempty"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Status             domain.TicketStatus `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// TicketHistoryResponse describes one audit entry.
type TicketHistoryResponse struct {
	ID         string              `json:"id"`
	ActorID    string              `json:"actor_id"`
	ActorRole  domain.Role         `json:"actor_role"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	ProviderID *string             `json:"provider_id,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// TicketDetailResponse bundles a ticket with its transition history.
type TicketDetailResponse struct {
	TicketResponse
	History []TicketHistoryResponse `json:"history"`
}
