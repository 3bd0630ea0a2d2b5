package events

import (
	"time"

	"github.com/spec-kit/property-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventInvitationIssued    EventType = "invitation_issued"
	EventRentMarkedPaid      EventType = "rent_marked_paid"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	AccountID string      `json:"account_id"`
	Role      domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	PropertyID string `json:"property_id"`
	Title      string `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	PropertyID string              `json:"property_id"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	ProviderID *string             `json:"provider_id,omitempty"`
}

// InvitationIssuedPayload payload.
type InvitationIssuedPayload struct {
	PropertyID string      `json:"property_id"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
}

// RentMarkedPaidPayload payload.
type RentMarkedPaidPayload struct {
	PropertyID string `json:"property_id"`
	Period     string `json:"period"`
}
