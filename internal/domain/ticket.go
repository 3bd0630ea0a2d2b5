package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "PENDING"
	TicketStatusAccepted  TicketStatus = "ACCEPTED"
	TicketStatusCompleted TicketStatus = "COMPLETED"
)

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusPending, TicketStatusAccepted, TicketStatusCompleted:
		return true
	}
	return false
}

// MaintenanceTicket is the aggregate for tenant maintenance requests.
// Status and AssignedProviderID are mutated only through the workflow
// service's conditional-write path.
type MaintenanceTicket struct {
	ID                 string
	PropertyID         string
	TenantID           string
	AssignedProviderID *string
	Title              string
	Description        string
	Status             TicketStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
