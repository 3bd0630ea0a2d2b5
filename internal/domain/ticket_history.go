package domain

import "time"

// TicketHistory is an immutable audit entry for a successful status
// transition. Entries are written off the commit path; a history write
// failure never affects the transition itself.
type TicketHistory struct {
	ID         string
	TicketID   string
	ActorID    string
	ActorRole  Role
	OldStatus  TicketStatus
	NewStatus  TicketStatus
	ProviderID *string
	CreatedAt  time.Time
}
