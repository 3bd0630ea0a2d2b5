package domain

import "time"

// RentStatus enumerates rent obligation states.
type RentStatus string

const (
	RentStatusDue  RentStatus = "DUE"
	RentStatusPaid RentStatus = "PAID"
)

// RentObligation is a monthly rent record visible to the owner and the
// tenant of a property. Only owners mark obligations paid.
type RentObligation struct {
	ID          string
	PropertyID  string
	TenantID    string
	Period      string // YYYY-MM
	AmountCents int64
	Status      RentStatus
	DueDate     time.Time
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
