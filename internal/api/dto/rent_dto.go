package dto

import (
	"time"

	"github.com/spec-kit/property-service/internal/domain"
)

// CreateRentRequest payload.
type CreateRentRequest struct {
	PropertyID  string    `json:"property_id"`
	Period      string    `json:"period"`
	AmountCents int64     `json:"amount_cents"`
	DueDate     time.Time `json:"due_date"`
}

// RentResponse describes a rent obligation.
type RentResponse struct {
	ID          string            `json:"id"`
	PropertyID  string            `json:"property_id"`
	TenantID    string            `json:"tenant_id"`
	Period      string            `json:"period"`
	AmountCents int64             `json:"amount_cents"`
	Status      domain.RentStatus `json:"status"`
	DueDate     time.Time         `json:"due_date"`
	PaidAt      *time.Time        `json:"paid_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
