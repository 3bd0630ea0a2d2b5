package domain

import "time"

// Property is a rental unit managed by an owner. TenantID is set when
// a tenant accepts an invitation for the property.
type Property struct {
	ID        string
	OwnerID   string
	Name      string
	Address   string
	TenantID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
