package domain

import "time"

// Role enumerates the three actor roles.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleTenant   Role = "TENANT"
	RoleProvider Role = "SERVICE_PROVIDER"
)

// Valid reports whether the role is one of the known actor roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleTenant, RoleProvider:
		return true
	}
	return false
}

// Account is the domain model for any authenticated actor.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActorScope carries the per-call authorization facts for an actor.
// Facts are resolved fresh for every call; ownership and assignment
// can change between requests.
type ActorScope struct {
	AccountID string
	Role      Role

	// PropertyIDs is the set of properties the actor owns (owner) or
	// occupies (tenant).
	PropertyIDs []string

	// AssignedTicketIDs is the set of tickets the actor is the assigned
	// provider for. Empty for owners and tenants.
	AssignedTicketIDs []string
}

// OwnsProperty reports whether propertyID is in the actor's scope.
func (s *ActorScope) OwnsProperty(propertyID string) bool {
	for _, id := range s.PropertyIDs {
		if id == propertyID {
			return true
		}
	}
	return false
}

// AssignedToTicket reports whether ticketID is assigned to the actor.
func (s *ActorScope) AssignedToTicket(ticketID string) bool {
	for _, id := range s.AssignedTicketIDs {
		if id == ticketID {
			return true
		}
	}
	return false
}
