// Package policy decides whether an actor may move a maintenance
// ticket between statuses. It is a pure function over the actor's
// scope facts and a ticket snapshot; it performs no storage access and
// must never be re-invoked from the write path.
package policy

import (
	"github.com/spec-kit/property-service/internal/domain"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// Decision is the outcome of a policy evaluation. When Allowed,
// AssignProviderID carries the only side-effect a transition may
// request: setting the provider on Pending→Accepted.
type Decision struct {
	Allowed          bool
	Reason           apperrors.DenyReason
	AssignProviderID *string
}

func allow(providerID *string) Decision {
	return Decision{Allowed: true, AssignProviderID: providerID}
}

func deny(reason apperrors.DenyReason) Decision {
	return Decision{Reason: reason}
}

// Decide evaluates the permission matrix for a requested transition.
//
// Allowed transitions:
//
//	PENDING  → ACCEPTED   owner of the ticket's property (may assign a provider)
//	ACCEPTED → COMPLETED  owner of the ticket's property, or the assigned provider
//
// Everything else is denied with a classified reason. Tenants are
// read-only with respect to status; COMPLETED is terminal; the
// ACCEPTED stage cannot be skipped or re-entered.
func Decide(scope *domain.ActorScope, ticket *domain.MaintenanceTicket, requested domain.TicketStatus, providerID *string) Decision {
	if scope.Role == domain.RoleTenant {
		return deny(apperrors.DenyWrongRole)
	}
	if ticket.Status == domain.TicketStatusCompleted {
		return deny(apperrors.DenyAlreadyTerminal)
	}

	switch {
	case ticket.Status == domain.TicketStatusPending && requested == domain.TicketStatusAccepted:
		if scope.Role != domain.RoleOwner {
			return deny(apperrors.DenyWrongRole)
		}
		if !scope.OwnsProperty(ticket.PropertyID) {
			return deny(apperrors.DenyNotOwnerOfProperty)
		}
		return allow(providerID)

	case ticket.Status == domain.TicketStatusAccepted && requested == domain.TicketStatusCompleted:
		switch scope.Role {
		case domain.RoleOwner:
			if !scope.OwnsProperty(ticket.PropertyID) {
				return deny(apperrors.DenyNotOwnerOfProperty)
			}
			// No assignment side-effect on completion.
			return allow(nil)
		case domain.RoleProvider:
			if ticket.AssignedProviderID == nil || *ticket.AssignedProviderID != scope.AccountID || !scope.AssignedToTicket(ticket.ID) {
				return deny(apperrors.DenyNotAssignedProvider)
			}
			return allow(nil)
		default:
			return deny(apperrors.DenyWrongRole)
		}

	default:
		// Same-status, reverse, and stage-skipping requests all fall
		// outside the matrix.
		return deny(apperrors.DenyIllegalStatusSkip)
	}
}

// DenyMessage renders the user-facing explanation for a deny reason.
func DenyMessage(reason apperrors.DenyReason) string {
	switch reason {
	case apperrors.DenyWrongRole:
		return "this role may not change ticket status"
	case apperrors.DenyNotOwnerOfProperty:
		return "only the owner of the ticket's property may perform this transition"
	case apperrors.DenyNotAssignedProvider:
		return "only the assigned provider may complete this ticket"
	case apperrors.DenyIllegalStatusSkip:
		return "tickets move through PENDING, ACCEPTED and COMPLETED in order"
	case apperrors.DenyAlreadyTerminal:
		return "completed tickets cannot change status"
	}
	return "transition not permitted"
}
