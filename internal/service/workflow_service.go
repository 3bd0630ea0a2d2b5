package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/policy"
	"github.com/spec-kit/property-service/internal/repository"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// WorkflowService applies role-gated status transitions to maintenance
// tickets. Policy evaluation is explicit and decoupled from the write:
// the write itself carries no authorization logic and re-invokes
// nothing, only the compare-and-set precondition on the observed
// status.
type WorkflowService struct {
	resolver   *RoleResolver
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	Resolver   *RoleResolver
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		resolver:   deps.Resolver,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Transition moves a ticket to the requested status on behalf of the
// actor. Exactly one of two concurrent identical requests succeeds; the
// loser observes a CONCURRENT_MODIFICATION error and may retry from the
// top. The service itself never retries: a retry could apply a
// transition the caller no longer intends.
func (s *WorkflowService) Transition(ctx context.Context, actorID, ticketID string, requested domain.TicketStatus, providerID *string) (*domain.MaintenanceTicket, error) {
	if !requested.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": requested})
	}

	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	decision := policy.Decide(scope, snapshot, requested, providerID)
	if !decision.Allowed {
		return nil, apperrors.NewPermissionDenied(decision.Reason, policy.DenyMessage(decision.Reason))
	}

	// Conditional write keyed on the status observed above. If another
	// writer moved the ticket in between, zero rows match and the
	// transition is reported lost, never partially applied.
	updated, err := s.tickets.CompareAndSetStatus(ctx, ticketID, snapshot.Status, requested, decision.AssignProviderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConcurrentModification(ticketID)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.publishStatusChanged(scope, snapshot.Status, updated)
	return updated, nil
}

// publishStatusChanged dispatches the transition event without blocking
// the already-committed outcome. Dispatch failures are the dispatcher's
// to log.
func (s *WorkflowService) publishStatusChanged(scope *domain.ActorScope, oldStatus domain.TicketStatus, ticket *domain.MaintenanceTicket) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketStatusChanged,
		TicketID:  ticket.ID,
		Actor:     events.Actor{AccountID: scope.AccountID, Role: scope.Role},
		Timestamp: time.Now(),
		Payload: events.TicketStatusChangedPayload{
			PropertyID: ticket.PropertyID,
			OldStatus:  oldStatus,
			NewStatus:  ticket.Status,
			ProviderID: ticket.AssignedProviderID,
		},
	}
	go func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	}()
}
