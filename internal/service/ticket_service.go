package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/repository"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// TicketService covers ticket creation and role-scoped reads. Status
// mutation lives exclusively in WorkflowService.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	resolver   *RoleResolver
	dispatcher events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Resolver    *RoleResolver
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	PropertyID  string
	Title       string
	Description string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
	}
}

// CreateTicket opens a PENDING ticket for the property the tenant
// occupies. Only tenants raise tickets.
func (s *TicketService) CreateTicket(ctx context.Context, actorID string, input TicketCreateInput) (*domain.MaintenanceTicket, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != domain.RoleTenant {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "only tenants may open maintenance tickets")
	}
	if !scope.OwnsProperty(input.PropertyID) {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyNotOwnerOfProperty, "tenant does not occupy this property")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := &domain.MaintenanceTicket{
		PropertyID:  input.PropertyID,
		TenantID:    scope.AccountID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.publishEvent(events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{AccountID: scope.AccountID, Role: scope.Role},
		Payload: events.TicketCreatedPayload{
			PropertyID: ticket.PropertyID,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// ListTickets returns the tickets visible to the actor: owners see
// tickets of owned properties, tenants their own tickets, providers
// their assigned tickets.
func (s *TicketService) ListTickets(ctx context.Context, actorID string, limit, offset int) ([]domain.MaintenanceTicket, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	repoScope := repository.TicketScope{Limit: limit, Offset: offset}
	switch scope.Role {
	case domain.RoleOwner:
		if len(scope.PropertyIDs) == 0 {
			return []domain.MaintenanceTicket{}, nil
		}
		repoScope.PropertyIDs = scope.PropertyIDs
	case domain.RoleTenant:
		tenantID := scope.AccountID
		repoScope.TenantID = &tenantID
	case domain.RoleProvider:
		providerID := scope.AccountID
		repoScope.ProviderID = &providerID
	}

	tickets, err := s.tickets.ListByScope(ctx, repoScope)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket, enforcing the actor's visibility.
func (s *TicketService) GetTicket(ctx context.Context, actorID, ticketID string) (*domain.MaintenanceTicket, []domain.TicketHistory, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, nil, err
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	if !canViewTicket(scope, ticket) {
		return nil, nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "ticket not visible to this actor")
	}

	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	return ticket, history, nil
}

func canViewTicket(scope *domain.ActorScope, ticket *domain.MaintenanceTicket) bool {
	switch scope.Role {
	case domain.RoleOwner, domain.RoleTenant:
		return scope.OwnsProperty(ticket.PropertyID)
	case domain.RoleProvider:
		return scope.AssignedToTicket(ticket.ID)
	}
	return false
}

func (s *TicketService) publishEvent(event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	go func() {
		_ = s.dispatcher.Publish(context.Background(), event)
	}()
}
