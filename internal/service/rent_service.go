package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/repository"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// RentService manages rent obligations shared between owner and tenant.
type RentService struct {
	rents      repository.RentRepository
	properties repository.PropertyRepository
	resolver   *RoleResolver
	dispatcher events.Dispatcher
}

// RentDependencies bundles collaborators for the rent service.
type RentDependencies struct {
	RentRepo     repository.RentRepository
	PropertyRepo repository.PropertyRepository
	Resolver     *RoleResolver
	Dispatcher   events.Dispatcher
}

// RentCreateInput describes a new rent obligation.
type RentCreateInput struct {
	PropertyID  string
	Period      string // YYYY-MM
	AmountCents int64
	DueDate     time.Time
}

// NewRentService constructs the service.
func NewRentService(deps RentDependencies) *RentService {
	return &RentService{
		rents:      deps.RentRepo,
		properties: deps.PropertyRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
	}
}

// CreateObligation records a DUE obligation for the property's current
// tenant. Owner-only.
func (s *RentService) CreateObligation(ctx context.Context, actorID string, input RentCreateInput) (*domain.RentObligation, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != domain.RoleOwner {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "only owners create rent obligations")
	}
	if !scope.OwnsProperty(input.PropertyID) {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyNotOwnerOfProperty, "actor does not own this property")
	}
	if !periodPattern.MatchString(input.Period) {
		return nil, apperrors.NewValidationError("period must be YYYY-MM", map[string]any{"period": input.Period})
	}
	if input.AmountCents <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}

	property, err := s.properties.GetByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_id": input.PropertyID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if property.TenantID == nil {
		return nil, apperrors.NewConflict("property has no tenant", map[string]any{"property_id": input.PropertyID})
	}

	rent := &domain.RentObligation{
		PropertyID:  input.PropertyID,
		TenantID:    *property.TenantID,
		Period:      input.Period,
		AmountCents: input.AmountCents,
		Status:      domain.RentStatusDue,
		DueDate:     input.DueDate,
	}
	if err := s.rents.Create(ctx, rent); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return rent, nil
}

// ListObligations returns obligations visible to the actor.
func (s *RentService) ListObligations(ctx context.Context, actorID string, limit, offset int) ([]domain.RentObligation, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	repoScope := repository.RentScope{Limit: limit, Offset: offset}
	switch scope.Role {
	case domain.RoleOwner:
		if len(scope.PropertyIDs) == 0 {
			return []domain.RentObligation{}, nil
		}
		repoScope.PropertyIDs = scope.PropertyIDs
	case domain.RoleTenant:
		tenantID := scope.AccountID
		repoScope.TenantID = &tenantID
	default:
		return []domain.RentObligation{}, nil
	}

	rents, err := s.rents.ListByScope(ctx, repoScope)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return rents, nil
}

// MarkPaid flips an obligation from DUE to PAID. Owner-only; the
// conditional write keeps double-marking race-free.
func (s *RentService) MarkPaid(ctx context.Context, actorID, rentID string) (*domain.RentObligation, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != domain.RoleOwner {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "only owners mark rent paid")
	}

	rent, err := s.rents.GetByID(ctx, rentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("rent obligation", map[string]any{"rent_id": rentID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !scope.OwnsProperty(rent.PropertyID) {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyNotOwnerOfProperty, "actor does not own this property")
	}

	updated, err := s.rents.MarkPaid(ctx, rentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConcurrentModification(rentID)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventRentMarkedPaid,
			Actor:     events.Actor{AccountID: scope.AccountID, Role: scope.Role},
			Timestamp: time.Now(),
			Payload: events.RentMarkedPaidPayload{
				PropertyID: updated.PropertyID,
				Period:     updated.Period,
			},
		}
		go func() {
			_ = s.dispatcher.Publish(context.Background(), event)
		}()
	}
	return updated, nil
}
