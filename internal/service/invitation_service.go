package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/repository"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

const invitationKeyPrefix = "invitation:"

// InvitationService issues and redeems property invitations. Tokens are
// single-use and expire via Redis TTL; acceptance links the account to
// the property.
type InvitationService struct {
	redis      *goredis.Client
	properties repository.PropertyRepository
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	ttl        time.Duration
}

// InvitationDependencies bundles collaborators.
type InvitationDependencies struct {
	Redis        *goredis.Client
	PropertyRepo repository.PropertyRepository
	AccountRepo  repository.AccountRepository
	Dispatcher   events.Dispatcher
	TTL          time.Duration
}

// NewInvitationService constructs the service.
func NewInvitationService(deps InvitationDependencies) *InvitationService {
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &InvitationService{
		redis:      deps.Redis,
		properties: deps.PropertyRepo,
		accounts:   deps.AccountRepo,
		dispatcher: deps.Dispatcher,
		ttl:        ttl,
	}
}

// Issue creates an invitation token for a tenant or provider on one of
// the owner's properties.
func (s *InvitationService) Issue(ctx context.Context, ownerID, propertyID, email string, role domain.Role) (*domain.Invitation, error) {
	if role != domain.RoleTenant && role != domain.RoleProvider {
		return nil, apperrors.NewValidationError("invitations are for tenants or providers", map[string]any{"role": role})
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("property", map[string]any{"property_id": propertyID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if property.OwnerID != ownerID {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyNotOwnerOfProperty, "only the property owner may invite")
	}
	if role == domain.RoleTenant && property.TenantID != nil {
		return nil, apperrors.NewConflict("property already has a tenant", map[string]any{"property_id": propertyID})
	}

	now := time.Now()
	invitation := &domain.Invitation{
		Token:      uuid.NewString(),
		PropertyID: propertyID,
		OwnerID:    ownerID,
		Email:      email,
		Role:       role,
		ExpiresAt:  now.Add(s.ttl),
		CreatedAt:  now,
	}
	payload, err := json.Marshal(invitation)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.redis.Set(ctx, invitationKeyPrefix+invitation.Token, payload, s.ttl).Err(); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	if s.dispatcher != nil {
		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventInvitationIssued,
			Actor:     events.Actor{AccountID: ownerID, Role: domain.RoleOwner},
			Timestamp: now,
			Payload: events.InvitationIssuedPayload{
				PropertyID: propertyID,
				Email:      email,
				Role:       role,
			},
		}
		go func() {
			_ = s.dispatcher.Publish(context.Background(), event)
		}()
	}
	return invitation, nil
}

// Accept redeems a token for the calling account. The token is consumed
// atomically; a second redemption fails even under concurrent attempts.
func (s *InvitationService) Accept(ctx context.Context, actorID, token string) (*domain.Invitation, error) {
	account, err := s.accounts.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewProfileMissing(actorID)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	payload, err := s.redis.GetDel(ctx, invitationKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, apperrors.NewNotFound("invitation", map[string]any{"token": token})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	var invitation domain.Invitation
	if err := json.Unmarshal(payload, &invitation); err != nil {
		return nil, apperrors.MapError(err)
	}
	if account.Role != invitation.Role {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "invitation was issued for a different role")
	}

	if invitation.Role == domain.RoleTenant {
		if err := s.properties.SetTenant(ctx, invitation.PropertyID, account.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewConflict("property already has a tenant", map[string]any{"property_id": invitation.PropertyID})
			}
			return nil, apperrors.NewStoreUnavailable(err)
		}
	}
	// Provider invitations grant no standing link; providers gain scope
	// only through per-ticket assignment at acceptance.
	return &invitation, nil
}
