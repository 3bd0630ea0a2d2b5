package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// RoleResolver maps an actor identity to a role and the scoping facts
// authorization needs. Facts are loaded from the authoritative store on
// every call; token role hints are never trusted on their own.
type RoleResolver struct {
	accounts   repository.AccountRepository
	properties repository.PropertyRepository
	tickets    repository.TicketRepository
}

// ResolverDependencies bundles repositories for the resolver.
type ResolverDependencies struct {
	AccountRepo  repository.AccountRepository
	PropertyRepo repository.PropertyRepository
	TicketRepo   repository.TicketRepository
}

// NewRoleResolver builds the resolver.
func NewRoleResolver(deps ResolverDependencies) *RoleResolver {
	return &RoleResolver{
		accounts:   deps.AccountRepo,
		properties: deps.PropertyRepo,
		tickets:    deps.TicketRepo,
	}
}

// Resolve returns the actor's role and fresh scope facts.
func (r *RoleResolver) Resolve(ctx context.Context, actorID string) (*domain.ActorScope, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, apperrors.NewUnauthenticated("missing actor identity")
	}

	account, err := r.accounts.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewProfileMissing(actorID)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if !account.Active {
		return nil, apperrors.NewProfileMissing(actorID)
	}

	scope := &domain.ActorScope{
		AccountID: account.ID,
		Role:      account.Role,
	}

	switch account.Role {
	case domain.RoleOwner:
		scope.PropertyIDs, err = r.properties.ListIDsByOwner(ctx, account.ID)
	case domain.RoleTenant:
		scope.PropertyIDs, err = r.properties.ListIDsByTenant(ctx, account.ID)
	case domain.RoleProvider:
		scope.AssignedTicketIDs, err = r.tickets.ListIDsByProvider(ctx, account.ID)
	default:
		return nil, apperrors.NewProfileMissing(actorID)
	}
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	return scope, nil
}
