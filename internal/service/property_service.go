package service

import (
	"context"
	"strings"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// PropertyService covers owner-side property management.
type PropertyService struct {
	properties repository.PropertyRepository
	resolver   *RoleResolver
}

// NewPropertyService constructs the service.
func NewPropertyService(properties repository.PropertyRepository, resolver *RoleResolver) *PropertyService {
	return &PropertyService{properties: properties, resolver: resolver}
}

// CreateProperty registers a property under the calling owner.
func (s *PropertyService) CreateProperty(ctx context.Context, actorID, name, address string) (*domain.Property, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != domain.RoleOwner {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "only owners register properties")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}

	property := &domain.Property{
		OwnerID: scope.AccountID,
		Name:    name,
		Address: strings.TrimSpace(address),
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return property, nil
}

// ListProperties returns the owner's properties.
func (s *PropertyService) ListProperties(ctx context.Context, actorID string) ([]domain.Property, error) {
	scope, err := s.resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if scope.Role != domain.RoleOwner {
		return nil, apperrors.NewPermissionDenied(apperrors.DenyWrongRole, "only owners list properties")
	}

	properties, err := s.properties.ListByOwner(ctx, scope.AccountID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return properties, nil
}
