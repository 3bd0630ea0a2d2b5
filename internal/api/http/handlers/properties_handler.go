package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/property-service/internal/api/dto"
	"github.com/spec-kit/property-service/internal/auth"
	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// PropertiesHandler manages property and invitation endpoints.
type PropertiesHandler struct {
	properties  *service.PropertyService
	invitations *service.InvitationService
}

// NewPropertiesHandler constructs handler.
func NewPropertiesHandler(properties *service.PropertyService, invitations *service.InvitationService) *PropertiesHandler {
	return &PropertiesHandler{properties: properties, invitations: invitations}
}

// CreateProperty POST /properties.
func (h *PropertiesHandler) CreateProperty(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreatePropertyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	property, err := h.properties.CreateProperty(c.Context(), principal.Account.ID, req.Name, req.Address)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": propertyResponse(property)})
}

// ListProperties GET /properties.
func (h *PropertiesHandler) ListProperties(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	properties, err := h.properties.ListProperties(c.Context(), principal.Account.ID)
	if err != nil {
		return err
	}
	items := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		items = append(items, propertyResponse(&properties[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Invite POST /properties/invitations.
func (h *PropertiesHandler) Invite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.InviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" || req.Email == "" {
		return apperrors.NewValidationError("property_id and email required", nil)
	}

	invitation, err := h.invitations.Issue(c.Context(), principal.Account.ID, req.PropertyID, req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.InvitationResponse{
		Token:      invitation.Token,
		PropertyID: invitation.PropertyID,
		Email:      invitation.Email,
		Role:       invitation.Role,
		ExpiresAt:  invitation.ExpiresAt,
	}})
}

// AcceptInvite POST /properties/invitations/accept.
func (h *PropertiesHandler) AcceptInvite(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.AcceptInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" {
		return apperrors.NewValidationError("token required", nil)
	}

	invitation, err := h.invitations.Accept(c.Context(), principal.Account.ID, req.Token)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"property_id": invitation.PropertyID,
		"role":        invitation.Role,
	}})
}

func propertyResponse(property *domain.Property) dto.PropertyResponse {
	return dto.PropertyResponse{
		ID:        property.ID,
		OwnerID:   property.OwnerID,
		Name:      property.Name,
		Address:   property.Address,
		TenantID:  property.TenantID,
		CreatedAt: property.CreatedAt,
		UpdatedAt: property.UpdatedAt,
	}
}
