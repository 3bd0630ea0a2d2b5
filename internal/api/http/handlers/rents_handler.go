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

// RentsHandler manages rent obligation endpoints.
type RentsHandler struct {
	rents *service.RentService
}

// NewRentsHandler constructs handler.
func NewRentsHandler(rents *service.RentService) *RentsHandler {
	return &RentsHandler{rents: rents}
}

// CreateRent POST /rents.
func (h *RentsHandler) CreateRent(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateRentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" || req.Period == "" {
		return apperrors.NewValidationError("property_id and period required", nil)
	}

	rent, err := h.rents.CreateObligation(c.Context(), principal.Account.ID, service.RentCreateInput{
		PropertyID:  req.PropertyID,
		Period:      req.Period,
		AmountCents: req.AmountCents,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": rentResponse(rent)})
}

// ListRents GET /rents.
func (h *RentsHandler) ListRents(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	limit, offset := parsePage(c)
	rents, err := h.rents.ListObligations(c.Context(), principal.Account.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.RentResponse, 0, len(rents))
	for i := range rents {
		items = append(items, rentResponse(&rents[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkPaid POST /rents/:id/pay.
func (h *RentsHandler) MarkPaid(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	rent, err := h.rents.MarkPaid(c.Context(), principal.Account.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rentResponse(rent)})
}

func rentResponse(rent *domain.RentObligation) dto.RentResponse {
	return dto.RentResponse{
		ID:          rent.ID,
		PropertyID:  rent.PropertyID,
		TenantID:    rent.TenantID,
		Period:      rent.Period,
		AmountCents: rent.AmountCents,
		Status:      rent.Status,
		DueDate:     rent.DueDate,
		PaidAt:      rent.PaidAt,
		CreatedAt:   rent.CreatedAt,
	}
}
