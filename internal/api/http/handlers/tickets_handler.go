package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/property-service/internal/api/dto"
	"github.com/spec-kit/property-service/internal/auth"
	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

// TicketsHandler manages maintenance ticket endpoints for all roles.
type TicketsHandler struct {
	tickets  *service.TicketService
	workflow *service.WorkflowService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, workflow *service.WorkflowService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, workflow: workflow}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PropertyID == "" || req.Title == "" {
		return apperrors.NewValidationError("property_id and title required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), principal.Account.ID, service.TicketCreateInput{
		PropertyID:  req.PropertyID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	limit, offset := parsePage(c)
	tickets, err := h.tickets.ListTickets(c.Context(), principal.Account.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	ticket, history, err := h.tickets.GetTicket(c.Context(), principal.Account.ID, c.Params("id"))
	if err != nil {
		return err
	}
	detail := dto.TicketDetailResponse{
		TicketResponse: ticketResponse(ticket),
		History:        historyResponses(history),
	}
	return c.JSON(fiber.Map{"data": detail})
}

// Transition POST /tickets/:id/transition. A lost race is retried once,
// transparently, before surfacing CONCURRENT_MODIFICATION to the
// client; deterministic denials are never retried.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticketID := c.Params("id")
	ticket, err := h.workflow.Transition(c.Context(), principal.Account.ID, ticketID, req.Status, req.ProviderID)
	if err != nil && apperrors.HasCode(err, apperrors.CodeConcurrentModification) {
		ticket, err = h.workflow.Transition(c.Context(), principal.Account.ID, ticketID, req.Status, req.ProviderID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

func parsePage(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(ticket *domain.MaintenanceTicket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                 ticket.ID,
		PropertyID:         ticket.PropertyID,
		TenantID:           ticket.TenantID,
		AssignedProviderID: ticket.AssignedProviderID,
		Title:              ticket.Title,
		Description:        ticket.Description,
		Status:             ticket.Status,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			ActorRole:  entry.ActorRole,
			OldStatus:  entry.OldStatus,
			NewStatus:  entry.NewStatus,
			ProviderID: entry.ProviderID,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp
}
