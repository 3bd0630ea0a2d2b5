package service_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository/memory"
	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

func newTicketService(f *workflowFixture) (*service.TicketService, *memory.TicketHistoryRepository) {
	history := memory.NewTicketHistoryRepository()
	resolver := service.NewRoleResolver(service.ResolverDependencies{
		AccountRepo:  f.accounts,
		PropertyRepo: f.properties,
		TicketRepo:   f.tickets,
	})
	svc := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  f.tickets,
		HistoryRepo: history,
		Resolver:    resolver,
	})
	return svc, history
}

func TestTicketCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("tenant opens a pending ticket", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		ticket, err := svc.CreateTicket(ctx, f.tenant.ID, service.TicketCreateInput{
			PropertyID:  f.property.ID,
			Title:       "  Broken heater  ",
			Description: "No heat in bedroom",
		})
		gt.NoError(t, err).Required()
		gt.V(t, ticket.Status).Equal(domain.TicketStatusPending)
		gt.V(t, ticket.Title).Equal("Broken heater")
		gt.V(t, ticket.TenantID).Equal(f.tenant.ID)
		gt.Value(t, ticket.AssignedProviderID).Nil()
	})

	t.Run("owner cannot open tickets", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		_, err := svc.CreateTicket(ctx, f.owner.ID, service.TicketCreateInput{
			PropertyID: f.property.ID,
			Title:      "Broken heater",
		})
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("tenant cannot file against a property they do not occupy", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		_, err := svc.CreateTicket(ctx, f.tenant.ID, service.TicketCreateInput{
			PropertyID: "some-other-property",
			Title:      "Broken heater",
		})
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("blank title is rejected", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		_, err := svc.CreateTicket(ctx, f.tenant.ID, service.TicketCreateInput{
			PropertyID: f.property.ID,
			Title:      "   ",
		})
		gt.B(t, apperrors.HasCode(err, apperrors.CodeValidationFailed)).True()
	})
}

func TestTicketList(t *testing.T) {
	ctx := context.Background()

	t.Run("each role sees its own slice", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		forOwner, err := svc.ListTickets(ctx, f.owner.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forOwner).Length(1)

		forTenant, err := svc.ListTickets(ctx, f.tenant.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forTenant).Length(1)

		// Nothing assigned yet.
		forProvider, err := svc.ListTickets(ctx, f.provider.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forProvider).Length(0)

		_, err = f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, &f.provider.ID)
		gt.NoError(t, err).Required()

		forProvider, err = svc.ListTickets(ctx, f.provider.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forProvider).Length(1)
		gt.V(t, forProvider[0].ID).Equal(f.ticket.ID)
	})
}

func TestTicketGet(t *testing.T) {
	ctx := context.Background()

	t.Run("tenant reads own ticket with history", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, history := newTicketService(f)
		gt.NoError(t, history.Create(ctx, &domain.TicketHistory{
			TicketID:  f.ticket.ID,
			ActorID:   f.owner.ID,
			ActorRole: f.owner.Role,
			OldStatus: domain.TicketStatusPending,
			NewStatus: domain.TicketStatusAccepted,
		})).Required()

		ticket, entries, err := svc.GetTicket(ctx, f.tenant.ID, f.ticket.ID)
		gt.NoError(t, err).Required()
		gt.V(t, ticket.ID).Equal(f.ticket.ID)
		gt.A(t, entries).Length(1)
	})

	t.Run("unassigned provider cannot read the ticket", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		_, _, err := svc.GetTicket(ctx, f.provider.ID, f.ticket.ID)
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("unknown ticket is not found", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc, _ := newTicketService(f)

		_, _, err := svc.GetTicket(ctx, f.tenant.ID, "no-such-ticket")
		gt.B(t, apperrors.HasCode(err, apperrors.CodeNotFound)).True()
	})
}
