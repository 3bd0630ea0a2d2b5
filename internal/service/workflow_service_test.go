package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository/memory"
	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

type workflowFixture struct {
	accounts   *memory.AccountRepository
	properties *memory.PropertyRepository
	tickets    *memory.TicketRepository
	workflow   *service.WorkflowService

	owner    *domain.Account
	tenant   *domain.Account
	provider *domain.Account
	property *domain.Property
	ticket   *domain.MaintenanceTicket
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	ctx := context.Background()

	f := &workflowFixture{
		accounts:   memory.NewAccountRepository(),
		properties: memory.NewPropertyRepository(),
		tickets:    memory.NewTicketRepository(),
	}

	f.owner = &domain.Account{Name: "Olivia Owner", Email: "owner@example.com", Role: domain.RoleOwner, Active: true}
	f.tenant = &domain.Account{Name: "Theo Tenant", Email: "tenant@example.com", Role: domain.RoleTenant, Active: true}
	f.provider = &domain.Account{Name: "Pat Provider", Email: "provider@example.com", Role: domain.RoleProvider, Active: true}
	gt.NoError(t, f.accounts.Create(ctx, f.owner)).Required()
	gt.NoError(t, f.accounts.Create(ctx, f.tenant)).Required()
	gt.NoError(t, f.accounts.Create(ctx, f.provider)).Required()

	f.property = &domain.Property{OwnerID: f.owner.ID, Name: "Unit 4B", Address: "12 Elm St"}
	gt.NoError(t, f.properties.Create(ctx, f.property)).Required()
	gt.NoError(t, f.properties.SetTenant(ctx, f.property.ID, f.tenant.ID)).Required()

	f.ticket = &domain.MaintenanceTicket{
		PropertyID:  f.property.ID,
		TenantID:    f.tenant.ID,
		Title:       "Leaking faucet",
		Description: "Kitchen faucet drips constantly",
		Status:      domain.TicketStatusPending,
	}
	gt.NoError(t, f.tickets.Create(ctx, f.ticket)).Required()

	resolver := service.NewRoleResolver(service.ResolverDependencies{
		AccountRepo:  f.accounts,
		PropertyRepo: f.properties,
		TicketRepo:   f.tickets,
	})
	f.workflow = service.NewWorkflowService(service.WorkflowDependencies{
		Resolver:   resolver,
		TicketRepo: f.tickets,
	})
	return f
}

func (f *workflowFixture) currentTicket(t *testing.T) *domain.MaintenanceTicket {
	t.Helper()
	ticket, err := f.tickets.GetByID(context.Background(), f.ticket.ID)
	gt.NoError(t, err).Required()
	return ticket
}

func TestWorkflowTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("owner accepts pending ticket and assigns provider", func(t *testing.T) {
		f := newWorkflowFixture(t)

		updated, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, &f.provider.ID)
		gt.NoError(t, err).Required()
		gt.V(t, updated.Status).Equal(domain.TicketStatusAccepted)
		gt.Value(t, updated.AssignedProviderID).NotNil()
		gt.V(t, *updated.AssignedProviderID).Equal(f.provider.ID)
	})

	t.Run("assigned provider completes accepted ticket", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, &f.provider.ID)
		gt.NoError(t, err).Required()

		updated, err := f.workflow.Transition(ctx, f.provider.ID, f.ticket.ID, domain.TicketStatusCompleted, nil)
		gt.NoError(t, err).Required()
		gt.V(t, updated.Status).Equal(domain.TicketStatusCompleted)
	})

	t.Run("owner completes accepted ticket directly", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, nil)
		gt.NoError(t, err).Required()

		updated, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusCompleted, nil)
		gt.NoError(t, err).Required()
		gt.V(t, updated.Status).Equal(domain.TicketStatusCompleted)
		gt.Value(t, updated.AssignedProviderID).Nil()
	})

	t.Run("tenant is denied and no write happens", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.workflow.Transition(ctx, f.tenant.ID, f.ticket.ID, domain.TicketStatusAccepted, nil)
		gt.Value(t, err).NotNil()
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()

		var domainErr *apperrors.DomainError
		gt.B(t, errors.As(err, &domainErr)).True()
		gt.V(t, domainErr.Details["reason"]).Equal(string(apperrors.DenyWrongRole))

		gt.V(t, f.currentTicket(t).Status).Equal(domain.TicketStatusPending)
	})

	t.Run("owner cannot skip pending to completed", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusCompleted, nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()

		var domainErr *apperrors.DomainError
		gt.B(t, errors.As(err, &domainErr)).True()
		gt.V(t, domainErr.Details["reason"]).Equal(string(apperrors.DenyIllegalStatusSkip))
		gt.V(t, f.currentTicket(t).Status).Equal(domain.TicketStatusPending)
	})

	t.Run("unknown ticket yields not found", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.workflow.Transition(ctx, f.owner.ID, "no-such-ticket", domain.TicketStatusAccepted, nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeNotFound)).True()
	})

	t.Run("empty actor identity is unauthenticated", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.workflow.Transition(ctx, "  ", f.ticket.ID, domain.TicketStatusAccepted, nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated)).True()
	})

	t.Run("unknown account is profile missing", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.workflow.Transition(ctx, "ghost-account", f.ticket.ID, domain.TicketStatusAccepted, nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeProfileMissing)).True()
	})

	t.Run("deactivated account is profile missing", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.owner.Active = false
		gt.NoError(t, f.accounts.Update(ctx, f.owner)).Required()

		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeProfileMissing)).True()
	})

	t.Run("unknown status is rejected before any lookup", func(t *testing.T) {
		f := newWorkflowFixture(t)

		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatus("ESCALATED"), nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeValidationFailed)).True()
	})

	t.Run("write failure surfaces store unavailable", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.tickets.FailWrites = errors.New("connection reset")

		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, nil)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable)).True()
		gt.V(t, f.currentTicket(t).Status).Equal(domain.TicketStatusPending)
	})

	t.Run("provider assigned at acceptance is not overwritten at completion", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, &f.provider.ID)
		gt.NoError(t, err).Required()

		other := "someone-else"
		updated, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusCompleted, &other)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.AssignedProviderID).NotNil()
		gt.V(t, *updated.AssignedProviderID).Equal(f.provider.ID)
	})
}

func TestWorkflowTransitionConcurrency(t *testing.T) {
	ctx := context.Background()

	t.Run("exactly one of two identical requests wins", func(t *testing.T) {
		f := newWorkflowFixture(t)

		results := make([]error, 2)
		var eg errgroup.Group
		for i := range results {
			i := i
			eg.Go(func() error {
				_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, &f.provider.ID)
				results[i] = err
				return nil
			})
		}
		gt.NoError(t, eg.Wait()).Required()

		var wins, losses int
		for _, err := range results {
			switch {
			case err == nil:
				wins++
			case apperrors.HasCode(err, apperrors.CodeConcurrentModification):
				losses++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		gt.V(t, wins).Equal(1)
		gt.V(t, losses).Equal(1)
		gt.V(t, f.currentTicket(t).Status).Equal(domain.TicketStatusAccepted)
	})

	t.Run("many racing completions apply once", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.workflow.Transition(ctx, f.owner.ID, f.ticket.ID, domain.TicketStatusAccepted, &f.provider.ID)
		gt.NoError(t, err).Required()

		const n = 8
		results := make([]error, n)
		var eg errgroup.Group
		for i := 0; i < n; i++ {
			i := i
			eg.Go(func() error {
				_, err := f.workflow.Transition(ctx, f.provider.ID, f.ticket.ID, domain.TicketStatusCompleted, nil)
				results[i] = err
				return nil
			})
		}
		gt.NoError(t, eg.Wait()).Required()

		var wins int
		for _, err := range results {
			if err == nil {
				wins++
				continue
			}
			// Losers see either the lost race or, when they read after the
			// winner committed, the terminal-status policy denial.
			ok := apperrors.HasCode(err, apperrors.CodeConcurrentModification) ||
				apperrors.HasCode(err, apperrors.CodePermissionDenied)
			gt.B(t, ok).True()
		}
		gt.V(t, wins).Equal(1)
		gt.V(t, f.currentTicket(t).Status).Equal(domain.TicketStatusCompleted)
	})
}
