package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/repository/memory"
	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

type rentFixture struct {
	*workflowFixture
	rents   *memory.RentRepository
	service *service.RentService
}

func newRentFixture(t *testing.T) *rentFixture {
	t.Helper()
	f := newWorkflowFixture(t)
	rents := memory.NewRentRepository()
	resolver := service.NewRoleResolver(service.ResolverDependencies{
		AccountRepo:  f.accounts,
		PropertyRepo: f.properties,
		TicketRepo:   f.tickets,
	})
	return &rentFixture{
		workflowFixture: f,
		rents:           rents,
		service: service.NewRentService(service.RentDependencies{
			RentRepo:     rents,
			PropertyRepo: f.properties,
			Resolver:     resolver,
		}),
	}
}

func rentInput(propertyID string) service.RentCreateInput {
	return service.RentCreateInput{
		PropertyID:  propertyID,
		Period:      "2026-09",
		AmountCents: 125000,
		DueDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRentCreateObligation(t *testing.T) {
	ctx := context.Background()

	t.Run("owner creates a due obligation for the tenant", func(t *testing.T) {
		f := newRentFixture(t)

		rent, err := f.service.CreateObligation(ctx, f.owner.ID, rentInput(f.property.ID))
		gt.NoError(t, err).Required()
		gt.V(t, rent.Status).Equal(domain.RentStatusDue)
		gt.V(t, rent.TenantID).Equal(f.tenant.ID)
		gt.V(t, rent.ID).NotEqual("")
	})

	t.Run("tenant cannot create obligations", func(t *testing.T) {
		f := newRentFixture(t)

		_, err := f.service.CreateObligation(ctx, f.tenant.ID, rentInput(f.property.ID))
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("owner of another property is denied", func(t *testing.T) {
		f := newRentFixture(t)
		stranger := &domain.Account{Name: "Other Owner", Email: "other@example.com", Role: domain.RoleOwner, Active: true}
		gt.NoError(t, f.accounts.Create(ctx, stranger)).Required()

		_, err := f.service.CreateObligation(ctx, stranger.ID, rentInput(f.property.ID))
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("malformed period is rejected", func(t *testing.T) {
		f := newRentFixture(t)
		input := rentInput(f.property.ID)
		input.Period = "Sep 2026"

		_, err := f.service.CreateObligation(ctx, f.owner.ID, input)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeValidationFailed)).True()
	})

	t.Run("vacant property is a conflict", func(t *testing.T) {
		f := newRentFixture(t)
		vacant := &domain.Property{OwnerID: f.owner.ID, Name: "Unit 5C", Address: "12 Elm St"}
		gt.NoError(t, f.properties.Create(ctx, vacant)).Required()

		_, err := f.service.CreateObligation(ctx, f.owner.ID, rentInput(vacant.ID))
		gt.B(t, apperrors.HasCode(err, apperrors.CodeConflict)).True()
	})
}

func TestRentMarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("owner marks due rent paid", func(t *testing.T) {
		f := newRentFixture(t)
		rent, err := f.service.CreateObligation(ctx, f.owner.ID, rentInput(f.property.ID))
		gt.NoError(t, err).Required()

		paid, err := f.service.MarkPaid(ctx, f.owner.ID, rent.ID)
		gt.NoError(t, err).Required()
		gt.V(t, paid.Status).Equal(domain.RentStatusPaid)
		gt.Value(t, paid.PaidAt).NotNil()
	})

	t.Run("double marking loses the conditional write", func(t *testing.T) {
		f := newRentFixture(t)
		rent, err := f.service.CreateObligation(ctx, f.owner.ID, rentInput(f.property.ID))
		gt.NoError(t, err).Required()

		_, err = f.service.MarkPaid(ctx, f.owner.ID, rent.ID)
		gt.NoError(t, err).Required()

		_, err = f.service.MarkPaid(ctx, f.owner.ID, rent.ID)
		gt.B(t, apperrors.HasCode(err, apperrors.CodeConcurrentModification)).True()
	})

	t.Run("tenant cannot mark paid", func(t *testing.T) {
		f := newRentFixture(t)
		rent, err := f.service.CreateObligation(ctx, f.owner.ID, rentInput(f.property.ID))
		gt.NoError(t, err).Required()

		_, err = f.service.MarkPaid(ctx, f.tenant.ID, rent.ID)
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("unknown obligation is not found", func(t *testing.T) {
		f := newRentFixture(t)

		_, err := f.service.MarkPaid(ctx, f.owner.ID, "no-such-rent")
		gt.B(t, apperrors.HasCode(err, apperrors.CodeNotFound)).True()
	})
}

func TestRentListObligations(t *testing.T) {
	ctx := context.Background()

	t.Run("owner and tenant see the same obligation, provider sees none", func(t *testing.T) {
		f := newRentFixture(t)
		_, err := f.service.CreateObligation(ctx, f.owner.ID, rentInput(f.property.ID))
		gt.NoError(t, err).Required()

		forOwner, err := f.service.ListObligations(ctx, f.owner.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forOwner).Length(1)

		forTenant, err := f.service.ListObligations(ctx, f.tenant.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forTenant).Length(1)

		forProvider, err := f.service.ListObligations(ctx, f.provider.ID, 20, 0)
		gt.NoError(t, err).Required()
		gt.A(t, forProvider).Length(0)
	})
}
