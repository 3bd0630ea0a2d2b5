package service_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/spec-kit/property-service/internal/service"
	apperrors "github.com/spec-kit/property-service/pkg/util"
)

func newPropertyService(f *workflowFixture) *service.PropertyService {
	resolver := service.NewRoleResolver(service.ResolverDependencies{
		AccountRepo:  f.accounts,
		PropertyRepo: f.properties,
		TicketRepo:   f.tickets,
	})
	return service.NewPropertyService(f.properties, resolver)
}

func TestPropertyService(t *testing.T) {
	ctx := context.Background()

	t.Run("owner creates and lists properties", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc := newPropertyService(f)

		created, err := svc.CreateProperty(ctx, f.owner.ID, " Unit 5C ", "12 Elm St")
		gt.NoError(t, err).Required()
		gt.V(t, created.Name).Equal("Unit 5C")
		gt.V(t, created.OwnerID).Equal(f.owner.ID)

		// The fixture seeds one property already.
		properties, err := svc.ListProperties(ctx, f.owner.ID)
		gt.NoError(t, err).Required()
		gt.A(t, properties).Length(2)
	})

	t.Run("tenant cannot create properties", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc := newPropertyService(f)

		_, err := svc.CreateProperty(ctx, f.tenant.ID, "Unit 5C", "")
		gt.B(t, apperrors.HasCode(err, apperrors.CodePermissionDenied)).True()
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		f := newWorkflowFixture(t)
		svc := newPropertyService(f)

		_, err := svc.CreateProperty(ctx, f.owner.ID, "  ", "")
		gt.B(t, apperrors.HasCode(err, apperrors.CodeValidationFailed)).True()
	})
}
