package service_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"go.uber.org/zap"

	"github.com/spec-kit/property-service/internal/config"
	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/repository/memory"
	"github.com/spec-kit/property-service/internal/service"
)

func TestNotificationRecordsTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("status change event appends a history entry", func(t *testing.T) {
		dispatcher := events.NewInMemoryDispatcher()
		history := memory.NewTicketHistoryRepository()
		svc := service.NewNotificationService(dispatcher, history, zap.NewNop(), config.NotificationConfig{})
		svc.RegisterHandlers()

		providerID := "provider-1"
		gt.NoError(t, dispatcher.Publish(ctx, events.Event{
			ID:       "evt-1",
			Type:     events.EventTicketStatusChanged,
			TicketID: "ticket-1",
			Actor:    events.Actor{AccountID: "owner-1", Role: domain.RoleOwner},
			Payload: events.TicketStatusChangedPayload{
				PropertyID: "property-1",
				OldStatus:  domain.TicketStatusPending,
				NewStatus:  domain.TicketStatusAccepted,
				ProviderID: &providerID,
			},
		}))

		entries, err := history.ListByTicket(ctx, "ticket-1")
		gt.NoError(t, err).Required()
		gt.A(t, entries).Length(1)
		gt.V(t, entries[0].ActorID).Equal("owner-1")
		gt.V(t, entries[0].OldStatus).Equal(domain.TicketStatusPending)
		gt.V(t, entries[0].NewStatus).Equal(domain.TicketStatusAccepted)
		gt.V(t, *entries[0].ProviderID).Equal(providerID)
	})

	t.Run("other events do not write history", func(t *testing.T) {
		dispatcher := events.NewInMemoryDispatcher()
		history := memory.NewTicketHistoryRepository()
		svc := service.NewNotificationService(dispatcher, history, zap.NewNop(), config.NotificationConfig{})
		svc.RegisterHandlers()

		gt.NoError(t, dispatcher.Publish(ctx, events.Event{
			ID:       "evt-2",
			Type:     events.EventTicketCreated,
			TicketID: "ticket-1",
			Payload:  events.TicketCreatedPayload{PropertyID: "property-1", Title: "Leaking faucet"},
		}))

		entries, err := history.ListByTicket(ctx, "ticket-1")
		gt.NoError(t, err).Required()
		gt.A(t, entries).Length(0)
	})
}
