package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/spec-kit/property-service/internal/events"
)

func TestInMemoryDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to subscribers of the matching type", func(t *testing.T) {
		d := events.NewInMemoryDispatcher()

		var got []events.Event
		d.Subscribe(events.EventTicketStatusChanged, func(ctx context.Context, e events.Event) error {
			got = append(got, e)
			return nil
		})
		d.Subscribe(events.EventTicketCreated, func(ctx context.Context, e events.Event) error {
			t.Fatal("wrong handler invoked")
			return nil
		})

		gt.NoError(t, d.Publish(ctx, events.Event{ID: "evt-1", Type: events.EventTicketStatusChanged, TicketID: "ticket-1"}))
		gt.A(t, got).Length(1)
		gt.V(t, got[0].TicketID).Equal("ticket-1")
	})

	t.Run("handler errors do not reach the publisher or stop delivery", func(t *testing.T) {
		d := events.NewInMemoryDispatcher()

		var delivered int
		d.Subscribe(events.EventRentMarkedPaid, func(ctx context.Context, e events.Event) error {
			return errors.New("handler blew up")
		})
		d.Subscribe(events.EventRentMarkedPaid, func(ctx context.Context, e events.Event) error {
			delivered++
			return nil
		})

		gt.NoError(t, d.Publish(ctx, events.Event{ID: "evt-2", Type: events.EventRentMarkedPaid}))
		gt.V(t, delivered).Equal(1)
	})

	t.Run("publishing with no subscribers is a no-op", func(t *testing.T) {
		d := events.NewInMemoryDispatcher()
		gt.NoError(t, d.Publish(ctx, events.Event{ID: "evt-3", Type: events.EventInvitationIssued}))
	})
}
