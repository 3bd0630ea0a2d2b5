package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/property-service/internal/config"
	"github.com/spec-kit/property-service/internal/domain"
	"github.com/spec-kit/property-service/internal/events"
	"github.com/spec-kit/property-service/internal/repository"
)

// NotificationService handles emitting notifications for domain events
// and records the transition audit trail. It runs off the commit path:
// none of its failures roll back the transition that triggered them.
type NotificationService struct {
	dispatcher events.Dispatcher
	history    repository.TicketHistoryRepository
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, history repository.TicketHistoryRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		history:    history,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventInvitationIssued, n.handleInvitationIssued)
	n.dispatcher.Subscribe(events.EventRentMarkedPaid, n.handleRentMarkedPaid)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.recordTransition(ctx, event)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleInvitationIssued(ctx context.Context, event events.Event) error {
	n.logger.Info("InvitationIssued", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRentMarkedPaid(ctx context.Context, event events.Event) error {
	n.logger.Info("RentMarkedPaid", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) recordTransition(ctx context.Context, event events.Event) {
	if n.history == nil {
		return
	}
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:   event.TicketID,
		ActorID:    event.Actor.AccountID,
		ActorRole:  event.Actor.Role,
		OldStatus:  payload.OldStatus,
		NewStatus:  payload.NewStatus,
		ProviderID: payload.ProviderID,
	}
	if err := n.history.Create(ctx, entry); err != nil {
		n.logger.Warn("failed to record ticket history", zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
