// Package worker hosts the background side of the service: event
// subscribers that run off the request path.
package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/property-service/internal/service"
)

// NotificationWorker owns the notification subscriber lifecycle.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
}

// NewNotificationWorker creates the worker.
func NewNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) *NotificationWorker {
	return &NotificationWorker{notifications: notifications, logger: logger}
}

// Start registers the notification handlers on the dispatcher.
func (w *NotificationWorker) Start() {
	if w.notifications == nil {
		return
	}
	w.notifications.RegisterHandlers()
	w.logger.Info("notification worker started")
}
