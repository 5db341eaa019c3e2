package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/events"
)

// NotificationService logs domain events for the floor's audit trail.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// Register subscribes the audit handlers.
func (n *NotificationService) Register(dispatcher events.Dispatcher) {
	if n == nil || dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventReservationCreated, n.handleReservationCreated)
	dispatcher.Subscribe(events.EventStaffingRequested, n.handleStaffingRequested)
	dispatcher.Subscribe(events.EventTableHeld, n.handleTableHeld)
}

func (n *NotificationService) handleReservationCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ReservationCreated", zap.String("reservation_id", event.ReservationID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleStaffingRequested(_ context.Context, event events.Event) error {
	n.logger.Info("StaffingRequested", zap.String("reservation_id", event.ReservationID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTableHeld(_ context.Context, event events.Event) error {
	n.logger.Debug("TableHeld", zap.String("reservation_id", event.ReservationID), zap.Any("payload", event.Payload))
	return nil
}
