package publisher

import (
	"context"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type EventPublisher interface {
	PublishGeofenceEvent(ctx context.Context, ev *domain.GeofenceEvent) error
	PublishNotification(ctx context.Context, n *domain.Notification) error
}

type PositionPublisher interface {
	PublishPosition(ctx context.Context, dp *domain.DevicePosition) error
}
