package database

import (
	"context"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type PositionRepository interface {
	Insert(ctx context.Context, dp *domain.DevicePosition) error
	GetLatest(ctx context.Context, deviceID string) (*domain.DevicePosition, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error)
	ListDevices(ctx context.Context) ([]string, error)
}
