package service

import (
	"context"
	"log"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/database"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/publisher"
)

// HistoryService logs accepted positions of one device and answers history
// queries for any device.
type HistoryService struct {
	repo      database.PositionRepository
	positions publisher.PositionPublisher
	deviceID  string
	timeout   time.Duration
}

// NewHistoryService accepts a nil positions publisher.
func NewHistoryService(repo database.PositionRepository, positions publisher.PositionPublisher, deviceID string) *HistoryService {
	return &HistoryService{
		repo:      repo,
		positions: positions,
		deviceID:  deviceID,
		timeout:   defaultSideEffectTimeout,
	}
}

func (s *HistoryService) SavePosition(ctx context.Context, dp *domain.DevicePosition) error {
	if err := s.repo.Insert(ctx, dp); err != nil {
		return err
	}
	if s.positions != nil {
		if err := s.positions.PublishPosition(ctx, dp); err != nil {
			log.Printf("history: publish position failed device=%s: %v", dp.DeviceID, err)
		}
	}
	return nil
}

// Record is a location stream subscriber.
func (s *HistoryService) Record(p domain.Position) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.SavePosition(ctx, &domain.DevicePosition{DeviceID: s.deviceID, Position: p}); err != nil {
		log.Printf("history: save position failed device=%s: %v", s.deviceID, err)
	}
}

func (s *HistoryService) GetLatest(ctx context.Context, deviceID string) (*domain.DevicePosition, error) {
	return s.repo.GetLatest(ctx, deviceID)
}

func (s *HistoryService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error) {
	return s.repo.GetHistory(ctx, query)
}

func (s *HistoryService) ListDevices(ctx context.Context) ([]string, error) {
	return s.repo.ListDevices(ctx)
}

func (s *HistoryService) DeviceID() string { return s.deviceID }
