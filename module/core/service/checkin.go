package service

import (
	"context"
	"log"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/cache"
)

// CheckInService wraps the external check-in set. The set only ever grows
// through CheckIn; removal happens through an explicit Toggle or Clear.
type CheckInService struct {
	repo     cache.CheckInRepository
	schedule *domain.Schedule
}

// NewCheckInService validates ids against schedule when it is not nil.
func NewCheckInService(repo cache.CheckInRepository, schedule *domain.Schedule) *CheckInService {
	return &CheckInService{repo: repo, schedule: schedule}
}

func (s *CheckInService) known(id string) error {
	if s.schedule == nil {
		return nil
	}
	if _, _, ok := s.schedule.FindActivity(id); !ok {
		return domain.ErrActivityNotFound
	}
	return nil
}

func (s *CheckInService) List(ctx context.Context) ([]string, error) {
	return s.repo.Members(ctx)
}

func (s *CheckInService) IsCheckedIn(ctx context.Context, activityID string) (bool, error) {
	return s.repo.Contains(ctx, activityID)
}

func (s *CheckInService) CheckIn(ctx context.Context, activityID string) error {
	if err := s.known(activityID); err != nil {
		return err
	}
	return s.repo.Add(ctx, activityID)
}

// Toggle flips the check-in and reports the new state.
func (s *CheckInService) Toggle(ctx context.Context, activityID string) (bool, error) {
	if err := s.known(activityID); err != nil {
		return false, err
	}
	ok, err := s.repo.Contains(ctx, activityID)
	if err != nil {
		return false, err
	}
	if ok {
		return false, s.repo.Remove(ctx, activityID)
	}
	return true, s.repo.Add(ctx, activityID)
}

func (s *CheckInService) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *CheckInService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Overrides never fails: a store error is logged and yields an empty set.
func (s *CheckInService) Overrides(ctx context.Context) domain.CheckInSet {
	ids, err := s.repo.Members(ctx)
	if err != nil {
		log.Printf("checkin: read overrides failed: %v", err)
		return domain.CheckInSet{}
	}
	return domain.NewCheckInSet(ids...)
}
