package cache

import "context"

// CheckInRepository stores the ids of activities the user checked in by hand.
type CheckInRepository interface {
	Add(ctx context.Context, activityID string) error
	Remove(ctx context.Context, activityID string) error
	Contains(ctx context.Context, activityID string) (bool, error)
	Members(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
