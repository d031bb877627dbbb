package redis

import (
	"context"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/cache"
)

var _ cache.CheckInRepository = (*CheckInRepo)(nil)

// CheckInRepo keeps the manual check-ins of one trip in a redis set.
type CheckInRepo struct {
	client *goredis.Client
	key    string
}

func NewCheckInRepo(client *goredis.Client, tripID string) *CheckInRepo {
	return &CheckInRepo{client: client, key: checkInKey(tripID)}
}

func checkInKey(tripID string) string {
	return "trip:" + tripID + ":checkins"
}

func (r *CheckInRepo) Add(ctx context.Context, activityID string) error {
	if err := r.client.SAdd(ctx, r.key, activityID).Err(); err != nil {
		return fmt.Errorf("sadd %s: %w", r.key, err)
	}
	return nil
}

func (r *CheckInRepo) Remove(ctx context.Context, activityID string) error {
	if err := r.client.SRem(ctx, r.key, activityID).Err(); err != nil {
		return fmt.Errorf("srem %s: %w", r.key, err)
	}
	return nil
}

func (r *CheckInRepo) Contains(ctx context.Context, activityID string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, activityID).Result()
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", r.key, err)
	}
	return ok, nil
}

// Members returns the ids sorted, since redis sets are unordered.
func (r *CheckInRepo) Members(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", r.key, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *CheckInRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("scard %s: %w", r.key, err)
	}
	return n, nil
}

func (r *CheckInRepo) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", r.key, err)
	}
	return nil
}
