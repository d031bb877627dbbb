package service

import (
	"context"
	"errors"
	"sort"
	"testing"
)

type mockCheckInRepo struct {
	set       map[string]struct{}
	membersFn func(ctx context.Context) ([]string, error)
}

func newMockCheckInRepo(ids ...string) *mockCheckInRepo {
	m := &mockCheckInRepo{set: map[string]struct{}{}}
	for _, id := range ids {
		m.set[id] = struct{}{}
	}
	return m
}

func (m *mockCheckInRepo) Add(_ context.Context, id string) error {
	m.set[id] = struct{}{}
	return nil
}

func (m *mockCheckInRepo) Remove(_ context.Context, id string) error {
	delete(m.set, id)
	return nil
}

func (m *mockCheckInRepo) Contains(_ context.Context, id string) (bool, error) {
	_, ok := m.set[id]
	return ok, nil
}

func (m *mockCheckInRepo) Members(ctx context.Context) ([]string, error) {
	if m.membersFn != nil {
		return m.membersFn(ctx)
	}
	ids := make([]string, 0, len(m.set))
	for id := range m.set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockCheckInRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.set)), nil
}

func (m *mockCheckInRepo) Clear(_ context.Context) error {
	m.set = map[string]struct{}{}
	return nil
}

func TestCheckIn_UnknownActivity(t *testing.T) {
	svc := NewCheckInService(newMockCheckInRepo(), testSchedule(t))

	if err := svc.CheckIn(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown activity")
	}
	if _, err := svc.Toggle(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown activity")
	}
}

func TestCheckIn_AddIsIdempotent(t *testing.T) {
	repo := newMockCheckInRepo()
	svc := NewCheckInService(repo, testSchedule(t))
	ctx := context.Background()

	_ = svc.CheckIn(ctx, "d1-1")
	_ = svc.CheckIn(ctx, "d1-1")

	if n, _ := svc.Count(ctx); n != 1 {
		t.Fatalf("expected 1 check-in, got %d", n)
	}
	if ok, _ := svc.IsCheckedIn(ctx, "d1-1"); !ok {
		t.Error("expected d1-1 to be checked in")
	}
}

func TestToggle(t *testing.T) {
	svc := NewCheckInService(newMockCheckInRepo(), nil)
	ctx := context.Background()

	on, err := svc.Toggle(ctx, "x")
	if err != nil || !on {
		t.Fatalf("expected toggle on, got %t (%v)", on, err)
	}
	on, err = svc.Toggle(ctx, "x")
	if err != nil || on {
		t.Fatalf("expected toggle off, got %t (%v)", on, err)
	}
	ids, _ := svc.List(ctx)
	if len(ids) != 0 {
		t.Errorf("expected no check-ins, got %v", ids)
	}
}

func TestOverrides(t *testing.T) {
	svc := NewCheckInService(newMockCheckInRepo("a", "b"), nil)

	set := svc.Overrides(context.Background())
	if !set.Has("a") || !set.Has("b") || set.Has("c") {
		t.Fatalf("unexpected overrides: %v", set)
	}
}

func TestOverrides_StoreErrorIsEmpty(t *testing.T) {
	repo := newMockCheckInRepo("a")
	repo.membersFn = func(context.Context) ([]string, error) { return nil, errors.New("redis down") }
	svc := NewCheckInService(repo, nil)

	set := svc.Overrides(context.Background())
	if set == nil || len(set) != 0 {
		t.Fatalf("expected empty set, got %v", set)
	}
}

func TestClear(t *testing.T) {
	svc := NewCheckInService(newMockCheckInRepo("a", "b"), nil)
	if err := svc.Clear(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := svc.Count(context.Background()); n != 0 {
		t.Errorf("expected 0, got %d", n)
	}
}
