package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type mockPositionRepo struct {
	insertFn      func(ctx context.Context, dp *domain.DevicePosition) error
	getLatestFn   func(ctx context.Context, deviceID string) (*domain.DevicePosition, error)
	getHistoryFn  func(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error)
	listDevicesFn func(ctx context.Context) ([]string, error)
}

func (m *mockPositionRepo) Insert(ctx context.Context, dp *domain.DevicePosition) error {
	return m.insertFn(ctx, dp)
}

func (m *mockPositionRepo) GetLatest(ctx context.Context, deviceID string) (*domain.DevicePosition, error) {
	return m.getLatestFn(ctx, deviceID)
}

func (m *mockPositionRepo) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error) {
	return m.getHistoryFn(ctx, query)
}

func (m *mockPositionRepo) ListDevices(ctx context.Context) ([]string, error) {
	return m.listDevicesFn(ctx)
}

type mockPositionPublisher struct {
	published []*domain.DevicePosition
	err       error
}

func (m *mockPositionPublisher) PublishPosition(_ context.Context, dp *domain.DevicePosition) error {
	m.published = append(m.published, dp)
	return m.err
}

func TestSavePosition_Success(t *testing.T) {
	var inserted *domain.DevicePosition
	repo := &mockPositionRepo{
		insertFn: func(_ context.Context, dp *domain.DevicePosition) error {
			inserted = dp
			return nil
		},
	}
	pub := &mockPositionPublisher{}

	svc := NewHistoryService(repo, pub, "phone-1")
	err := svc.SavePosition(context.Background(), &domain.DevicePosition{
		DeviceID: "phone-1",
		Position: fixAt(danangBeach),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted == nil || inserted.DeviceID != "phone-1" {
		t.Fatalf("expected Insert to be called for phone-1, got %v", inserted)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected 1 published position, got %d", len(pub.published))
	}
}

func TestSavePosition_RepoErrorSkipsPublish(t *testing.T) {
	repo := &mockPositionRepo{
		insertFn: func(context.Context, *domain.DevicePosition) error { return errors.New("db error") },
	}
	pub := &mockPositionPublisher{}

	svc := NewHistoryService(repo, pub, "phone-1")
	if err := svc.SavePosition(context.Background(), &domain.DevicePosition{DeviceID: "phone-1"}); err == nil {
		t.Fatal("expected error")
	}
	if len(pub.published) != 0 {
		t.Errorf("expected nothing published, got %d", len(pub.published))
	}
}

func TestSavePosition_PublishErrorIgnored(t *testing.T) {
	repo := &mockPositionRepo{
		insertFn: func(context.Context, *domain.DevicePosition) error { return nil },
	}
	pub := &mockPositionPublisher{err: errors.New("nats down")}

	svc := NewHistoryService(repo, pub, "phone-1")
	if err := svc.SavePosition(context.Background(), &domain.DevicePosition{DeviceID: "phone-1"}); err != nil {
		t.Fatalf("expected publish failure to be ignored, got %v", err)
	}
}

func TestRecord_UsesDeviceID(t *testing.T) {
	var inserted *domain.DevicePosition
	repo := &mockPositionRepo{
		insertFn: func(_ context.Context, dp *domain.DevicePosition) error {
			inserted = dp
			return nil
		},
	}

	svc := NewHistoryService(repo, nil, "phone-1")
	svc.Record(fixAt(danangBeach))

	if inserted == nil || inserted.DeviceID != "phone-1" || inserted.Position.Coord != danangBeach {
		t.Fatalf("unexpected insert: %+v", inserted)
	}
}

func TestGetLatest_Success(t *testing.T) {
	repo := &mockPositionRepo{
		getLatestFn: func(_ context.Context, deviceID string) (*domain.DevicePosition, error) {
			return &domain.DevicePosition{DeviceID: deviceID, Position: fixAt(danangBeach)}, nil
		},
	}

	svc := NewHistoryService(repo, nil, "phone-1")
	dp, err := svc.GetLatest(context.Background(), "phone-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dp.Position.Lat != danangBeach.Lat {
		t.Errorf("expected %f, got %f", danangBeach.Lat, dp.Position.Lat)
	}
}

func TestGetLatest_NotFound(t *testing.T) {
	repo := &mockPositionRepo{
		getLatestFn: func(context.Context, string) (*domain.DevicePosition, error) {
			return nil, domain.ErrNoPosition
		},
	}

	svc := NewHistoryService(repo, nil, "phone-1")
	if _, err := svc.GetLatest(context.Background(), "UNKNOWN"); !errors.Is(err, domain.ErrNoPosition) {
		t.Fatalf("expected ErrNoPosition, got %v", err)
	}
}

func TestGetHistory_Success(t *testing.T) {
	start := time.Unix(1768449000, 0)
	end := time.Unix(1768453200, 0)
	repo := &mockPositionRepo{
		getHistoryFn: func(_ context.Context, q *domain.HistoryQuery) ([]domain.DevicePosition, error) {
			if !q.Start.Equal(start) || !q.End.Equal(end) {
				t.Errorf("unexpected range %v - %v", q.Start, q.End)
			}
			return []domain.DevicePosition{{DeviceID: q.DeviceID}, {DeviceID: q.DeviceID}}, nil
		},
	}

	svc := NewHistoryService(repo, nil, "phone-1")
	results, err := svc.GetHistory(context.Background(), &domain.HistoryQuery{DeviceID: "phone-1", Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestListDevices(t *testing.T) {
	repo := &mockPositionRepo{
		listDevicesFn: func(context.Context) ([]string, error) { return []string{"phone-1", "watch-1"}, nil },
	}

	svc := NewHistoryService(repo, nil, "phone-1")
	ids, err := svc.ListDevices(context.Background())
	if err != nil || len(ids) != 2 {
		t.Fatalf("unexpected result %v (%v)", ids, err)
	}
}
