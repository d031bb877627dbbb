package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type mockLocationStream struct {
	permission domain.PermissionState
	granted    bool
	watching   bool
	profile    domain.TrackingProfile
	last       *domain.Position
	starts     int
	stops      int
}

func (m *mockLocationStream) CheckPermission(context.Context) domain.PermissionState {
	return m.permission
}

func (m *mockLocationStream) RequestPermission(context.Context) bool { return m.granted }

func (m *mockLocationStream) StartWatching() {
	m.starts++
	m.watching = true
}

func (m *mockLocationStream) StopWatching() {
	m.stops++
	m.watching = false
}

func (m *mockLocationStream) SetProfile(p domain.TrackingProfile) { m.profile = p }
func (m *mockLocationStream) Profile() domain.TrackingProfile     { return m.profile }
func (m *mockLocationStream) Watching() bool                      { return m.watching }

func (m *mockLocationStream) LastPosition() (domain.Position, bool) {
	if m.last == nil {
		return domain.Position{}, false
	}
	return *m.last, true
}

type mockHistoryService struct {
	getLatestFn   func(ctx context.Context, deviceID string) (*domain.DevicePosition, error)
	getHistoryFn  func(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error)
	listDevicesFn func(ctx context.Context) ([]string, error)
}

func (m *mockHistoryService) GetLatest(ctx context.Context, deviceID string) (*domain.DevicePosition, error) {
	return m.getLatestFn(ctx, deviceID)
}

func (m *mockHistoryService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.DevicePosition, error) {
	return m.getHistoryFn(ctx, query)
}

func (m *mockHistoryService) ListDevices(ctx context.Context) ([]string, error) {
	return m.listDevicesFn(ctx)
}

func (m *mockHistoryService) DeviceID() string { return "phone-1" }

func setupLocationRouter(stream locationStream, history historyService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewLocationHandler(stream, history)
	h.Register(r.Group(""))
	return r
}

func serve(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGetPermission(t *testing.T) {
	r := setupLocationRouter(&mockLocationStream{permission: domain.PermissionPrompt}, &mockHistoryService{})
	w := serve(r, "GET", "/location/permission", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["state"] != "prompt" {
		t.Errorf("expected prompt, got %s", resp["state"])
	}
}

func TestRequestPermission_Denied(t *testing.T) {
	r := setupLocationRouter(&mockLocationStream{granted: false}, &mockHistoryService{})
	w := serve(r, "POST", "/location/permission", nil)

	var resp struct {
		Granted bool   `json:"granted"`
		State   string `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Granted || resp.State != "denied" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestStartStopWatching(t *testing.T) {
	stream := &mockLocationStream{profile: domain.HighAccuracyProfile}
	r := setupLocationRouter(stream, &mockHistoryService{})

	w := serve(r, "POST", "/location/watch", nil)
	var resp watchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Watching || resp.Profile != "high_accuracy" {
		t.Errorf("unexpected response: %+v", resp)
	}

	w = serve(r, "DELETE", "/location/watch", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Watching {
		t.Error("expected watching to be false")
	}
	if stream.starts != 1 || stream.stops != 1 {
		t.Errorf("expected one start and one stop, got %d/%d", stream.starts, stream.stops)
	}
}

func TestSetProfile_Success(t *testing.T) {
	stream := &mockLocationStream{profile: domain.HighAccuracyProfile}
	r := setupLocationRouter(stream, &mockHistoryService{})

	w := serve(r, "PUT", "/location/profile", []byte(`{"profile":"battery_saver"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if stream.profile.Name != "battery_saver" || stream.profile.MinMovementMeters != 50 {
		t.Errorf("unexpected profile: %+v", stream.profile)
	}
}

func TestSetProfile_Invalid(t *testing.T) {
	r := setupLocationRouter(&mockLocationStream{}, &mockHistoryService{})

	for _, body := range []string{`{"profile":"turbo"}`, `{}`, `not json`} {
		w := serve(r, "PUT", "/location/profile", []byte(body))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestGetCurrent_Success(t *testing.T) {
	ts := time.Unix(1768449000, 0)
	stream := &mockLocationStream{last: &domain.Position{
		Coord:     domain.Coord{Lat: 16.0544, Lon: 108.2478},
		Accuracy:  8,
		Timestamp: ts,
	}}
	r := setupLocationRouter(stream, &mockHistoryService{})
	w := serve(r, "GET", "/location/current", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp positionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.DeviceID != "phone-1" || resp.Latitude != 16.0544 || resp.Timestamp != 1768449000 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestGetCurrent_NotFound(t *testing.T) {
	r := setupLocationRouter(&mockLocationStream{}, &mockHistoryService{})
	w := serve(r, "GET", "/location/current", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetHistory_Success(t *testing.T) {
	history := &mockHistoryService{
		getHistoryFn: func(_ context.Context, q *domain.HistoryQuery) ([]domain.DevicePosition, error) {
			if q.DeviceID != "phone-1" {
				t.Errorf("expected default device phone-1, got %s", q.DeviceID)
			}
			if q.Start.Unix() != 1768449000 || q.End.Unix() != 1768453200 {
				t.Errorf("unexpected range: %v - %v", q.Start, q.End)
			}
			return []domain.DevicePosition{
				{DeviceID: "phone-1", Position: domain.Position{Coord: domain.Coord{Lat: 16.05, Lon: 108.24}, Timestamp: q.Start}},
				{DeviceID: "phone-1", Position: domain.Position{Coord: domain.Coord{Lat: 16.00, Lon: 108.26}, Timestamp: q.End}},
			}, nil
		},
	}

	r := setupLocationRouter(&mockLocationStream{}, history)
	w := serve(r, "GET", "/location/history?start=1768449000&end=1768453200", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp []positionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
}

func TestGetHistory_InvalidParams(t *testing.T) {
	r := setupLocationRouter(&mockLocationStream{}, &mockHistoryService{})

	w := serve(r, "GET", "/location/history?start=abc&end=1768453200", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w = serve(r, "GET", "/location/history?start=1768449000", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetHistory_ServiceError(t *testing.T) {
	history := &mockHistoryService{
		getHistoryFn: func(context.Context, *domain.HistoryQuery) ([]domain.DevicePosition, error) {
			return nil, errors.New("db error")
		},
	}
	r := setupLocationRouter(&mockLocationStream{}, history)
	w := serve(r, "GET", "/location/history?start=1&end=2", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetDevices(t *testing.T) {
	history := &mockHistoryService{
		listDevicesFn: func(context.Context) ([]string, error) { return []string{"phone-1", "watch-1"}, nil },
	}
	r := setupLocationRouter(&mockLocationStream{}, history)
	w := serve(r, "GET", "/location/devices", nil)

	var ids []string
	_ = json.Unmarshal(w.Body.Bytes(), &ids)
	if len(ids) != 2 {
		t.Fatalf("expected 2 devices, got %v", ids)
	}
}

func TestGetDeviceLatest_NotFound(t *testing.T) {
	history := &mockHistoryService{
		getLatestFn: func(context.Context, string) (*domain.DevicePosition, error) {
			return nil, domain.ErrNoPosition
		},
	}
	r := setupLocationRouter(&mockLocationStream{}, history)
	w := serve(r, "GET", "/location/devices/UNKNOWN/latest", nil)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
