package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return f.err
}

func TestSubjectToken(t *testing.T) {
	tests := map[string]string{
		"phone-1":    "phone-1",
		" my phone ": "my_phone",
		"a.b>c*d/e":  "a_b_c_d_e",
		"":           "_",
	}
	for in, want := range tests {
		if got := subjectToken(in); got != want {
			t.Errorf("subjectToken(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestPublishPosition(t *testing.T) {
	nc := &fakeConn{}
	pub := NewPositionPublisher(nc, "danang.2026", false)
	ts := time.UnixMilli(1768449600123)

	err := pub.PublishPosition(context.Background(), &domain.DevicePosition{
		DeviceID: "phone-1",
		Position: domain.Position{Coord: domain.Coord{Lat: 16.05, Lon: 108.24}, Accuracy: 5, Timestamp: ts},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nc.subjects) != 1 || nc.subjects[0] != "trip.danang_2026.positions.phone-1" {
		t.Fatalf("unexpected subjects: %v", nc.subjects)
	}

	var msg map[string]any
	if err := json.Unmarshal(nc.payloads[0], &msg); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if msg["timestamp"] != float64(1768449600123) || msg["deviceId"] != "phone-1" {
		t.Errorf("unexpected message: %v", msg)
	}
	if _, ok := msg["speedMps"]; ok {
		t.Error("expected speedMps to be omitted")
	}
}

func TestPublishPosition_Error(t *testing.T) {
	nc := &fakeConn{err: natsgo.ErrConnectionClosed}
	pub := NewPositionPublisher(nc, "trip", false)

	err := pub.PublishPosition(context.Background(), &domain.DevicePosition{DeviceID: "phone-1"})
	if !errors.Is(err, natsgo.ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
}
