package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/publisher"
)

var _ publisher.PositionPublisher = (*PositionPublisher)(nil)

// Conn is satisfied by *nats.Conn.
type Conn interface {
	Publish(subject string, data []byte) error
}

// PositionPublisher fans accepted positions out on
// trip.{tripID}.positions.{deviceID} for map and ETA consumers.
type PositionPublisher struct {
	nc          Conn
	tripID      string
	logSubjects bool
}

func NewPositionPublisher(nc Conn, tripID string, logSubjects bool) *PositionPublisher {
	return &PositionPublisher{nc: nc, tripID: tripID, logSubjects: logSubjects}
}

type positionMessage struct {
	TripID    string   `json:"tripId"`
	DeviceID  string   `json:"deviceId"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Accuracy  float64  `json:"accuracy"`
	SpeedMps  *float64 `json:"speedMps,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

func (p *PositionPublisher) Subject(deviceID string) string {
	return fmt.Sprintf("trip.%s.positions.%s", subjectToken(p.tripID), subjectToken(deviceID))
}

func (p *PositionPublisher) PublishPosition(_ context.Context, dp *domain.DevicePosition) error {
	subject := p.Subject(dp.DeviceID)
	b, err := json.Marshal(positionMessage{
		TripID:    p.tripID,
		DeviceID:  dp.DeviceID,
		Lat:       dp.Position.Lat,
		Lon:       dp.Position.Lon,
		Accuracy:  dp.Position.Accuracy,
		SpeedMps:  dp.Position.Speed,
		Heading:   dp.Position.Heading,
		Timestamp: dp.Position.Timestamp.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal position: %w", err)
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	if err := p.nc.Publish(subject, b); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot contain spaces, '>', '*' or '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
