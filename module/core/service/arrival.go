package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/publisher"
)

var _ ArrivalHandler = (*ArrivalService)(nil)

const defaultSideEffectTimeout = 5 * time.Second

type CheckInWriter interface {
	CheckIn(ctx context.Context, activityID string) error
}

// ArrivalService performs the automatic check-in on arrival and hands
// notifications to the delivery side through the event publisher.
type ArrivalService struct {
	checkins CheckInWriter
	events   publisher.EventPublisher
	timeout  time.Duration
	now      func() time.Time
}

func NewArrivalService(checkins CheckInWriter, events publisher.EventPublisher) *ArrivalService {
	return &ArrivalService{
		checkins: checkins,
		events:   events,
		timeout:  defaultSideEffectTimeout,
		now:      time.Now,
	}
}

func (s *ArrivalService) AutoCheckIn(ctx context.Context, g domain.Geofence, at time.Time) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.checkins.CheckIn(ctx, g.Activity.ID); err != nil {
		log.Printf("arrival: auto check-in failed activity=%s: %v", g.Activity.ID, err)
	} else {
		log.Printf("arrival: checked in activity=%s at=%s", g.Activity.ID, at.Format(time.RFC3339))
	}

	body := g.Activity.Description
	if body == "" && g.Activity.Location != nil {
		body = g.Activity.Location.Address
	}
	s.notify(ctx, &domain.Notification{
		ID:         uuid.NewString(),
		Kind:       domain.NotificationArrival,
		ActivityID: g.Activity.ID,
		Title:      "Arrived at " + g.Activity.Title,
		Body:       body,
		Tag:        "arrival-" + g.Activity.ID,
		Haptic:     domain.HapticSuccess,
		CreatedAt:  s.now(),
	})
}

func (s *ArrivalService) ApproachAlert(ctx context.Context, g domain.Geofence, distanceMeters float64) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	walk := distanceMeters / 1000 / averageSpeedKmh[domain.TransportWalking] * 60
	s.notify(ctx, &domain.Notification{
		ID:         uuid.NewString(),
		Kind:       domain.NotificationApproach,
		ActivityID: g.Activity.ID,
		Title:      "Approaching " + g.Activity.Title,
		Body:       fmt.Sprintf("%s away, %s on foot", FormatDistance(distanceMeters), FormatDuration(walk)),
		Tag:        "approach-" + g.Activity.ID,
		Haptic:     domain.HapticWarning,
		CreatedAt:  s.now(),
	})
}

// PublishEvent forwards a geofence transition to the event bus.
func (s *ArrivalService) PublishEvent(ev domain.GeofenceEvent) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.events.PublishGeofenceEvent(ctx, &ev); err != nil {
		log.Printf("arrival: publish %s failed id=%s: %v", ev.Type, ev.GeofenceID, err)
	}
}

func (s *ArrivalService) notify(ctx context.Context, n *domain.Notification) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishNotification(ctx, n); err != nil {
		log.Printf("arrival: publish notification failed tag=%s: %v", n.Tag, err)
	}
}
