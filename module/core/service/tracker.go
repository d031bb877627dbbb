package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

type CheckInSource interface {
	Overrides(ctx context.Context) domain.CheckInSet
}

// TripTracker re-evaluates the time-driven state of the trip. Each tick
// recomputes progress and keeps exactly one geofence armed for the activity
// being tracked while the trip is running.
type TripTracker struct {
	schedule *domain.Schedule
	engine   *GeofenceEngine
	checkins CheckInSource
	metrics  Metrics
	now      func() time.Time

	mu      sync.Mutex
	tracked string
	last    *domain.Progress

	progress *listenerSet[domain.Progress]
}

func NewTripTracker(schedule *domain.Schedule, engine *GeofenceEngine, checkins CheckInSource, m Metrics) *TripTracker {
	m = orNoop(m)
	return &TripTracker{
		schedule: schedule,
		engine:   engine,
		checkins: checkins,
		metrics:  m,
		now:      time.Now,
		progress: newListenerSet[domain.Progress]("trip progress", m),
	}
}

func (t *TripTracker) OnProgress(cb func(domain.Progress)) func() {
	return t.progress.add(cb)
}

func (t *TripTracker) Last() (domain.Progress, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return domain.Progress{}, false
	}
	return *t.last, true
}

// Tracked is the activity id whose geofence is currently armed.
func (t *TripTracker) Tracked() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tracked
}

func (t *TripTracker) Tick(ctx context.Context) domain.Progress {
	now := t.now()
	var overrides domain.CheckInSet
	if t.checkins != nil {
		overrides = t.checkins.Overrides(ctx)
	}
	p := ComputeProgress(t.schedule, now, overrides)

	t.syncGeofence(p.Status, now)

	t.mu.Lock()
	t.last = &p
	t.mu.Unlock()

	t.metrics.TrackerTick()
	t.progress.emit(p)
	return p
}

// Run ticks immediately and then every interval until ctx is done.
func (t *TripTracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("trip tracker: stopped")
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

func (t *TripTracker) syncGeofence(status domain.TripStatus, now time.Time) {
	if t.engine == nil {
		return
	}

	var target *domain.Activity
	if status == domain.TripInProgress {
		target = trackedActivity(t.schedule, now)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if target == nil {
		if t.tracked != "" || len(t.engine.Geofences()) > 0 {
			t.engine.ClearAll()
		}
		t.tracked = ""
		return
	}

	if t.tracked != "" && t.tracked != target.ID {
		t.engine.RemoveGeofence(t.tracked)
	}
	if t.tracked != target.ID || !t.engine.Has(target.ID) {
		t.engine.CreateGeofence(*target, target.Location.Lat, target.Location.Lon, domain.DefaultGeofenceRadius)
		log.Printf("trip tracker: tracking activity=%s", target.ID)
	}
	t.tracked = target.ID
}

// trackedActivity picks the running activity when it has a location,
// otherwise the next upcoming activity that has one.
func trackedActivity(s *domain.Schedule, now time.Time) *domain.Activity {
	if _, a, ok := CurrentActivity(s, now); ok && a.Location != nil {
		return &a
	}
	if s == nil {
		return nil
	}
	for _, d := range s.Days {
		for _, a := range d.Activities {
			if a.Location != nil && ActivityStatus(a, now) == domain.ActivityUpcoming {
				return &a
			}
		}
	}
	return nil
}
