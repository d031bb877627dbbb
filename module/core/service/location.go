package service

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/geo"
)

// Sensor is the platform location source.
type Sensor interface {
	Permission(ctx context.Context) (domain.PermissionState, error)
	CurrentPosition(ctx context.Context, opts domain.SensorOptions) (domain.Position, error)
	Watch(opts domain.SensorOptions, onPosition func(domain.Position), onError func(error)) (domain.WatchID, error)
	ClearWatch(id domain.WatchID)
}

// LocationStream turns a Sensor into a filtered stream of positions. Only
// one sensor watch is active at a time; every (re)start bumps a generation
// counter and callbacks carrying an older generation are dropped.
type LocationStream struct {
	sensor  Sensor
	metrics Metrics

	// watchMu serializes start, stop and profile switches.
	watchMu sync.Mutex
	// deliverMu is held for reading while a sensor callback is delivered
	// and for writing while a watch is torn down, so stop returns only
	// after in-flight callbacks of the old generation have finished.
	// Listeners must not call StopWatching or SetProfile.
	deliverMu sync.RWMutex

	mu         sync.Mutex
	profile    domain.TrackingProfile
	watching   bool
	watchID    domain.WatchID
	generation uint64
	last       *domain.Position

	positions *listenerSet[domain.Position]
	errs      *listenerSet[error]
}

func NewLocationStream(sensor Sensor, profile domain.TrackingProfile, m Metrics) *LocationStream {
	m = orNoop(m)
	return &LocationStream{
		sensor:    sensor,
		metrics:   m,
		profile:   profile,
		positions: newListenerSet[domain.Position]("location stream", m),
		errs:      newListenerSet[error]("location stream errors", m),
	}
}

// CheckPermission reports the current permission state without prompting.
func (s *LocationStream) CheckPermission(ctx context.Context) domain.PermissionState {
	state, err := s.sensor.Permission(ctx)
	if err != nil {
		log.Printf("location stream: permission query failed: %v", err)
		return domain.PermissionPrompt
	}
	return state
}

// RequestPermission asks for a single fix, which is what triggers the
// platform prompt. It reports whether a position was obtained.
func (s *LocationStream) RequestPermission(ctx context.Context) bool {
	if _, err := s.CurrentPosition(ctx); err != nil {
		log.Printf("location stream: permission request failed: %v", err)
		return false
	}
	return true
}

// CurrentPosition fetches one fix under the active profile and records it as
// the last known position.
func (s *LocationStream) CurrentPosition(ctx context.Context) (domain.Position, error) {
	s.mu.Lock()
	opts := s.profile.SensorOptions()
	s.mu.Unlock()

	p, err := s.sensor.CurrentPosition(ctx, opts)
	if err != nil {
		return domain.Position{}, err
	}

	s.mu.Lock()
	s.last = &p
	s.mu.Unlock()
	return p, nil
}

func (s *LocationStream) StartWatching() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	s.start()
}

func (s *LocationStream) StopWatching() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	s.stop()
}

// SetProfile switches the tracking profile. While watching, the old watch
// is cleared before the new one is started.
func (s *LocationStream) SetProfile(profile domain.TrackingProfile) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	s.mu.Lock()
	s.profile = profile
	watching := s.watching
	s.mu.Unlock()

	log.Printf("location stream: profile=%s watching=%t", profile.Name, watching)
	if watching {
		s.stop()
		s.start()
	}
}

func (s *LocationStream) Profile() domain.TrackingProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *LocationStream) Watching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watching
}

func (s *LocationStream) LastPosition() (domain.Position, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.Position{}, false
	}
	return *s.last, true
}

// Subscribe registers cb for accepted positions. If a position is already
// known, cb receives it immediately.
func (s *LocationStream) Subscribe(cb func(domain.Position)) func() {
	s.mu.Lock()
	unsubscribe := s.positions.add(cb)
	var last *domain.Position
	if s.last != nil {
		p := *s.last
		last = &p
	}
	s.mu.Unlock()

	if last != nil {
		s.positions.call(cb, *last)
	}
	return unsubscribe
}

func (s *LocationStream) SubscribeError(cb func(error)) func() {
	return s.errs.add(cb)
}

// start and stop expect watchMu to be held.
func (s *LocationStream) start() {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		log.Printf("location stream: already watching")
		return
	}
	s.generation++
	gen := s.generation
	s.watching = true
	opts := s.profile.SensorOptions()
	s.mu.Unlock()

	id, err := s.sensor.Watch(opts,
		func(p domain.Position) { s.handlePosition(gen, p) },
		func(err error) { s.handleError(gen, err) },
	)
	if err != nil {
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
		s.metrics.SetWatching(false)
		s.handleError(gen, err)
		return
	}

	s.mu.Lock()
	s.watchID = id
	s.mu.Unlock()
	s.metrics.WatchStarted()
	s.metrics.SetWatching(true)
}

func (s *LocationStream) stop() {
	s.deliverMu.Lock()
	s.mu.Lock()
	if !s.watching {
		s.mu.Unlock()
		s.deliverMu.Unlock()
		return
	}
	s.watching = false
	s.generation++
	id := s.watchID
	s.mu.Unlock()
	s.deliverMu.Unlock()

	s.sensor.ClearWatch(id)
	s.metrics.SetWatching(false)
}

func (s *LocationStream) handlePosition(gen uint64, p domain.Position) {
	s.deliverMu.RLock()
	defer s.deliverMu.RUnlock()

	s.mu.Lock()
	if gen != s.generation || !s.watching {
		s.mu.Unlock()
		s.metrics.PositionStale()
		return
	}
	if s.last != nil && geo.DistanceMeters(s.last.Coord, p.Coord) < s.profile.MinMovementMeters {
		s.mu.Unlock()
		s.metrics.PositionFiltered()
		return
	}
	s.last = &p
	s.mu.Unlock()

	s.metrics.PositionAccepted()
	s.positions.emit(p)
}

func (s *LocationStream) handleError(gen uint64, err error) {
	s.deliverMu.RLock()
	defer s.deliverMu.RUnlock()

	s.mu.Lock()
	stale := gen != s.generation
	s.mu.Unlock()
	if stale {
		return
	}

	code := "unknown"
	var sensorErr *domain.SensorError
	if errors.As(err, &sensorErr) {
		code = sensorErr.Code.String()
	}
	log.Printf("location stream: sensor error code=%s: %v", code, err)
	s.metrics.SensorError(code)
	s.errs.emit(err)
}
