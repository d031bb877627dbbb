package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/geo"
)

const (
	// ApproachDistanceMeters is the outer edge of the approach band.
	ApproachDistanceMeters = 500.0
	// ApproachResetMeters re-arms the approach alert when an exit happens
	// this far from the center.
	ApproachResetMeters = 600.0
)

// ArrivalHandler performs the side effects of geofence transitions. Calls
// happen after the registry lock is released.
type ArrivalHandler interface {
	AutoCheckIn(ctx context.Context, g domain.Geofence, at time.Time)
	ApproachAlert(ctx context.Context, g domain.Geofence, distanceMeters float64)
}

type fenceState struct {
	active           bool
	inside           bool
	enteredAt        *time.Time
	approachNotified bool
	lastDistance     *float64
}

type fenceEntry struct {
	config domain.GeofenceConfig
	state  fenceState
}

func (f *fenceEntry) snapshot() domain.Geofence {
	g := domain.Geofence{
		GeofenceConfig:   f.config,
		Active:           f.state.active,
		State:            domain.GeofenceOutside,
		ApproachNotified: f.state.approachNotified,
	}
	if f.state.enteredAt != nil {
		t := *f.state.enteredAt
		g.EnteredAt = &t
	}
	if f.state.lastDistance != nil {
		d := *f.state.lastDistance
		g.LastDistance = &d
	}
	switch {
	case f.state.inside:
		g.State = domain.GeofenceInside
	case f.state.approachNotified && g.LastDistance != nil && *g.LastDistance <= ApproachDistanceMeters:
		g.State = domain.GeofenceApproaching
	}
	return g
}

type transition struct {
	event    domain.GeofenceEvent
	geofence domain.Geofence
}

// GeofenceEngine keeps one circular region per tracked activity and turns
// positions into enter, exit and approaching events.
type GeofenceEngine struct {
	arrivals ArrivalHandler
	metrics  Metrics
	now      func() time.Time

	// handleMu keeps concurrent HandlePosition calls from interleaving
	// their dispatch, so listeners see each region's transitions in order.
	handleMu sync.Mutex

	mu     sync.RWMutex
	fences map[string]*fenceEntry
	order  []string

	enter    *listenerSet[domain.GeofenceEvent]
	exit     *listenerSet[domain.GeofenceEvent]
	approach *listenerSet[domain.GeofenceEvent]
	all      *listenerSet[domain.GeofenceEvent]
}

func NewGeofenceEngine(arrivals ArrivalHandler, m Metrics) *GeofenceEngine {
	m = orNoop(m)
	return &GeofenceEngine{
		arrivals: arrivals,
		metrics:  m,
		now:      time.Now,
		fences:   make(map[string]*fenceEntry),
		enter:    newListenerSet[domain.GeofenceEvent]("geofence enter", m),
		exit:     newListenerSet[domain.GeofenceEvent]("geofence exit", m),
		approach: newListenerSet[domain.GeofenceEvent]("geofence approach", m),
		all:      newListenerSet[domain.GeofenceEvent]("geofence events", m),
	}
}

// CreateGeofence registers a region for the activity, keyed by the activity
// id. A non-positive radius uses DefaultGeofenceRadius. Registering an id
// that already exists replaces its configuration and reactivates it while
// keeping its inside and approach bookkeeping.
func (e *GeofenceEngine) CreateGeofence(activity domain.Activity, lat, lon, radiusMeters float64) domain.Geofence {
	if radiusMeters <= 0 {
		radiusMeters = domain.DefaultGeofenceRadius
	}
	cfg := domain.GeofenceConfig{
		ID:           activity.ID,
		Activity:     activity,
		Center:       domain.Coord{Lat: lat, Lon: lon},
		RadiusMeters: radiusMeters,
	}

	e.mu.Lock()
	f, ok := e.fences[cfg.ID]
	if ok {
		f.config = cfg
		f.state.active = true
	} else {
		f = &fenceEntry{config: cfg, state: fenceState{active: true}}
		e.fences[cfg.ID] = f
		e.order = append(e.order, cfg.ID)
	}
	g := f.snapshot()
	n := len(e.fences)
	e.mu.Unlock()

	log.Printf("geofence: registered id=%s radius=%.0fm", cfg.ID, radiusMeters)
	e.metrics.SetGeofences(n)
	return g
}

// RemoveGeofence drops the region and its state. Unknown ids are ignored.
func (e *GeofenceEngine) RemoveGeofence(id string) {
	e.mu.Lock()
	if _, ok := e.fences[id]; !ok {
		e.mu.Unlock()
		return
	}
	delete(e.fences, id)
	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	n := len(e.fences)
	e.mu.Unlock()

	log.Printf("geofence: removed id=%s", id)
	e.metrics.SetGeofences(n)
}

// SetActive toggles evaluation of a region. Inactive regions keep their state
// but are skipped by HandlePosition and FindNearestActive.
func (e *GeofenceEngine) SetActive(id string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, ok := e.fences[id]
	if !ok {
		return domain.ErrGeofenceNotFound
	}
	f.state.active = active
	return nil
}

func (e *GeofenceEngine) ClearAll() {
	e.mu.Lock()
	n := len(e.fences)
	e.fences = make(map[string]*fenceEntry)
	e.order = nil
	e.mu.Unlock()

	if n > 0 {
		log.Printf("geofence: cleared %d geofences", n)
	}
	e.metrics.SetGeofences(0)
}

func (e *GeofenceEngine) IsInside(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.fences[id]
	return ok && f.state.inside
}

func (e *GeofenceEngine) Has(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.fences[id]
	return ok
}

func (e *GeofenceEngine) Get(id string) (domain.Geofence, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	f, ok := e.fences[id]
	if !ok {
		return domain.Geofence{}, domain.ErrGeofenceNotFound
	}
	return f.snapshot(), nil
}

// Geofences lists every region in registration order.
func (e *GeofenceEngine) Geofences() []domain.Geofence {
	return e.list(func(*fenceEntry) bool { return true })
}

func (e *GeofenceEngine) Active() []domain.Geofence {
	return e.list(func(f *fenceEntry) bool { return f.state.active })
}

func (e *GeofenceEngine) Inside() []domain.Geofence {
	return e.list(func(f *fenceEntry) bool { return f.state.inside })
}

func (e *GeofenceEngine) list(keep func(*fenceEntry) bool) []domain.Geofence {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Geofence, 0, len(e.order))
	for _, id := range e.order {
		f := e.fences[id]
		if keep(f) {
			out = append(out, f.snapshot())
		}
	}
	return out
}

// FindNearestActive returns the closest active region to c. On equal
// distances the earlier registration wins.
func (e *GeofenceEngine) FindNearestActive(c domain.Coord) (domain.Geofence, float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var nearest *fenceEntry
	best := 0.0
	for _, id := range e.order {
		f := e.fences[id]
		if !f.state.active {
			continue
		}
		d := geo.DistanceMeters(c, f.config.Center)
		if nearest == nil || d < best {
			nearest = f
			best = d
		}
	}
	if nearest == nil {
		return domain.Geofence{}, 0, false
	}
	return nearest.snapshot(), best, true
}

func (e *GeofenceEngine) OnEnter(cb func(domain.GeofenceEvent)) func() { return e.enter.add(cb) }

func (e *GeofenceEngine) OnExit(cb func(domain.GeofenceEvent)) func() { return e.exit.add(cb) }

func (e *GeofenceEngine) OnApproach(cb func(domain.GeofenceEvent)) func() { return e.approach.add(cb) }

// OnEvent receives every transition regardless of type.
func (e *GeofenceEngine) OnEvent(cb func(domain.GeofenceEvent)) func() { return e.all.add(cb) }

// HandlePosition evaluates every active region against p. All transitions
// for one position are applied under the lock; listeners and side effects
// run afterwards, each isolated from the others. Calls are serialized, so
// listeners must not feed positions back into the engine.
func (e *GeofenceEngine) HandlePosition(p domain.Position) {
	e.handleMu.Lock()
	defer e.handleMu.Unlock()

	now := e.now()

	e.mu.Lock()
	var out []transition
	for _, id := range e.order {
		f := e.fences[id]
		if !f.state.active {
			continue
		}
		out = append(out, e.evaluate(f, p, now)...)
	}
	e.mu.Unlock()

	for _, tr := range out {
		e.dispatch(tr)
	}
}

// evaluate expects e.mu to be held.
func (e *GeofenceEngine) evaluate(f *fenceEntry, p domain.Position, now time.Time) []transition {
	d := geo.DistanceMeters(p.Coord, f.config.Center)
	radius := f.config.RadiusMeters
	wasInside := f.state.inside
	isInside := d <= radius
	f.state.lastDistance = &d

	var out []transition
	switch {
	case isInside && !wasInside:
		entered := now
		f.state.inside = true
		f.state.enteredAt = &entered
		f.state.approachNotified = false
		out = append(out, e.newTransition(f, domain.GeofenceEntry, d, p, now))
	case !isInside && wasInside:
		f.state.inside = false
		if d > ApproachResetMeters {
			f.state.approachNotified = false
		}
		out = append(out, e.newTransition(f, domain.GeofenceExit, d, p, now))
	}

	// A retreat past the reset distance without ever entering leaves the flag
	// set, so that region stays silent for the rest of the session.
	if !isInside && d > radius && d <= ApproachDistanceMeters && !f.state.approachNotified {
		f.state.approachNotified = true
		out = append(out, e.newTransition(f, domain.GeofenceApproach, d, p, now))
	}
	return out
}

func (e *GeofenceEngine) newTransition(f *fenceEntry, typ domain.GeofenceEventType, d float64, p domain.Position, now time.Time) transition {
	return transition{
		event: domain.GeofenceEvent{
			ID:             uuid.NewString(),
			Type:           typ,
			GeofenceID:     f.config.ID,
			ActivityID:     f.config.Activity.ID,
			ActivityTitle:  f.config.Activity.Title,
			DistanceMeters: d,
			Position:       p,
			Timestamp:      now,
		},
		geofence: f.snapshot(),
	}
}

func (e *GeofenceEngine) dispatch(tr transition) {
	ev := tr.event
	log.Printf("geofence: %s id=%s distance=%.1fm", ev.Type, ev.GeofenceID, ev.DistanceMeters)
	e.metrics.GeofenceTransition(string(ev.Type))

	switch ev.Type {
	case domain.GeofenceEntry:
		e.enter.emit(ev)
	case domain.GeofenceExit:
		e.exit.emit(ev)
	case domain.GeofenceApproach:
		e.approach.emit(ev)
	}
	e.all.emit(ev)

	if e.arrivals == nil {
		return
	}
	switch ev.Type {
	case domain.GeofenceEntry:
		e.sideEffect(ev, func() { e.arrivals.AutoCheckIn(context.Background(), tr.geofence, ev.Timestamp) })
	case domain.GeofenceApproach:
		e.sideEffect(ev, func() { e.arrivals.ApproachAlert(context.Background(), tr.geofence, ev.DistanceMeters) })
	}
}

func (e *GeofenceEngine) sideEffect(ev domain.GeofenceEvent, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("geofence: %s side effect panic id=%s: %v", ev.Type, ev.GeofenceID, r)
			e.metrics.ListenerPanic("geofence arrivals")
		}
	}()
	fn()
}
