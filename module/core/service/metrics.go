package service

// Metrics receives counters from the tracking services. A nil Metrics passed
// to a constructor is replaced by a no-op implementation.
type Metrics interface {
	PositionAccepted()
	PositionFiltered()
	PositionStale()
	SensorError(code string)
	WatchStarted()
	SetWatching(watching bool)
	GeofenceTransition(kind string)
	SetGeofences(n int)
	ListenerPanic(source string)
	TrackerTick()
}

type noopMetrics struct{}

func (noopMetrics) PositionAccepted() {}
func (noopMetrics) PositionFiltered() {}
func (noopMetrics) PositionStale() {}
func (noopMetrics) SensorError(string) {}
func (noopMetrics) WatchStarted() {}
func (noopMetrics) SetWatching(bool) {}
func (noopMetrics) GeofenceTransition(string) {}
func (noopMetrics) SetGeofences(int) {}
func (noopMetrics) ListenerPanic(string) {}
func (noopMetrics) TrackerTick() {}

func orNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
