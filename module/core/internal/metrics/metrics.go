package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/service"
)

var _ service.Metrics = (*Collector)(nil)

type Collector struct {
	reg *prometheus.Registry

	PositionsAccepted prometheus.Counter
	PositionsFiltered prometheus.Counter
	PositionsStale    prometheus.Counter
	SensorErrors      *prometheus.CounterVec // code label: permission_denied|position_unavailable|timeout|unknown
	WatchStarts       prometheus.Counter
	Watching          prometheus.Gauge

	GeofenceTransitions *prometheus.CounterVec // event label
	Geofences           prometheus.Gauge

	ListenerPanics *prometheus.CounterVec // source label
	TrackerTicks   prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PositionsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_positions_accepted_total",
			Help: "Positions forwarded to subscribers.",
		}),
		PositionsFiltered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_positions_filtered_total",
			Help: "Positions dropped by the movement filter.",
		}),
		PositionsStale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_positions_stale_total",
			Help: "Positions dropped because they came from a superseded watch.",
		}),
		SensorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_sensor_errors_total",
			Help: "Location sensor errors by code.",
		}, []string{"code"}),
		WatchStarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_watch_starts_total",
			Help: "Sensor watches started.",
		}),
		Watching: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trip_watching",
			Help: "1 while a sensor watch is active, 0 otherwise.",
		}),
		GeofenceTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_geofence_transitions_total",
			Help: "Geofence transitions by event type.",
		}, []string{"event"}),
		Geofences: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trip_geofences",
			Help: "Registered geofences.",
		}),
		ListenerPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trip_listener_panics_total",
			Help: "Recovered callback panics by source.",
		}, []string{"source"}),
		TrackerTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trip_tracker_ticks_total",
			Help: "Trip tracker evaluations.",
		}),
	}

	reg.MustRegister(
		c.PositionsAccepted, c.PositionsFiltered, c.PositionsStale,
		c.SensorErrors, c.WatchStarts, c.Watching,
		c.GeofenceTransitions, c.Geofences,
		c.ListenerPanics, c.TrackerTicks,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) PositionAccepted() { c.PositionsAccepted.Inc() }
func (c *Collector) PositionFiltered() { c.PositionsFiltered.Inc() }
func (c *Collector) PositionStale() { c.PositionsStale.Inc() }
func (c *Collector) WatchStarted() { c.WatchStarts.Inc() }
func (c *Collector) TrackerTick() { c.TrackerTicks.Inc() }

func (c *Collector) SensorError(code string) { c.SensorErrors.WithLabelValues(code).Inc() }

func (c *Collector) SetWatching(watching bool) {
	if watching {
		c.Watching.Set(1)
		return
	}
	c.Watching.Set(0)
}

func (c *Collector) GeofenceTransition(kind string) { c.GeofenceTransitions.WithLabelValues(kind).Inc() }

func (c *Collector) SetGeofences(n int) { c.Geofences.Set(float64(n)) }

func (c *Collector) ListenerPanic(source string) { c.ListenerPanics.WithLabelValues(source).Inc() }
