package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	handler "github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/handler/http"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/handler/stream"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/handler/subscriber"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/metrics"
	redisrepo "github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/cache/redis"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/database/postgres"
	natspub "github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/publisher/nats"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/publisher/rabbitmq"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/schedule"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/service"
)

type Deps struct {
	DB              *sql.DB
	AMQP            *amqp.Connection
	MQTT            mqtt.Client
	Redis           *redis.Client
	NATS            *nats.Conn
	Schedule        *domain.Schedule
	DeviceID        string
	TripID          string
	Profile         domain.TrackingProfile
	LogNATSSubjects bool
}

type Module struct {
	Stream   *service.LocationStream
	Engine   *service.GeofenceEngine
	Tracker  *service.TripTracker
	CheckIns *service.CheckInService
	History  *service.HistoryService
	Hub      *stream.Hub
	Metrics  *metrics.Collector

	positions *postgres.PositionRepo
	sensor    *subscriber.DeviceSensor
	trip      *handler.TripHandler
	location  *handler.LocationHandler
	geofence  *handler.GeofenceHandler
	checkin   *handler.CheckInHandler
}

type streamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func LoadSchedule(path string) (*domain.Schedule, error) {
	return schedule.LoadFile(path)
}

func Build(deps Deps) (*Module, error) {
	if deps.Schedule == nil {
		return nil, errors.New("schedule is required")
	}

	collector := metrics.NewCollector()

	positionRepo := postgres.NewPositionRepo(deps.DB)
	checkInRepo := redisrepo.NewCheckInRepo(deps.Redis, deps.TripID)
	positionPub := natspub.NewPositionPublisher(deps.NATS, deps.TripID, deps.LogNATSSubjects)
	eventPub, err := rabbitmq.NewEventPublisher(deps.AMQP)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	sensor := subscriber.NewDeviceSensor(deps.MQTT, deps.DeviceID)
	locations := service.NewLocationStream(sensor, deps.Profile, collector)
	checkIns := service.NewCheckInService(checkInRepo, deps.Schedule)
	arrivals := service.NewArrivalService(checkIns, eventPub)
	engine := service.NewGeofenceEngine(arrivals, collector)
	history := service.NewHistoryService(positionRepo, positionPub, deps.DeviceID)
	tracker := service.NewTripTracker(deps.Schedule, engine, checkIns, collector)
	hub := stream.NewHub()

	locations.Subscribe(engine.HandlePosition)
	locations.Subscribe(history.Record)
	locations.Subscribe(func(p domain.Position) { hub.BroadcastJSON(stream.ChannelPositions, p) })
	locations.SubscribeError(func(err error) { hub.BroadcastJSON(stream.ChannelErrors, toStreamError(err)) })
	engine.OnEvent(arrivals.PublishEvent)
	engine.OnEvent(func(ev domain.GeofenceEvent) { hub.BroadcastJSON(stream.ChannelGeofences, ev) })
	tracker.OnProgress(func(p domain.Progress) { hub.BroadcastJSON(stream.ChannelProgress, p) })

	return &Module{
		Stream:    locations,
		Engine:    engine,
		Tracker:   tracker,
		CheckIns:  checkIns,
		History:   history,
		Hub:       hub,
		Metrics:   collector,
		positions: positionRepo,
		sensor:    sensor,
		trip:      handler.NewTripHandler(deps.Schedule, checkIns, locations),
		location:  handler.NewLocationHandler(locations, history),
		geofence:  handler.NewGeofenceHandler(engine, locations),
		checkin:   handler.NewCheckInHandler(checkIns),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.trip.Register(r)
	m.location.Register(r)
	m.geofence.Register(r)
	m.checkin.Register(r)
	stream.RegisterRoutes(r, m.Hub)
	r.GET("/metrics", gin.WrapH(m.Metrics.Handler()))
}

func (m *Module) EnsureSchema(ctx context.Context) error {
	return m.positions.EnsureSchema(ctx)
}

// StartSubscribers is safe to call again after an MQTT reconnect.
func (m *Module) StartSubscribers() error {
	return m.sensor.Start()
}

// Run starts watching the device and drives the tracker until ctx is done.
func (m *Module) Run(ctx context.Context, tick time.Duration) {
	m.Stream.StartWatching()
	defer m.Stream.StopWatching()
	m.Tracker.Run(ctx, tick)
}

func toStreamError(err error) streamError {
	out := streamError{Code: "unknown", Message: err.Error()}
	var se *domain.SensorError
	if errors.As(err, &se) {
		out.Code = se.Code.String()
	}
	return out
}
