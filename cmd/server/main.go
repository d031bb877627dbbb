package main

import (
	"context"
	"log"
	"os/signal"
	"sync/atomic"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/config"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schedule, err := core.LoadSchedule(cfg.SchedulePath)
	if err != nil {
		log.Fatalf("schedule: %v", err)
	}

	profile, err := domain.ProfileByName(cfg.TrackingProfile)
	if err != nil {
		log.Printf("unknown TRACKING_PROFILE %q, using %s", cfg.TrackingProfile, domain.HighAccuracyProfile.Name)
		profile = domain.HighAccuracyProfile
	}

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	redisClient, err := config.NewRedis(cfg)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer func() { _ = redisClient.Close() }()

	nc, err := config.NewNATS(cfg, "trip-server")
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer func() {
		_ = nc.Drain()
		nc.Close()
	}()

	// Subscriptions are restored on every reconnect once the module exists.
	var module atomic.Pointer[core.Module]
	mqttClient, err := config.NewMQTT(cfg, cfg.MQTTClientID, func(mqtt.Client) {
		if m := module.Load(); m != nil {
			if err := m.StartSubscribers(); err != nil {
				log.Printf("resubscribe: %v", err)
			}
		}
	})
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	coreModule, err := core.Build(core.Deps{
		DB:              db,
		AMQP:            amqpConn,
		MQTT:            mqttClient,
		Redis:           redisClient,
		NATS:            nc,
		Schedule:        schedule,
		DeviceID:        cfg.DeviceID,
		TripID:          cfg.TripID,
		Profile:         profile,
		LogNATSSubjects: cfg.LogNATSSubjects,
	})
	if err != nil {
		log.Fatalf("core module: %v", err)
	}
	module.Store(coreModule)

	if err := coreModule.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	if err := coreModule.StartSubscribers(); err != nil {
		log.Fatalf("start subscribers: %v", err)
	}

	go coreModule.Run(ctx, cfg.TickInterval)

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient, redisClient, nc)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	go func() {
		log.Printf("listening on :%s trip=%q device=%s", cfg.HTTPPort, schedule.Title, cfg.DeviceID)
		if err := r.Run(":" + cfg.HTTPPort); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
}
