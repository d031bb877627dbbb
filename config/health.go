package config

import (
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type HealthChecker struct {
	db       *sql.DB
	amqpConn *amqp.Connection
	mqtt     mqtt.Client
	redis    *redis.Client
	nats     *nats.Conn
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, redisClient *redis.Client, nc *nats.Conn) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, mqtt: mqttClient, redis: redisClient, nats: nc}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

func (h *HealthChecker) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	deps := gin.H{}

	report := func(name string, err string) {
		if err != "" {
			deps[name] = gin.H{"status": "down", "error": err}
			status = http.StatusServiceUnavailable
			return
		}
		deps[name] = gin.H{"status": "up"}
	}

	if err := h.db.PingContext(ctx); err != nil {
		report("postgres", err.Error())
	} else {
		report("postgres", "")
	}

	if h.amqpConn.IsClosed() {
		report("rabbitmq", "connection closed")
	} else {
		report("rabbitmq", "")
	}

	if !h.mqtt.IsConnected() {
		report("mqtt", "not connected")
	} else {
		report("mqtt", "")
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		report("redis", err.Error())
	} else {
		report("redis", "")
	}

	if !h.nats.IsConnected() {
		report("nats", h.nats.Status().String())
	} else {
		report("nats", "")
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}
