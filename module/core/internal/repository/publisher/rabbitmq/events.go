package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/domain"
	"github.com/longpapa82-cyber/hoonjae-danang-travel-sub000/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

const (
	ExchangeName = "trip.events"
	QueueName    = "trip_alerts"

	// Message types set on amqp.Publishing.Type.
	TypeGeofenceEvent = "geofence_event"
	TypeNotification  = "notification"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type EventPublisher struct {
	ch Channel
}

func NewEventPublisher(conn *amqp.Connection) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return NewEventPublisherWithChannel(ch)
}

// NewEventPublisherWithChannel declares the fanout exchange and the alert
// queue on ch.
func NewEventPublisherWithChannel(ch Channel) (*EventPublisher, error) {
	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(QueueName, "", ExchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &EventPublisher{ch: ch}, nil
}

type eventMessage struct {
	ID            string                   `json:"id"`
	Event         domain.GeofenceEventType `json:"event"`
	GeofenceID    string                   `json:"geofence_id"`
	ActivityID    string                   `json:"activity_id"`
	ActivityTitle string                   `json:"activity_title"`
	Distance      float64                  `json:"distance_meters"`
	Location      eventLocation            `json:"location"`
	Timestamp     int64                    `json:"timestamp"`
}

type eventLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

func (p *EventPublisher) PublishGeofenceEvent(ctx context.Context, ev *domain.GeofenceEvent) error {
	msg := eventMessage{
		ID:            ev.ID,
		Event:         ev.Type,
		GeofenceID:    ev.GeofenceID,
		ActivityID:    ev.ActivityID,
		ActivityTitle: ev.ActivityTitle,
		Distance:      ev.DistanceMeters,
		Location: eventLocation{
			Latitude:  ev.Position.Lat,
			Longitude: ev.Position.Lon,
			Accuracy:  ev.Position.Accuracy,
		},
		Timestamp: ev.Timestamp.Unix(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal geofence event: %w", err)
	}
	return p.publish(ctx, TypeGeofenceEvent, ev.ID, body)
}

func (p *EventPublisher) PublishNotification(ctx context.Context, n *domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return p.publish(ctx, TypeNotification, n.ID, body)
}

func (p *EventPublisher) publish(ctx context.Context, typ, id string, body []byte) error {
	err := p.ch.PublishWithContext(ctx, ExchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Type:        typ,
		MessageId:   id,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", typ, err)
	}
	return nil
}
