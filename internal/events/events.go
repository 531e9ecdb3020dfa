// Package events publishes domain events to RabbitMQ. Consumers (the
// audit log service, dashboards) bind their own queues to the topic
// exchange.
package events

import (
	"context"
	"encoding/json"
	"math"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
)

// ExchangeName is the topic exchange every event goes through.
const ExchangeName = "medirides.events"

// AuditQueue is the durable queue the audit log service consumes.
const AuditQueue = "medirides.audit"

// Event is the wire shape of every published event.
type Event struct {
	Name      string            `json:"name"`
	ActorID   string            `json:"actor_id,omitempty"`
	EntityID  string            `json:"entity_id,omitempty"`
	Status    string            `json:"status,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Connect dials RabbitMQ with backoff. Services keep running without
// events when the broker never comes up.
func Connect(amqpURL string) (*amqp.Connection, error) {
	var counts int64
	var lastErr error

	for {
		c, err := amqp.Dial(amqpURL)
		if err != nil {
			logger.Info("RabbitMQ not yet ready...", "attempt", counts+1)
			lastErr = err
			counts++
		} else {
			logger.Info("Connected to RabbitMQ")
			return c, nil
		}

		if counts > 5 {
			return nil, lastErr
		}

		backOff := time.Duration(math.Pow(float64(counts), 2)) * time.Second
		logger.Debug("Backing off", "duration", backOff.String())
		time.Sleep(backOff)
	}
}

// Publisher owns a channel on the connection and the exchange
// declaration.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = channel.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		return nil, err
	}

	return &Publisher{conn: conn, channel: channel}, nil
}

func (p *Publisher) Close() error {
	return p.channel.Close()
}

// Publish sends one event with the given routing key
// (e.g. "ride.status_changed").
func (p *Publisher) Publish(ctx context.Context, routingKey string, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.channel.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   event.Timestamp,
		},
	)
}

// DeclareAuditQueue declares the audit queue and binds it to every
// event. Called by the consumer on startup.
func DeclareAuditQueue(channel *amqp.Channel) error {
	_, err := channel.QueueDeclare(
		AuditQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	return channel.QueueBind(AuditQueue, "#", ExchangeName, false, nil)
}
