package main

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/alikamatu/medi-rides-sub003/internal/common/logger"
	"github.com/alikamatu/medi-rides-sub003/internal/events"
)

// auditEntry is the document stored per consumed event.
type auditEntry struct {
	Name       string            `bson:"name"`
	ActorID    string            `bson:"actor_id,omitempty"`
	EntityID   string            `bson:"entity_id,omitempty"`
	Status     string            `bson:"status,omitempty"`
	Metadata   map[string]string `bson:"metadata,omitempty"`
	RoutingKey string            `bson:"routing_key"`
	OccurredAt time.Time         `bson:"occurred_at"`
	RecordedAt time.Time         `bson:"recorded_at"`
}

// Consumer drains the audit queue into MongoDB.
type Consumer struct {
	channel    *amqp.Channel
	collection *mongo.Collection
}

func NewConsumer(conn *amqp.Connection, collection *mongo.Collection) (*Consumer, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	if err := events.DeclareAuditQueue(channel); err != nil {
		channel.Close()
		return nil, err
	}

	return &Consumer{channel: channel, collection: collection}, nil
}

// Listen consumes until ctx is cancelled. Malformed messages are
// acked and dropped; the queue must not wedge on one bad payload.
func (c *Consumer) Listen(ctx context.Context) error {
	messages, err := c.channel.Consume(
		events.AuditQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return c.channel.Close()
		case d, ok := <-messages:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var event events.Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logger.Error("Dropping malformed audit message", "error", err)
		d.Ack(false)
		return
	}

	entry := auditEntry{
		Name:       event.Name,
		ActorID:    event.ActorID,
		EntityID:   event.EntityID,
		Status:     event.Status,
		Metadata:   event.Metadata,
		RoutingKey: d.RoutingKey,
		OccurredAt: event.Timestamp,
		RecordedAt: time.Now(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := c.collection.InsertOne(insertCtx, entry); err != nil {
		logger.Error("Failed to store audit entry", "event", event.Name, "error", err)
		d.Nack(false, true) // requeue, Mongo may be down
		return
	}

	d.Ack(false)

	logger.Debug("Audit entry stored",
		"event", event.Name,
		"entity_id", event.EntityID,
		"routing_key", d.RoutingKey,
	)
}
