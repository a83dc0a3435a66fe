package worker

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/tnqbao/gau-filestore-service/infra/produce"
	"github.com/tnqbao/gau-filestore-service/service"
)

// Deliveries is the part of *amqp.Channel the consumer needs.
type Deliveries interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// AuditConsumer writes every file event to the log.
type AuditConsumer struct {
	channel Deliveries
	logger  service.Logger
}

func NewAuditConsumer(channel Deliveries, logger service.Logger) *AuditConsumer {
	return &AuditConsumer{
		channel: channel,
		logger:  logger,
	}
}

func (c *AuditConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(
		produce.FileAuditQueue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register audit consumer: %w", err)
	}

	c.logger.InfoWithContextf(ctx, "[Audit Consumer] Started listening on queue: %s", produce.FileAuditQueue)

	go c.run(ctx, msgs)
	return nil
}

func (c *AuditConsumer) run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoWithContextf(ctx, "[Audit Consumer] Shutting down...")
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.WarningWithContextf(ctx, "[Audit Consumer] Channel closed")
				return
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *AuditConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var payload produce.FileEventMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.logger.ErrorWithContextf(ctx, err, "[Audit Consumer] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	if payload.Name == "" || payload.Event == "" {
		c.logger.WarningWithContextf(ctx, "[Audit Consumer] Dropping event without name or type: %s", string(msg.Body))
		_ = msg.Nack(false, false)
		return
	}

	c.logger.InfoWithContextf(ctx, "[Audit Consumer] %s name=%s size=%d event_id=%s at=%d",
		payload.Event, payload.Name, payload.Size, payload.EventID, payload.Timestamp)
	_ = msg.Ack(false)
}
