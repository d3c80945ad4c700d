package events

import (
	"context"
	"encoding/json"

	"github.com/ecommerce-api/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Consumer writes an audit log line for every created event it receives.
type Consumer struct {
	client *redis.Client
	log    *zap.Logger
}

func NewConsumer(client *redis.Client, log *zap.Logger) *Consumer {
	return &Consumer{client: client, log: log}
}

// Subscribe blocks until ctx is cancelled or the subscription is closed.
func (c *Consumer) Subscribe(ctx context.Context, channels ...string) {
	sub := c.client.Subscribe(ctx, channels...)
	defer sub.Close()

	c.log.Info("subscribed to channels", zap.Strings("channels", channels))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.handle(msg.Channel, msg.Payload)
		}
	}
}

func (c *Consumer) handle(channel, payload string) {
	var event model.CreatedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		c.log.Warn("failed to unmarshal event", zap.String("channel", channel), zap.Error(err))
		return
	}

	c.log.Info("document created",
		zap.String("channel", channel),
		zap.String("collection", event.Collection),
		zap.String("document_id", event.ID),
	)
}
