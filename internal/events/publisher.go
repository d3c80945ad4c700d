package events

import (
	"context"
	"encoding/json"

	"github.com/ecommerce-api/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// CreatedChannel returns the pub/sub channel announcing inserts into collection.
func CreatedChannel(collection string) string {
	return collection + ".created"
}

// Publisher announces newly stored documents.
type Publisher interface {
	PublishCreated(ctx context.Context, event model.CreatedEvent) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// PublishCreated sends event as JSON on the collection's created channel.
// Delivery is fire-and-forget; nobody subscribed is not an error.
func (p *RedisPublisher) PublishCreated(ctx context.Context, event model.CreatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "events: encode created event")
	}

	channel := CreatedChannel(event.Collection)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return errors.Wrapf(err, "events: publish to %s", channel)
	}
	return nil
}
