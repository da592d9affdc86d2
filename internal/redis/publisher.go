package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher pushes broadcast envelopes onto the pub/sub backbone. Each server
// instance's bridge picks them up and fans them into its local hub, which is
// what lets a broadcast reach connections on other instances.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends an already-marshaled envelope to a channel. The channel name
// doubles as the routing key on the receiving side.
func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
