package events

import (
	"context"

	"chatsync/pkg/logger"
)

// Publisher is the pub/sub half the broadcaster needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// RedisBroadcaster publishes envelopes onto the redis backbone. Every server
// instance bridges the backbone into its local hub, so broadcasts reach
// clients on any instance. Publish failures are logged, never propagated:
// broadcast delivery is best-effort by contract.
type RedisBroadcaster struct {
	publisher Publisher
	log       *logger.Logger
}

func NewRedisBroadcaster(publisher Publisher, log *logger.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{publisher: publisher, log: log}
}

func (b *RedisBroadcaster) ToConversation(ctx context.Context, conversationID, eventType string, payload interface{}) {
	b.publish(ctx, ConversationChannel(conversationID), eventType, payload)
}

func (b *RedisBroadcaster) ToUser(ctx context.Context, userID, eventType string, payload interface{}) {
	b.publish(ctx, UserChannel(userID), eventType, payload)
}

func (b *RedisBroadcaster) ToAll(ctx context.Context, eventType string, payload interface{}) {
	b.publish(ctx, ChannelSystemPresence, eventType, payload)
}

func (b *RedisBroadcaster) publish(ctx context.Context, channel, eventType string, payload interface{}) {
	data, err := NewEnvelope(eventType, payload)
	if err != nil {
		b.logErrorf("broadcast: marshaling %s: %v", eventType, err)
		return
	}
	if err := b.publisher.Publish(ctx, channel, data); err != nil {
		b.logErrorf("broadcast: publishing %s to %s: %v", eventType, channel, err)
	}
}

func (b *RedisBroadcaster) logErrorf(template string, args ...interface{}) {
	if b.log != nil {
		b.log.Errorf(template, args...)
	}
}
