package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"chatsync/internal/events"
)

// Subscriber is the pub/sub half the bridge consumes.
type Subscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

// RedisBridge pipes envelopes published on the redis backbone into the local
// hub, so broadcasts reach clients regardless of which instance committed the
// mutation.
type RedisBridge struct {
	subscriber Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber Subscriber, hub *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: hub}
}

func (b *RedisBridge) Run(ctx context.Context) error {
	return b.subscriber.Subscribe(ctx, []string{"channel:*"}, b.route)
}

func (b *RedisBridge) route(channel string, payload []byte) {
	if channel == events.ChannelSystemPresence {
		b.hub.BroadcastAll(payload)
		return
	}

	if strings.HasPrefix(channel, events.ChannelPrefixConversation) {
		// Typing indicators never echo back to their originator.
		var env events.Envelope
		if err := json.Unmarshal(payload, &env); err == nil && env.EventType == events.EventTypeTypingChanged {
			var tp events.TypingPayload
			if err := json.Unmarshal(env.Payload, &tp); err == nil {
				b.hub.BroadcastExceptUser(channel, tp.UserID, payload)
				return
			}
		}
	}

	b.hub.Broadcast(channel, payload)
}
