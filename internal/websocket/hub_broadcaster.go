package websocket

import (
	"context"

	"chatsync/internal/events"
	"chatsync/pkg/logger"
)

// HubBroadcaster delivers events straight into the local hub. Single-instance
// deployments use it instead of the redis backbone; the wire format is the
// same envelope either way.
type HubBroadcaster struct {
	hub *Hub
	log *logger.Logger
}

func NewHubBroadcaster(hub *Hub, log *logger.Logger) *HubBroadcaster {
	return &HubBroadcaster{hub: hub, log: log}
}

func (b *HubBroadcaster) ToConversation(ctx context.Context, conversationID, eventType string, payload interface{}) {
	data, err := events.NewEnvelope(eventType, payload)
	if err != nil {
		b.logErrorf("broadcast: marshaling %s: %v", eventType, err)
		return
	}
	channel := events.ConversationChannel(conversationID)
	if tp, ok := payload.(events.TypingPayload); ok && eventType == events.EventTypeTypingChanged {
		b.hub.BroadcastExceptUser(channel, tp.UserID, data)
		return
	}
	b.hub.Broadcast(channel, data)
}

func (b *HubBroadcaster) ToUser(ctx context.Context, userID, eventType string, payload interface{}) {
	data, err := events.NewEnvelope(eventType, payload)
	if err != nil {
		b.logErrorf("broadcast: marshaling %s: %v", eventType, err)
		return
	}
	b.hub.BroadcastToUser(userID, data)
}

func (b *HubBroadcaster) ToAll(ctx context.Context, eventType string, payload interface{}) {
	data, err := events.NewEnvelope(eventType, payload)
	if err != nil {
		b.logErrorf("broadcast: marshaling %s: %v", eventType, err)
		return
	}
	b.hub.BroadcastAll(data)
}

func (b *HubBroadcaster) logErrorf(template string, args ...interface{}) {
	if b.log != nil {
		b.log.Errorf(template, args...)
	}
}
