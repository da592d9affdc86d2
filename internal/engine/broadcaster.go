package engine

import "context"

// Broadcaster fans events out to conversation rooms, personal channels, or
// every connected client. Delivery is fire-and-forget: durability lives in the
// stores, and a client that misses a broadcast reconciles via the initial
// state payload or the history API. Implementations log failures and never
// return them across the broadcast boundary.
type Broadcaster interface {
	ToConversation(ctx context.Context, conversationID, eventType string, payload interface{})
	ToUser(ctx context.Context, userID, eventType string, payload interface{})
	ToAll(ctx context.Context, eventType string, payload interface{})
}
