package websocket

import (
	"testing"

	"chatsync/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeRoutesConversationTraffic(t *testing.T) {
	hub := startHub(t)
	member := registerClient(t, hub, "user-a", "channel:conversation:42")
	outsider := registerClient(t, hub, "user-b")
	bridge := NewRedisBridge(nil, hub)

	payload, err := events.NewEnvelope(events.EventTypeMessageCreated, events.MessageDeletedPayload{})
	require.NoError(t, err)

	bridge.route("channel:conversation:42", payload)

	assert.Equal(t, payload, received(member))
	assert.Nil(t, received(outsider))
}

func TestBridgeBroadcastsPresenceToEveryone(t *testing.T) {
	hub := startHub(t)
	a := registerClient(t, hub, "user-a")
	b := registerClient(t, hub, "user-b")
	bridge := NewRedisBridge(nil, hub)

	payload, err := events.NewEnvelope(events.EventTypePresenceChanged, events.PresencePayload{
		UserID: "user-a",
		Status: "online",
	})
	require.NoError(t, err)

	bridge.route(events.ChannelSystemPresence, payload)

	assert.Equal(t, payload, received(a))
	assert.Equal(t, payload, received(b))
}

func TestBridgeNeverEchoesTypingToOriginator(t *testing.T) {
	hub := startHub(t)
	typist := registerClient(t, hub, "user-a", "channel:conversation:7")
	other := registerClient(t, hub, "user-b", "channel:conversation:7")
	bridge := NewRedisBridge(nil, hub)

	payload, err := events.NewEnvelope(events.EventTypeTypingChanged, events.TypingPayload{
		ConversationID: "7",
		UserID:         "user-a",
		IsTyping:       true,
	})
	require.NoError(t, err)

	bridge.route("channel:conversation:7", payload)

	assert.Nil(t, received(typist))
	assert.Equal(t, payload, received(other))
}
