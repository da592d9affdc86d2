package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID string, channels ...string) *Client {
	t.Helper()
	before := hub.GetClientCount()
	client := NewClient(nil, userID)
	hub.Register(client)
	for _, ch := range channels {
		hub.Subscribe(client, ch)
	}
	require.Eventually(t, func() bool {
		if hub.GetClientCount() <= before {
			return false
		}
		for _, ch := range channels {
			if !client.IsSubscribed(ch) {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
	return client
}

func received(c *Client) []byte {
	select {
	case msg := <-c.Send:
		return msg
	default:
		return nil
	}
}

func TestBroadcastReachesSubscribersOnly(t *testing.T) {
	hub := startHub(t)
	a := registerClient(t, hub, "user-a", "channel:conversation:1")
	b := registerClient(t, hub, "user-b", "channel:conversation:1")
	c := registerClient(t, hub, "user-c", "channel:conversation:2")

	hub.Broadcast("channel:conversation:1", []byte("hello"))

	assert.Equal(t, []byte("hello"), received(a))
	assert.Equal(t, []byte("hello"), received(b))
	assert.Nil(t, received(c))
}

func TestBroadcastExceptUserSkipsEveryConnectionOfThatUser(t *testing.T) {
	hub := startHub(t)
	// Two tabs for the same user plus one other participant.
	tab1 := registerClient(t, hub, "user-a", "channel:conversation:1")
	tab2 := registerClient(t, hub, "user-a", "channel:conversation:1")
	other := registerClient(t, hub, "user-b", "channel:conversation:1")

	hub.BroadcastExceptUser("channel:conversation:1", "user-a", []byte("typing"))

	assert.Nil(t, received(tab1))
	assert.Nil(t, received(tab2))
	assert.Equal(t, []byte("typing"), received(other))
}

func TestBroadcastToUserHitsAllConnections(t *testing.T) {
	hub := startHub(t)
	tab1 := registerClient(t, hub, "user-a")
	tab2 := registerClient(t, hub, "user-a")
	other := registerClient(t, hub, "user-b")

	hub.BroadcastToUser("user-a", []byte("personal"))

	assert.Equal(t, []byte("personal"), received(tab1))
	assert.Equal(t, []byte("personal"), received(tab2))
	assert.Nil(t, received(other))
}

func TestBroadcastAll(t *testing.T) {
	hub := startHub(t)
	a := registerClient(t, hub, "user-a")
	b := registerClient(t, hub, "user-b")

	hub.BroadcastAll([]byte("presence"))

	assert.Equal(t, []byte("presence"), received(a))
	assert.Equal(t, []byte("presence"), received(b))
}

func TestSubscribeQueuedAcrossDisconnectNeverResurrectsClient(t *testing.T) {
	for i := 0; i < 25; i++ {
		hub := NewHub()
		ctx, cancel := context.WithCancel(context.Background())
		client := NewClient(nil, "user-a")

		// Queue the whole lifecycle before the loop starts. Commands apply
		// in order, so the subscribe lands while the client is live and the
		// disconnect cleans it up afterwards.
		hub.Register(client)
		hub.Subscribe(client, "channel:conversation:1")
		hub.Unregister(client)
		go hub.Run(ctx)

		// The disconnect closes the client's outbound channel; wait for it.
		require.Eventually(t, func() bool {
			select {
			case _, open := <-client.Send:
				return !open
			default:
				return false
			}
		}, time.Second, time.Millisecond)

		assert.Zero(t, hub.GetClientCount())
		assert.Zero(t, hub.GetChannelSubscriberCount("channel:conversation:1"))
		assert.NotPanics(t, func() {
			hub.Broadcast("channel:conversation:1", []byte("after disconnect"))
		})
		cancel()
	}
}

func TestSubscribeForUnknownClientIsDropped(t *testing.T) {
	hub := startHub(t)
	registered := registerClient(t, hub, "user-a", "channel:conversation:9")

	ghost := NewClient(nil, "user-ghost")
	hub.Subscribe(ghost, "channel:conversation:9")

	require.Eventually(t, func() bool {
		return hub.GetChannelSubscriberCount("channel:conversation:9") == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, ghost.IsSubscribed("channel:conversation:9"))

	hub.Broadcast("channel:conversation:9", []byte("hello"))
	assert.Equal(t, []byte("hello"), received(registered))
	assert.Nil(t, received(ghost))
}

func TestSendMessageAfterRemovalIsNoOp(t *testing.T) {
	client := NewClient(nil, "user-a")
	client.closeSend()

	assert.NotPanics(t, func() {
		client.SendMessage([]byte("late delivery"))
	})
}

func TestUnregisterCleansUpSubscriptions(t *testing.T) {
	hub := startHub(t)
	a := registerClient(t, hub, "user-a", "channel:conversation:1")

	hub.Unregister(a)
	require.Eventually(t, func() bool {
		return hub.GetClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	assert.Zero(t, hub.GetChannelSubscriberCount("channel:conversation:1"))
}
