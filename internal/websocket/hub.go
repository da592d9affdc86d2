package websocket

import (
	"context"
	"sync"
)

type commandKind int

const (
	commandRegister commandKind = iota
	commandUnregister
	commandSubscribe
	commandUnsubscribe
)

// hubCommand is a lifecycle request processed by the hub's event loop.
type hubCommand struct {
	kind    commandKind
	client  *Client
	channel string
}

// Hub manages WebSocket client connections and channel subscriptions.
// Lifecycle changes flow through one command channel so requests from a
// connection apply in the order they were issued: a subscribe queued before a
// disconnect can never re-insert the client after its removal.
type Hub struct {
	mu sync.RWMutex

	// clients maps client ID to client (for cleanup)
	clients map[string]*Client

	// channels maps channel name to set of clients subscribed to it
	channels map[string]map[*Client]struct{}

	commands chan hubCommand
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[*Client]struct{}),
		commands: make(chan hubCommand, 512),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-h.commands:
			switch cmd.kind {
			case commandRegister:
				h.addClient(cmd.client)
			case commandUnregister:
				h.removeClient(cmd.client)
			case commandSubscribe:
				h.subscribeToChannel(cmd.client, cmd.channel)
			case commandUnsubscribe:
				h.unsubscribeFromChannel(cmd.client, cmd.channel)
			}
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.commands <- hubCommand{kind: commandRegister, client: client}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.commands <- hubCommand{kind: commandUnregister, client: client}
}

// Subscribe subscribes a client to a channel
func (h *Hub) Subscribe(client *Client, channel string) {
	h.commands <- hubCommand{kind: commandSubscribe, client: client, channel: channel}
}

// Unsubscribe unsubscribes a client from a channel
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.commands <- hubCommand{kind: commandUnsubscribe, client: client, channel: channel}
}

// Broadcast sends a message to all clients subscribed to a channel
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	clients := h.channels[channel]
	for c := range clients {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// BroadcastExceptUser sends a message to all clients subscribed to a channel
// except those belonging to the given user (typing indicators never echo to
// their originator).
func (h *Hub) BroadcastExceptUser(channel, userID string, payload []byte) {
	h.mu.RLock()
	clients := h.channels[channel]
	for c := range clients {
		if c.UserID == userID {
			continue
		}
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// BroadcastToUser sends a message to all connections for a specific user
func (h *Hub) BroadcastToUser(userID string, payload []byte) {
	h.mu.RLock()
	for _, client := range h.clients {
		if client.UserID == userID {
			client.SendMessage(payload)
		}
	}
	h.mu.RUnlock()
}

// BroadcastAll sends a message to every connected client
func (h *Hub) BroadcastAll(payload []byte) {
	h.mu.RLock()
	for _, client := range h.clients {
		client.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetChannelSubscriberCount returns the number of subscribers for a channel
func (h *Hub) GetChannelSubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// addClient adds a new client to the hub (internal)
func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
}

// removeClient removes a client and all its subscriptions (internal)
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Remove client from all channels
	for channel := range client.channels {
		if subscribers, ok := h.channels[channel]; ok {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.channels, channel)
			}
		}
	}

	// Remove client from clients map
	delete(h.clients, client.ID)

	client.closeSend()
}

// subscribeToChannel subscribes a client to a channel (internal). Requests for
// clients the hub no longer tracks are dropped rather than re-inserted.
func (h *Hub) subscribeToChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if _, ok := h.channels[channel]; !ok {
		h.channels[channel] = make(map[*Client]struct{})
	}
	h.channels[channel][client] = struct{}{}

	client.Subscribe(channel)
}

// unsubscribeFromChannel unsubscribes a client from a channel (internal)
func (h *Hub) unsubscribeFromChannel(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subscribers, ok := h.channels[channel]; ok {
		delete(subscribers, client)
		if len(subscribers) == 0 {
			delete(h.channels, channel)
		}
	}

	client.Unsubscribe(channel)
}
