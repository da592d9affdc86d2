package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"chatsync/internal/engine"
	"chatsync/internal/events"
	"chatsync/internal/presence"
	"chatsync/internal/repository"
	"chatsync/internal/services"
	"chatsync/internal/transport/httpdto"
	"chatsync/internal/typing"
	"chatsync/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	eventTimeout = 10 * time.Second

	// readWait bounds how long a connection may go without inbound traffic.
	// Pongs elicited by the write loop's pings refresh it, so a client that
	// only listens stays connected.
	readWait = 60 * time.Second
)

// PresenceMirror receives online/offline transitions for cross-instance
// visibility. Mirror failures never affect the connection.
type PresenceMirror interface {
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}

// Handler upgrades authenticated HTTP requests to sync sessions and routes
// inbound socket events to the engine.
type Handler struct {
	auth          *services.AuthService
	hub           *Hub
	engine        *engine.Engine
	registry      *presence.Registry
	tracker       *typing.Tracker
	conversations repository.ConversationRepository
	bcast         engine.Broadcaster
	mirror        PresenceMirror
	log           *logger.Logger
}

func NewHandler(
	auth *services.AuthService,
	hub *Hub,
	eng *engine.Engine,
	registry *presence.Registry,
	tracker *typing.Tracker,
	conversations repository.ConversationRepository,
	bcast engine.Broadcaster,
	mirror PresenceMirror,
	log *logger.Logger,
) *Handler {
	return &Handler{
		auth:          auth,
		hub:           hub,
		engine:        eng,
		registry:      registry,
		tracker:       tracker,
		conversations: conversations,
		bcast:         bcast,
		mirror:        mirror,
		log:           log,
	}
}

// inboundEvent is the frame clients send over the socket.
type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type conversationRef struct {
	ConversationID string `json:"conversation_id"`
}

type sendPayload struct {
	ConversationID string `json:"conversation_id"`
	Body           string `json:"body"`
	AttachmentURL  string `json:"attachment_url"`
	AttachmentKind string `json:"attachment_kind"`
}

type editPayload struct {
	MessageID string `json:"message_id"`
	Body      string `json:"body"`
}

type deletePayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

// Connect authenticates the request, upgrades it, and runs the session until
// the client disconnects.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	claims, err := h.auth.ParseAccessToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		_ = conn.Close()
		return
	}

	client := NewClient(conn, userID.String())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.hub.Register(client)
	go client.WriteLoop(ctx)

	h.identify(ctx, client, userID)

	configureKeepalive(conn, readWait)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		h.dispatch(client, userID, claims.DisplayName, data)
	}

	h.teardown(client, userID)
}

// identify brings a fresh connection up to date. Presence is registered
// before the initial state is computed so the snapshot can never miss the
// user's own online transition.
func (h *Handler) identify(ctx context.Context, client *Client, userID uuid.UUID) {
	h.hub.Subscribe(client, events.UserChannel(userID.String()))

	if h.registry.Add(userID.String(), client.ID) {
		h.bcast.ToAll(ctx, events.EventTypePresenceChanged, events.PresencePayload{
			UserID: userID.String(),
			Status: "online",
		})
		if h.mirror != nil {
			if err := h.mirror.SetOnline(ctx, userID.String()); err != nil {
				h.log.Warnf("presence mirror online for %s: %v", userID, err)
			}
		}
	}

	stateCtx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	state, err := h.engine.InitialState(stateCtx, userID)
	if err != nil {
		h.log.Errorf("initial state for %s: %v", userID, err)
		return
	}
	state.OnlineUsers = h.registry.OnlineUsers()

	data, err := events.NewEnvelope(events.EventTypeInitialState, state)
	if err != nil {
		h.log.Errorf("marshaling initial state for %s: %v", userID, err)
		return
	}
	client.SendMessage(data)
}

func (h *Handler) teardown(client *Client, userID uuid.UUID) {
	h.hub.Unregister(client)

	if h.registry.Remove(userID.String(), client.ID) {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()

		h.bcast.ToAll(ctx, events.EventTypePresenceChanged, events.PresencePayload{
			UserID: userID.String(),
			Status: "offline",
		})
		if h.mirror != nil {
			if err := h.mirror.SetOffline(ctx, userID.String()); err != nil {
				h.log.Warnf("presence mirror offline for %s: %v", userID, err)
			}
		}
	}
}

// dispatch routes one inbound frame. Failures are logged and swallowed: a bad
// frame never tears down the connection, and the client reconciles any missed
// effect from authoritative state.
func (h *Handler) dispatch(client *Client, userID uuid.UUID, displayName string, data []byte) {
	var evt inboundEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		h.log.Warnf("malformed frame from %s: %v", userID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	var err error
	switch evt.Type {
	case "join_conversation":
		err = h.joinConversation(ctx, client, userID, evt.Payload)
	case "leave_conversation":
		err = h.leaveConversation(client, evt.Payload)
	case "typing_start":
		err = h.typingStart(userID, displayName, evt.Payload)
	case "typing_stop":
		err = h.typingStop(userID, evt.Payload)
	case "message_send":
		err = h.messageSend(ctx, userID, evt.Payload)
	case "message_edit":
		err = h.messageEdit(ctx, userID, evt.Payload)
	case "message_delete":
		err = h.messageDelete(ctx, userID, evt.Payload)
	case "mark_as_read":
		err = h.markAsRead(ctx, userID, evt.Payload)
	case "group_created":
		err = h.groupCreated(ctx, userID, evt.Payload)
	default:
		h.log.Warnf("unknown event type %q from %s", evt.Type, userID)
		return
	}
	if err != nil {
		h.log.Warnf("handling %s from %s: %v", evt.Type, userID, err)
	}
}

func (h *Handler) joinConversation(ctx context.Context, client *Client, userID uuid.UUID, payload json.RawMessage) error {
	convID, err := parseConversationRef(payload)
	if err != nil {
		return err
	}
	ok, err := h.conversations.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		h.log.Warnf("user %s denied subscription to conversation %s", userID, convID)
		return nil
	}
	h.hub.Subscribe(client, events.ConversationChannel(convID.String()))
	return nil
}

func (h *Handler) leaveConversation(client *Client, payload json.RawMessage) error {
	convID, err := parseConversationRef(payload)
	if err != nil {
		return err
	}
	h.hub.Unsubscribe(client, events.ConversationChannel(convID.String()))
	return nil
}

func (h *Handler) typingStart(userID uuid.UUID, displayName string, payload json.RawMessage) error {
	convID, err := parseConversationRef(payload)
	if err != nil {
		return err
	}
	h.tracker.Start(convID.String(), userID.String(), displayName)
	return nil
}

func (h *Handler) typingStop(userID uuid.UUID, payload json.RawMessage) error {
	convID, err := parseConversationRef(payload)
	if err != nil {
		return err
	}
	h.tracker.Stop(convID.String(), userID.String())
	return nil
}

func (h *Handler) messageSend(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var p sendPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	convID, err := uuid.Parse(p.ConversationID)
	if err != nil {
		return err
	}

	// Sending implies the author stopped typing.
	h.tracker.Stop(convID.String(), userID.String())

	_, err = h.engine.Send(ctx, engine.SendInput{
		ConversationID: convID,
		SenderID:       userID,
		Body:           p.Body,
		AttachmentURL:  p.AttachmentURL,
		AttachmentKind: p.AttachmentKind,
	})
	return err
}

func (h *Handler) messageEdit(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var p editPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	msgID, err := uuid.Parse(p.MessageID)
	if err != nil {
		return err
	}
	return h.engine.Edit(ctx, msgID, userID, p.Body)
}

func (h *Handler) messageDelete(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	var p deletePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return err
	}
	convID, err := uuid.Parse(p.ConversationID)
	if err != nil {
		return err
	}
	msgID, err := uuid.Parse(p.MessageID)
	if err != nil {
		return err
	}
	ok, err := h.conversations.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return h.engine.Delete(ctx, convID, msgID)
}

func (h *Handler) markAsRead(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	convID, err := parseConversationRef(payload)
	if err != nil {
		return err
	}
	return h.engine.MarkAsRead(ctx, convID, userID)
}

func (h *Handler) groupCreated(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error {
	convID, err := parseConversationRef(payload)
	if err != nil {
		return err
	}
	ok, err := h.conversations.IsParticipant(ctx, convID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return h.engine.GroupCreated(ctx, convID)
}

// configureKeepalive arms the read deadline and extends it whenever the
// client answers a ping.
func configureKeepalive(conn *websocket.Conn, wait time.Duration) {
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})
}

func parseConversationRef(payload json.RawMessage) (uuid.UUID, error) {
	var ref conversationRef
	if err := json.Unmarshal(payload, &ref); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(ref.ConversationID)
}
