package events

import (
	"time"

	"chatsync/internal/domain/conversation"
	"chatsync/internal/domain/message"
)

// Message is the wire representation of a stored message.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Body           string     `json:"body"`
	AttachmentURL  *string    `json:"attachment_url,omitempty"`
	AttachmentKind *string    `json:"attachment_kind,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
}

func NewMessage(m message.Message) Message {
	out := Message{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Body:           m.Body,
		CreatedAt:      m.CreatedAt,
	}
	if m.AttachmentURL.Valid {
		out.AttachmentURL = &m.AttachmentURL.String
	}
	if m.AttachmentKind.Valid {
		out.AttachmentKind = &m.AttachmentKind.String
	}
	if m.EditedAt.Valid {
		out.EditedAt = &m.EditedAt.Time
	}
	return out
}

// Preview is the wire form of a last-message preview. A nil preview means the
// conversation no longer has any messages.
type Preview struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"sender_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPreview(p message.Preview) *Preview {
	return &Preview{
		Text:      p.Text,
		SenderID:  p.SenderID.String(),
		Timestamp: p.Timestamp,
	}
}

// Group is the wire representation of a group conversation.
type Group struct {
	ID           string    `json:"id"`
	Subject      string    `json:"subject"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedBy    *string   `json:"created_by,omitempty"`
	Participants []string  `json:"participants"`
	Admins       []string  `json:"admins"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewGroup(c conversation.Conversation) Group {
	out := Group{
		ID:        c.ID.String(),
		Subject:   c.Subject.String,
		CreatedAt: c.CreatedAt,
	}
	if c.AvatarURL.Valid {
		out.AvatarURL = &c.AvatarURL.String
	}
	if c.CreatedBy.Valid {
		s := c.CreatedBy.UUID.String()
		out.CreatedBy = &s
	}
	for _, p := range c.Participants {
		out.Participants = append(out.Participants, p.UserID.String())
		if p.Role == conversation.RoleAdmin {
			out.Admins = append(out.Admins, p.UserID.String())
		}
	}
	return out
}

type MessageDeletedPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
}

type MessagesReadPayload struct {
	ConversationID string `json:"conversation_id"`
	ReaderID       string `json:"reader_id"`
}

type UnreadDeltaPayload struct {
	ConversationID string `json:"conversation_id"`
	Delta          int    `json:"delta"`
}

type UnreadSetPayload struct {
	ConversationID string `json:"conversation_id"`
	Count          int64  `json:"count"`
}

type UnreadResetPayload struct {
	ConversationID string `json:"conversation_id"`
}

type PreviewUpdatedPayload struct {
	ConversationID string   `json:"conversation_id"`
	Preview        *Preview `json:"preview"`
}

type PresencePayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"` // online or offline
}

type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name,omitempty"`
	IsTyping       bool   `json:"is_typing"`
}

type InitialStatePayload struct {
	UnreadCounts map[string]int64    `json:"unread_counts"`
	LastMessages map[string]*Preview `json:"last_messages"`
	OnlineUsers  []string            `json:"online_users"`
}

type ResyncHintPayload struct {
	ConversationID string `json:"conversation_id"`
}
