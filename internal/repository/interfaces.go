package repository

import (
	"context"

	"chatsync/internal/domain/conversation"
	"chatsync/internal/domain/message"
	"chatsync/internal/domain/user"

	"github.com/google/uuid"
)

// ConversationRepository provides access to the conversation store.
type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	// GetDirectConversation finds the existing 1:1 conversation between two
	// users, in either participant order.
	GetDirectConversation(ctx context.Context, userA, userB uuid.UUID) (conversation.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	// SetLastMessage updates the cached last-message pointer and refreshes
	// updated_at. A null messageID clears the pointer.
	SetLastMessage(ctx context.Context, conversationID uuid.UUID, messageID uuid.NullUUID) error
	// Touch refreshes updated_at without moving the pointer.
	Touch(ctx context.Context, conversationID uuid.UUID) error
}

// MessageRepository provides access to the message store.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	UpdateBody(ctx context.Context, id uuid.UUID, body string) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]message.Message, error)
	GetLatestMessage(ctx context.Context, conversationID uuid.UUID) (message.Message, error)
	// CountUnread computes the authoritative unread count for (user,
	// conversation): messages with sender != user lacking a read row for user.
	CountUnread(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
	// MarkConversationRead inserts read rows for every unread message in the
	// conversation in a single batched statement and returns how many rows it
	// wrote. The sender's own messages are never included.
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID) (int64, error)
}

// UserRepository provides access to the user store.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
}
