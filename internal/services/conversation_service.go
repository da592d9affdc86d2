package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"chatsync/internal/domain/conversation"
	"chatsync/internal/repository"
	chatsync_errors "chatsync/pkg/errors"

	"github.com/google/uuid"
)

// ConversationService owns conversation creation and membership lookups. The
// fan-out of creation events to participants happens in the engine, after the
// rows are committed here.
type ConversationService struct {
	conversations repository.ConversationRepository
}

func NewConversationService(conversations repository.ConversationRepository) *ConversationService {
	return &ConversationService{conversations: conversations}
}

type CreateGroupInput struct {
	CreatorID      uuid.UUID
	Subject        string
	AvatarURL      string
	ParticipantIDs []uuid.UUID
}

// CreateGroup persists a group conversation with the creator as admin. The
// creator is always a participant whether or not the caller listed them.
func (s *ConversationService) CreateGroup(ctx context.Context, in CreateGroupInput) (conversation.Conversation, error) {
	if strings.TrimSpace(in.Subject) == "" {
		return conversation.Conversation{}, chatsync_errors.ErrInvalidInput
	}

	members := map[uuid.UUID]struct{}{in.CreatorID: {}}
	for _, id := range in.ParticipantIDs {
		if id != uuid.Nil {
			members[id] = struct{}{}
		}
	}
	if len(members) < 2 {
		return conversation.Conversation{}, chatsync_errors.ErrInvalidInput
	}

	now := time.Now()
	conv := conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   true,
		Subject:   sql.NullString{String: strings.TrimSpace(in.Subject), Valid: true},
		CreatedBy: uuid.NullUUID{UUID: in.CreatorID, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.AvatarURL != "" {
		conv.AvatarURL = sql.NullString{String: in.AvatarURL, Valid: true}
	}
	for id := range members {
		role := conversation.RoleMember
		if id == in.CreatorID {
			role = conversation.RoleAdmin
		}
		conv.Participants = append(conv.Participants, conversation.Participant{
			ConversationID: conv.ID,
			UserID:         id,
			Role:           role,
			JoinedAt:       now,
		})
	}

	if err := s.conversations.Create(ctx, &conv); err != nil {
		return conversation.Conversation{}, err
	}
	return conv, nil
}

// EnsureDirect returns the 1:1 conversation between two users, creating it on
// first contact.
func (s *ConversationService) EnsureDirect(ctx context.Context, userA, userB uuid.UUID) (conversation.Conversation, error) {
	if userA == uuid.Nil || userB == uuid.Nil || userA == userB {
		return conversation.Conversation{}, chatsync_errors.ErrInvalidInput
	}

	conv, err := s.conversations.GetDirectConversation(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, chatsync_errors.ErrNotFound) {
		return conversation.Conversation{}, err
	}

	now := time.Now()
	conv = conversation.Conversation{
		ID:        uuid.New(),
		IsGroup:   false,
		CreatedBy: uuid.NullUUID{UUID: userA, Valid: true},
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []conversation.Participant{
			{ConversationID: uuid.Nil, UserID: userA, Role: conversation.RoleMember, JoinedAt: now},
			{ConversationID: uuid.Nil, UserID: userB, Role: conversation.RoleMember, JoinedAt: now},
		},
	}
	for i := range conv.Participants {
		conv.Participants[i].ConversationID = conv.ID
	}

	if err := s.conversations.Create(ctx, &conv); err != nil {
		// A concurrent first contact may have won the race.
		if errors.Is(err, chatsync_errors.ErrAlreadyExists) {
			return s.conversations.GetDirectConversation(ctx, userA, userB)
		}
		return conversation.Conversation{}, err
	}
	return conv, nil
}

// GetForParticipant loads a conversation, enforcing membership.
func (s *ConversationService) GetForParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.HasParticipant(userID) {
		return conversation.Conversation{}, chatsync_errors.ErrForbidden
	}
	return conv, nil
}

// ListForUser returns the user's conversations, most recently active first.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return s.conversations.GetUserConversations(ctx, userID)
}
