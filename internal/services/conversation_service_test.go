package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"chatsync/internal/domain/conversation"
	chatsync_errors "chatsync/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConversationRepo struct {
	mu    sync.Mutex
	convs map[uuid.UUID]*conversation.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[uuid.UUID]*conversation.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.convs[c.ID] = &cp
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return conversation.Conversation{}, chatsync_errors.ErrNotFound
	}
	return *c, nil
}

func (r *fakeConversationRepo) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []conversation.Conversation
	for _, c := range r.convs {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) GetDirectConversation(ctx context.Context, userA, userB uuid.UUID) (conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if !c.IsGroup && c.HasParticipant(userA) && c.HasParticipant(userB) {
			return *c, nil
		}
	}
	return conversation.Conversation{}, chatsync_errors.ErrNotFound
}

func (r *fakeConversationRepo) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	c, err := r.GetByID(ctx, conversationID)
	if err != nil {
		return false, nil
	}
	return c.HasParticipant(userID), nil
}

func (r *fakeConversationRepo) SetLastMessage(ctx context.Context, conversationID uuid.UUID, messageID uuid.NullUUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return chatsync_errors.ErrNotFound
	}
	c.LastMessageID = messageID
	c.UpdatedAt = time.Now()
	return nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, conversationID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[conversationID]
	if !ok {
		return chatsync_errors.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	return nil
}

func TestCreateGroupAssignsCreatorAdmin(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo)
	creator, member := uuid.New(), uuid.New()

	conv, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID:      creator,
		Subject:        "Trip Planning",
		ParticipantIDs: []uuid.UUID{member},
	})
	require.NoError(t, err)

	assert.True(t, conv.IsGroup)
	assert.Equal(t, "Trip Planning", conv.Subject.String)
	require.Len(t, conv.Participants, 2)

	roles := map[uuid.UUID]string{}
	for _, p := range conv.Participants {
		roles[p.UserID] = p.Role
	}
	assert.Equal(t, conversation.RoleAdmin, roles[creator])
	assert.Equal(t, conversation.RoleMember, roles[member])
}

func TestCreateGroupDeduplicatesCreator(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo)
	creator, member := uuid.New(), uuid.New()

	conv, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID:      creator,
		Subject:        "Dup Test",
		ParticipantIDs: []uuid.UUID{creator, member, member},
	})
	require.NoError(t, err)
	assert.Len(t, conv.Participants, 2)
}

func TestCreateGroupRequiresSubjectAndMembers(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo)
	creator := uuid.New()

	_, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID:      creator,
		ParticipantIDs: []uuid.UUID{uuid.New()},
	})
	assert.ErrorIs(t, err, chatsync_errors.ErrInvalidInput)

	_, err = svc.CreateGroup(context.Background(), CreateGroupInput{
		CreatorID: creator,
		Subject:   "Just Me",
	})
	assert.ErrorIs(t, err, chatsync_errors.ErrInvalidInput)
}

func TestEnsureDirectCreatesThenReuses(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo)
	alice, bob := uuid.New(), uuid.New()

	first, err := svc.EnsureDirect(context.Background(), alice, bob)
	require.NoError(t, err)
	assert.False(t, first.IsGroup)
	assert.Len(t, first.Participants, 2)

	// Either participant order resolves to the same conversation.
	second, err := svc.EnsureDirect(context.Background(), bob, alice)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureDirectRejectsSelf(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo)
	alice := uuid.New()

	_, err := svc.EnsureDirect(context.Background(), alice, alice)
	assert.ErrorIs(t, err, chatsync_errors.ErrInvalidInput)
}

func TestGetForParticipantEnforcesMembership(t *testing.T) {
	repo := newFakeConversationRepo()
	svc := NewConversationService(repo)
	alice, bob := uuid.New(), uuid.New()

	conv, err := svc.EnsureDirect(context.Background(), alice, bob)
	require.NoError(t, err)

	_, err = svc.GetForParticipant(context.Background(), conv.ID, alice)
	assert.NoError(t, err)

	_, err = svc.GetForParticipant(context.Background(), conv.ID, uuid.New())
	assert.ErrorIs(t, err, chatsync_errors.ErrForbidden)
}
