package engine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chatsync/internal/domain/message"
	"chatsync/internal/events"
	"chatsync/internal/repository"
	chatsync_errors "chatsync/pkg/errors"
	"chatsync/pkg/logger"

	"github.com/google/uuid"
)

// Engine is the conversation sync engine. Every mutating operation follows
// the same discipline: persist, then derive, then broadcast. A failure before
// the persist aborts with no broadcast; a failure while recomputing derived
// state after a committed write is logged and turned into a resync hint
// rather than a fabricated count.
type Engine struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	bcast         Broadcaster
	log           *logger.Logger
}

func New(conversations repository.ConversationRepository, messages repository.MessageRepository, bcast Broadcaster, log *logger.Logger) *Engine {
	return &Engine{
		conversations: conversations,
		messages:      messages,
		bcast:         bcast,
		log:           log,
	}
}

// SendInput carries a new message. An attachment arrives with its URL and
// kind already resolved by the upload collaborator; if the kind is missing it
// is derived from the URL.
type SendInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
	AttachmentURL  string
	AttachmentKind string
}

// Send persists a message, moves the conversation's last-message pointer and
// broadcasts the delta: the full message to the room (the sender's other
// devices included), a +1 unread delta to every other participant's personal
// channel, and the refreshed preview to everyone.
func (e *Engine) Send(ctx context.Context, in SendInput) (message.Message, error) {
	if in.Body == "" && in.AttachmentURL == "" {
		return message.Message{}, chatsync_errors.ErrInvalidInput
	}

	conv, err := e.conversations.GetByID(ctx, in.ConversationID)
	if err != nil {
		return message.Message{}, err
	}
	if !conv.HasParticipant(in.SenderID) {
		return message.Message{}, chatsync_errors.ErrForbidden
	}

	msg := message.Message{
		ID:             uuid.New(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Body:           in.Body,
		CreatedAt:      time.Now(),
	}
	if in.AttachmentURL != "" {
		kind := in.AttachmentKind
		if kind == "" {
			kind = message.KindFromFilename(in.AttachmentURL)
		}
		msg.AttachmentURL = sql.NullString{String: in.AttachmentURL, Valid: true}
		msg.AttachmentKind = sql.NullString{String: kind, Valid: true}
	}

	if err := e.messages.Create(ctx, &msg); err != nil {
		return message.Message{}, err
	}
	if err := e.conversations.SetLastMessage(ctx, conv.ID, uuid.NullUUID{UUID: msg.ID, Valid: true}); err != nil {
		e.logErrorf("send: advancing last message for conversation %s: %v", conv.ID, err)
	}

	convID := conv.ID.String()
	e.bcast.ToConversation(ctx, convID, events.EventTypeMessageCreated, events.NewMessage(msg))

	preview := events.NewPreview(message.PreviewOf(msg))
	for _, pid := range conv.ParticipantIDs() {
		if pid != in.SenderID {
			e.bcast.ToUser(ctx, pid.String(), events.EventTypeUnreadDelta, events.UnreadDeltaPayload{
				ConversationID: convID,
				Delta:          1,
			})
		}
		e.bcast.ToUser(ctx, pid.String(), events.EventTypePreviewUpdated, events.PreviewUpdatedPayload{
			ConversationID: convID,
			Preview:        preview,
		})
	}

	return msg, nil
}

// Edit updates a message body. Editing a message that no longer exists is a
// silent no-op: a concurrent delete already converged the state. The
// conversation preview is rebroadcast only when the edited message is the
// current last message. A non-nil editorID asserts editor == sender; callers
// that already enforce this may pass uuid.Nil.
func (e *Engine) Edit(ctx context.Context, messageID, editorID uuid.UUID, newBody string) error {
	if newBody == "" {
		return chatsync_errors.ErrInvalidInput
	}

	msg, err := e.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, chatsync_errors.ErrNotFound) {
			return nil
		}
		return err
	}
	if editorID != uuid.Nil && msg.SenderID != editorID {
		return chatsync_errors.ErrForbidden
	}

	if err := e.messages.UpdateBody(ctx, messageID, newBody); err != nil {
		if errors.Is(err, chatsync_errors.ErrNotFound) {
			return nil
		}
		return err
	}
	msg.Body = newBody
	msg.EditedAt = sql.NullTime{Time: time.Now(), Valid: true}

	if err := e.conversations.Touch(ctx, msg.ConversationID); err != nil {
		e.logErrorf("edit: touching conversation %s: %v", msg.ConversationID, err)
	}

	convID := msg.ConversationID.String()
	e.bcast.ToConversation(ctx, convID, events.EventTypeMessageUpdated, events.NewMessage(msg))

	conv, err := e.conversations.GetByID(ctx, msg.ConversationID)
	if err != nil {
		e.logErrorf("edit: loading conversation %s for preview: %v", msg.ConversationID, err)
		return nil
	}
	if conv.LastMessageID.Valid && conv.LastMessageID.UUID == msg.ID {
		preview := events.NewPreview(message.PreviewOf(msg))
		for _, pid := range conv.ParticipantIDs() {
			e.bcast.ToUser(ctx, pid.String(), events.EventTypePreviewUpdated, events.PreviewUpdatedPayload{
				ConversationID: convID,
				Preview:        preview,
			})
		}
	}
	return nil
}

// Delete removes a message. It is idempotent: a REST delete racing with the
// socket notify converges to the same end state without error. Unread counts
// are rebroadcast as absolute values because deletion changes the denominator
// and deltas would drift.
func (e *Engine) Delete(ctx context.Context, conversationID, messageID uuid.UUID) error {
	conv, err := e.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}

	msg, err := e.messages.GetByID(ctx, messageID)
	switch {
	case err == nil:
		if msg.ConversationID != conversationID {
			return chatsync_errors.ErrInvalidInput
		}
		if err := e.messages.HardDelete(ctx, messageID); err != nil && !errors.Is(err, chatsync_errors.ErrNotFound) {
			return err
		}
	case errors.Is(err, chatsync_errors.ErrNotFound):
		// Already gone; still broadcast and recompute so both racing
		// callers converge.
	default:
		return err
	}

	convID := conversationID.String()
	e.bcast.ToConversation(ctx, convID, events.EventTypeMessageDeleted, events.MessageDeletedPayload{
		ConversationID: convID,
		MessageID:      messageID.String(),
	})

	pointerChanged := conv.LastMessageID.Valid && conv.LastMessageID.UUID == messageID
	var latest message.Message
	var hasLatest bool
	latest, err = e.messages.GetLatestMessage(ctx, conversationID)
	switch {
	case err == nil:
		hasLatest = true
	case errors.Is(err, chatsync_errors.ErrNotFound):
	default:
		e.logErrorf("delete: recomputing latest message for conversation %s: %v", conversationID, err)
		e.resyncHint(ctx, conv.ParticipantIDs(), convID)
		return nil
	}

	if pointerChanged {
		newPointer := uuid.NullUUID{}
		if hasLatest {
			newPointer = uuid.NullUUID{UUID: latest.ID, Valid: true}
		}
		if err := e.conversations.SetLastMessage(ctx, conversationID, newPointer); err != nil {
			e.logErrorf("delete: recomputing last message pointer for conversation %s: %v", conversationID, err)
		}
	} else {
		if err := e.conversations.Touch(ctx, conversationID); err != nil {
			e.logErrorf("delete: touching conversation %s: %v", conversationID, err)
		}
	}

	var preview *events.Preview
	if hasLatest {
		preview = events.NewPreview(message.PreviewOf(latest))
	}
	for _, pid := range conv.ParticipantIDs() {
		count, err := e.messages.CountUnread(ctx, conversationID, pid)
		if err != nil {
			e.logErrorf("delete: recomputing unread for user %s in conversation %s: %v", pid, conversationID, err)
			e.bcast.ToUser(ctx, pid.String(), events.EventTypeResyncHint, events.ResyncHintPayload{ConversationID: convID})
			continue
		}
		e.bcast.ToUser(ctx, pid.String(), events.EventTypeUnreadSet, events.UnreadSetPayload{
			ConversationID: convID,
			Count:          count,
		})
	}
	for _, pid := range conv.ParticipantIDs() {
		e.bcast.ToUser(ctx, pid.String(), events.EventTypePreviewUpdated, events.PreviewUpdatedPayload{
			ConversationID: convID,
			Preview:        preview,
		})
	}
	return nil
}

// MarkAsRead adds the reader to every unread message in one batched update.
// When nothing was unread the call is a silent no-op: no broadcast at all.
func (e *Engine) MarkAsRead(ctx context.Context, conversationID, readerID uuid.UUID) error {
	conv, err := e.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(readerID) {
		return chatsync_errors.ErrForbidden
	}

	updated, err := e.messages.MarkConversationRead(ctx, conversationID, readerID)
	if err != nil {
		return err
	}
	if updated == 0 {
		return nil
	}

	convID := conversationID.String()
	e.bcast.ToConversation(ctx, convID, events.EventTypeMessagesRead, events.MessagesReadPayload{
		ConversationID: convID,
		ReaderID:       readerID.String(),
	})
	e.bcast.ToUser(ctx, readerID.String(), events.EventTypeUnreadReset, events.UnreadResetPayload{
		ConversationID: convID,
	})
	return nil
}

// GroupCreated fans the fully-populated group out to every participant's
// personal channel, after creation has been committed by the caller.
func (e *Engine) GroupCreated(ctx context.Context, conversationID uuid.UUID) error {
	conv, err := e.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsGroup {
		return chatsync_errors.ErrInvalidInput
	}

	group := events.NewGroup(conv)
	for _, pid := range conv.ParticipantIDs() {
		e.bcast.ToUser(ctx, pid.String(), events.EventTypeGroupCreated, group)
	}
	return nil
}

// InitialState computes the batched sidebar payload for a newly identified
// connection: unread count and last-message preview per conversation. It is
// the reconciliation point after any missed broadcast.
func (e *Engine) InitialState(ctx context.Context, userID uuid.UUID) (events.InitialStatePayload, error) {
	convs, err := e.conversations.GetUserConversations(ctx, userID)
	if err != nil {
		return events.InitialStatePayload{}, err
	}

	state := events.InitialStatePayload{
		UnreadCounts: make(map[string]int64, len(convs)),
		LastMessages: make(map[string]*events.Preview, len(convs)),
	}
	for _, conv := range convs {
		convID := conv.ID.String()
		count, err := e.messages.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return events.InitialStatePayload{}, err
		}
		state.UnreadCounts[convID] = count

		if !conv.LastMessageID.Valid {
			continue
		}
		last, err := e.messages.GetByID(ctx, conv.LastMessageID.UUID)
		if err != nil {
			if errors.Is(err, chatsync_errors.ErrNotFound) {
				continue
			}
			return events.InitialStatePayload{}, err
		}
		state.LastMessages[convID] = events.NewPreview(message.PreviewOf(last))
	}
	return state, nil
}

func (e *Engine) resyncHint(ctx context.Context, participants []uuid.UUID, conversationID string) {
	for _, pid := range participants {
		e.bcast.ToUser(ctx, pid.String(), events.EventTypeResyncHint, events.ResyncHintPayload{ConversationID: conversationID})
	}
}

func (e *Engine) logErrorf(template string, args ...interface{}) {
	if e.log != nil {
		e.log.Errorf(template, args...)
	}
}
