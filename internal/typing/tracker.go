package typing

import (
	"sync"
	"time"
)

// Event is emitted whenever a typing indicator changes state.
type Event struct {
	ConversationID string
	UserID         string
	DisplayName    string
	Typing         bool
}

// NotifyFunc receives indicator changes. It is called outside the tracker's
// lock and must not block for long.
type NotifyFunc func(Event)

type key struct {
	conversationID string
	userID         string
}

type entry struct {
	displayName string
	timer       *time.Timer
}

// Tracker holds the ephemeral per-conversation set of typing users. Entries
// expire after the configured window even if the client never sends an
// explicit stop. Nothing here survives a restart, by contract.
type Tracker struct {
	mu      sync.Mutex
	expiry  time.Duration
	notify  NotifyFunc
	entries map[key]*entry
}

func NewTracker(expiry time.Duration, notify NotifyFunc) *Tracker {
	if expiry <= 0 {
		expiry = 4 * time.Second
	}
	return &Tracker{
		expiry:  expiry,
		notify:  notify,
		entries: make(map[key]*entry),
	}
}

// Start moves (conversation, user) to typing and (re)arms the expiry timer.
// The indicator event is emitted on every call; clients treat it as
// idempotent.
func (t *Tracker) Start(conversationID, userID, displayName string) {
	k := key{conversationID: conversationID, userID: userID}

	t.mu.Lock()
	if e, ok := t.entries[k]; ok {
		e.displayName = displayName
		e.timer.Reset(t.expiry)
	} else {
		t.entries[k] = &entry{
			displayName: displayName,
			timer: time.AfterFunc(t.expiry, func() {
				t.expire(k)
			}),
		}
	}
	t.mu.Unlock()

	t.emit(Event{ConversationID: conversationID, UserID: userID, DisplayName: displayName, Typing: true})
}

// Stop moves (conversation, user) back to idle. A stop for an idle user is a
// silent no-op.
func (t *Tracker) Stop(conversationID, userID string) {
	k := key{conversationID: conversationID, userID: userID}

	t.mu.Lock()
	e, ok := t.entries[k]
	if ok {
		e.timer.Stop()
		delete(t.entries, k)
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	t.emit(Event{ConversationID: conversationID, UserID: userID, DisplayName: e.displayName, Typing: false})
}

// TypingUsers returns the user ids currently typing in a conversation.
func (t *Tracker) TypingUsers(conversationID string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var users []string
	for k := range t.entries {
		if k.conversationID == conversationID {
			users = append(users, k.userID)
		}
	}
	return users
}

func (t *Tracker) expire(k key) {
	t.mu.Lock()
	e, ok := t.entries[k]
	if ok {
		delete(t.entries, k)
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	t.emit(Event{ConversationID: k.conversationID, UserID: k.userID, DisplayName: e.displayName, Typing: false})
}

func (t *Tracker) emit(e Event) {
	if t.notify != nil {
		t.notify(e)
	}
}
