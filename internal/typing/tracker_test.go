package typing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func TestStartStop(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(time.Minute, rec.notify)

	tr.Start("conv1", "alice", "Alice")
	assert.Equal(t, []string{"alice"}, tr.TypingUsers("conv1"))

	tr.Stop("conv1", "alice")
	assert.Empty(t, tr.TypingUsers("conv1"))

	events := rec.all()
	require.Len(t, events, 2)
	assert.True(t, events[0].Typing)
	assert.False(t, events[1].Typing)
	assert.Equal(t, "Alice", events[1].DisplayName)
}

func TestStopIdleIsSilent(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(time.Minute, rec.notify)

	tr.Stop("conv1", "alice")
	assert.Empty(t, rec.all())
}

func TestExpiry(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(20*time.Millisecond, rec.notify)

	tr.Start("conv1", "alice", "Alice")

	assert.Eventually(t, func() bool {
		return len(tr.TypingUsers("conv1")) == 0
	}, time.Second, 5*time.Millisecond)

	events := rec.all()
	require.Len(t, events, 2)
	assert.False(t, events[1].Typing, "expiry should emit an indicator-cleared event")
}

func TestStartResetsExpiry(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(50*time.Millisecond, rec.notify)

	tr.Start("conv1", "alice", "Alice")
	time.Sleep(30 * time.Millisecond)
	tr.Start("conv1", "alice", "Alice")
	time.Sleep(30 * time.Millisecond)

	// 60ms after the first start, but only 30ms after the second.
	assert.Equal(t, []string{"alice"}, tr.TypingUsers("conv1"))
}

func TestStopAfterExpiryDoesNotDoubleEmit(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(10*time.Millisecond, rec.notify)

	tr.Start("conv1", "alice", "Alice")
	assert.Eventually(t, func() bool {
		return len(tr.TypingUsers("conv1")) == 0
	}, time.Second, 5*time.Millisecond)

	tr.Stop("conv1", "alice")
	assert.Len(t, rec.all(), 2)
}

func TestIndependentConversations(t *testing.T) {
	rec := &recorder{}
	tr := NewTracker(time.Minute, rec.notify)

	tr.Start("conv1", "alice", "Alice")
	tr.Start("conv2", "alice", "Alice")
	tr.Stop("conv1", "alice")

	assert.Empty(t, tr.TypingUsers("conv1"))
	assert.Equal(t, []string{"alice"}, tr.TypingUsers("conv2"))
}
