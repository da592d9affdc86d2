package presence

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddRemoveTransitions(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Add("alice", "c1"), "first connection should report online transition")
	assert.False(t, r.Add("alice", "c2"), "second connection is not a transition")
	assert.True(t, r.IsOnline("alice"))
	assert.Equal(t, 2, r.ConnectionCount("alice"))

	assert.False(t, r.Remove("alice", "c1"), "user still has a connection")
	assert.True(t, r.IsOnline("alice"))
	assert.True(t, r.Remove("alice", "c2"), "last connection should report offline transition")
	assert.False(t, r.IsOnline("alice"))
	assert.Equal(t, 0, r.ConnectionCount("alice"))
}

func TestRemoveUnknownConnection(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Remove("ghost", "c1"))

	r.Add("bob", "c1")
	assert.False(t, r.Remove("bob", "other"), "removing a foreign client id must not flip bob offline")
	assert.True(t, r.IsOnline("bob"))
}

func TestOnlineUsersSorted(t *testing.T) {
	r := NewRegistry()
	r.Add("carol", "c1")
	r.Add("alice", "c2")
	r.Add("bob", "c3")

	assert.Equal(t, []string{"alice", "bob", "carol"}, r.OnlineUsers())
}

func TestConcurrentConnects(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clientID := fmt.Sprintf("c%d", i)
			r.Add("alice", clientID)
			r.Remove("alice", clientID)
		}(i)
	}
	wg.Wait()

	assert.False(t, r.IsOnline("alice"))
	assert.Empty(t, r.OnlineUsers())
}
