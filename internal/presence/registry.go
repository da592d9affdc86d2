package presence

import (
	"sort"
	"sync"
)

// Registry tracks which users have active connections in this process.
// Connections are reference-counted per user: a user with two tabs open stays
// online until the last one disconnects.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]map[string]struct{} // userID -> set of client IDs
}

func NewRegistry() *Registry {
	return &Registry{
		connections: make(map[string]map[string]struct{}),
	}
}

// Add registers a connection for a user and reports whether this was the
// user's first active connection (the online transition).
func (r *Registry) Add(userID, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		set = make(map[string]struct{})
		r.connections[userID] = set
	}
	set[clientID] = struct{}{}
	return !ok
}

// Remove deregisters a connection and reports whether it was the user's last
// one (the offline transition). Unknown connections are a no-op.
func (r *Registry) Remove(userID, clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.connections[userID]
	if !ok {
		return false
	}
	delete(set, clientID)
	if len(set) == 0 {
		delete(r.connections, userID)
		return true
	}
	return false
}

// IsOnline reports whether the user has at least one active connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[userID]) > 0
}

// OnlineUsers returns the ids of all currently online users, sorted for
// stable payloads.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.connections))
	for userID := range r.connections {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// ConnectionCount returns the number of active connections for a user.
func (r *Registry) ConnectionCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections[userID])
}
