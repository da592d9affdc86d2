package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis key prefixes for the cross-instance presence mirror
const (
	presenceOnlineSet    = "presence:online"
	presenceLastSeenHash = "presence:last_seen"
)

// PresenceStore mirrors online/offline transitions into Redis so other
// server instances (and ops tooling) can observe presence. The process-local
// registry remains the source of truth for this instance's connections.
type PresenceStore struct {
	client *goredis.Client
}

func NewPresenceStore(client *goredis.Client) *PresenceStore {
	return &PresenceStore{client: client}
}

// SetOnline records a user as online.
func (p *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SAdd(ctx, presenceOnlineSet, userID)
	pipe.HSet(ctx, presenceLastSeenHash, userID, time.Now().UTC().Format(time.RFC3339))
	_, err := pipe.Exec(ctx)
	return err
}

// SetOffline records a user as offline and stamps last_seen.
func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	pipe := p.client.Pipeline()
	pipe.SRem(ctx, presenceOnlineSet, userID)
	pipe.HSet(ctx, presenceLastSeenHash, userID, time.Now().UTC().Format(time.RFC3339))
	_, err := pipe.Exec(ctx)
	return err
}

// IsOnline checks the mirror for a user.
func (p *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	return p.client.SIsMember(ctx, presenceOnlineSet, userID).Result()
}

// GetOnlineUsers returns all user ids currently in the mirror.
func (p *PresenceStore) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}
