package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"chatsync/internal/config"
	"chatsync/internal/domain/user"
	chatsync_errors "chatsync/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, chatsync_errors.ErrNotFound
	}
	return *u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return user.User{}, chatsync_errors.ErrNotFound
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeUserRepo, user.User) {
	t.Helper()
	repo := newFakeUserRepo()
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTL = time.Hour

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	u := user.User{
		ID:           uuid.New(),
		Username:     "alice",
		DisplayName:  "Alice",
		PasswordHash: string(hash),
	}
	require.NoError(t, repo.Create(context.Background(), &u))

	return NewAuthService(repo, cfg), repo, u
}

func TestLoginIssuesParsableToken(t *testing.T) {
	svc, _, u := newAuthFixture(t)

	res, err := svc.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), res.User.ID)
	assert.NotEmpty(t, res.AccessToken)

	claims, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, "Alice", claims.DisplayName)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "mallory", "anything")
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)
}

func TestParseRejectsGarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)
}

func TestParseRejectsTokenSignedWithOtherSecret(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	otherCfg := &config.Config{}
	otherCfg.Auth.JWTSecret = "other-secret"
	otherCfg.Auth.AccessTokenTTL = time.Hour
	other := NewAuthService(repo, otherCfg)

	res, err := other.Login(context.Background(), "alice", "correct horse")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(res.AccessToken)
	assert.ErrorIs(t, err, chatsync_errors.ErrUnauthorized)
}
