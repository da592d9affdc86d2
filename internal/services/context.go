package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	userIDContextKey      contextKey = "auth.user_id"
	displayNameContextKey contextKey = "auth.display_name"
)

// WithUserContext stamps the authenticated identity onto the context.
func WithUserContext(ctx context.Context, userID uuid.UUID, displayName string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, displayNameContextKey, displayName)
}

// UserIDFromContext extracts the authenticated user id, if present.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}

// DisplayNameFromContext extracts the authenticated display name, if present.
func DisplayNameFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(displayNameContextKey).(string)
	return name, ok
}
