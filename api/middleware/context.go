package middleware

import (
	"context"

	"github.com/aurelia-jewels/aurelia-backend/pkg/enums"
	"github.com/aurelia-jewels/aurelia-backend/pkg/types"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxEmail    contextKey = "email"
	ctxName     contextKey = "name"
	ctxAccessID contextKey = "access_id"
)

func stringFromContext(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxRole)
}

func AccessIDFromContext(ctx context.Context) string {
	return stringFromContext(ctx, ctxAccessID)
}

// SessionFromContext rebuilds the caller's session from the values the
// auth middleware seeded.
func SessionFromContext(ctx context.Context) types.UserSession {
	return types.UserSession{
		UserID: stringFromContext(ctx, ctxUserID),
		Name:   stringFromContext(ctx, ctxName),
		Email:  stringFromContext(ctx, ctxEmail),
		Role:   enums.Role(stringFromContext(ctx, ctxRole)),
	}
}

// WithSession injects session values into the context. Used by tests and
// the auth middleware.
func WithSession(ctx context.Context, sess types.UserSession, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, sess.UserID)
	ctx = context.WithValue(ctx, ctxName, sess.Name)
	ctx = context.WithValue(ctx, ctxEmail, sess.Email)
	ctx = context.WithValue(ctx, ctxRole, string(sess.Role))
	return context.WithValue(ctx, ctxAccessID, accessID)
}
