package session

import (
	"context"

	"github.com/dom/game-review-catalog/internal/domain"
	"github.com/google/uuid"
)

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext returns the session attached to ctx, if any.
func FromContext(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*domain.Session)
	return sess, ok && sess != nil
}

// UserID returns the identity of the session attached to ctx.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	sess, ok := FromContext(ctx)
	if !ok || sess.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return sess.UserID, true
}

// AccessToken returns the backend access token of the session attached to
// ctx, or "" for anonymous requests.
func AccessToken(ctx context.Context) string {
	if sess, ok := FromContext(ctx); ok {
		return sess.AccessToken
	}
	return ""
}
