// Package requestcontext carries request-scoped values from middleware to the
// family services without importing net/http.
package requestcontext

import (
	"context"
	"time"

	id "kinship/pkg/domain"
)

type (
	userIDKey      struct{}
	sessionIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// UserID is the authenticated account, or the nil id for anonymous requests.
func UserID(ctx context.Context) id.UserID {
	v, _ := ctx.Value(userIDKey{}).(id.UserID)
	return v
}

func WithUserID(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func SessionID(ctx context.Context) id.SessionID {
	v, _ := ctx.Value(sessionIDKey{}).(id.SessionID)
	return v
}

func WithSessionID(ctx context.Context, sessionID id.SessionID) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now is the time the request arrived. Matching validates dates of birth
// against it so one request sees one "today". Outside a request (CLI) it is
// the wall clock.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
