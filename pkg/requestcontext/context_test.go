package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	id "kinship/pkg/domain"
)

func TestAccessors(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserID(ctx).IsNil())
	assert.True(t, SessionID(ctx).IsNil())
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)

	userID := id.UserID(uuid.New())
	sessionID := id.SessionID(uuid.New())
	at := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	ctx = WithUserID(ctx, userID)
	ctx = WithSessionID(ctx, sessionID)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, at)

	assert.Equal(t, userID, UserID(ctx))
	assert.Equal(t, sessionID, SessionID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, at, Now(ctx))
}
