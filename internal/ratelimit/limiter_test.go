package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/internal/platform/logger"
	dErrors "userhub/pkg/domain-errors"
)

func newTestLimiter(t *testing.T, max int, window time.Duration) (*LoginLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewLoginLimiter(rdb, max, window, logger.New()), mr
}

func TestLoginLimiter_AllowsUnderBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.NoError(t, l.Allow(ctx, "a@x.com", "10.0.0.1"))
	}
}

func TestLoginLimiter_RejectsOverBudget(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "a@x.com", "10.0.0.1"))
	}
	err := l.Allow(ctx, "a@x.com", "10.0.0.1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRateLimited))
}

func TestLoginLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "a@x.com", "10.0.0.1"))
	require.NoError(t, l.Allow(ctx, "a@x.com", "10.0.0.1"))
	require.Error(t, l.Allow(ctx, "a@x.com", "10.0.0.1"))

	// different email and IP is unaffected
	assert.NoError(t, l.Allow(ctx, "b@x.com", "10.0.0.2"))
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "a@x.com", ""))
	require.Error(t, l.Allow(ctx, "a@x.com", ""))

	mr.FastForward(2 * time.Minute)
	assert.NoError(t, l.Allow(ctx, "a@x.com", ""))
}

func TestLoginLimiter_NilLimiterAllows(t *testing.T) {
	var l *LoginLimiter
	assert.NoError(t, l.Allow(context.Background(), "a@x.com", "10.0.0.1"))
}

func TestLoginLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	assert.NoError(t, l.Allow(context.Background(), "a@x.com", "10.0.0.1"))
}
