package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "userhub/pkg/domain-errors"
)

// LoginLimiter throttles credential-guessing by counting attempts per email
// and per client IP in fixed windows. It fails open: when Redis is
// unavailable or not configured, requests are allowed and the failure is
// logged, since locking every user out is worse than briefly losing the
// throttle.
type LoginLimiter struct {
	rdb         redis.Cmdable
	maxAttempts int
	window      time.Duration
	logger      *slog.Logger
}

func NewLoginLimiter(rdb redis.Cmdable, maxAttempts int, window time.Duration, logger *slog.Logger) *LoginLimiter {
	return &LoginLimiter{
		rdb:         rdb,
		maxAttempts: maxAttempts,
		window:      window,
		logger:      logger,
	}
}

// Allow records one attempt for the given email and IP and returns a
// rate_limited domain error once either key exceeds the window budget.
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) error {
	if l == nil || l.rdb == nil {
		return nil
	}

	if email != "" {
		if err := l.enforceKey(ctx, emailKey(email)); err != nil {
			return err
		}
	}
	if ip != "" {
		if err := l.enforceKey(ctx, ipKey(ip)); err != nil {
			return err
		}
	}
	return nil
}

func (l *LoginLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.logger.WarnContext(ctx, "login limiter unavailable, failing open", "error", err)
		return nil
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.WarnContext(ctx, "login limiter expire failed", "error", err, "key", key)
		}
	}

	if count > int64(l.maxAttempts) {
		return dErrors.New(dErrors.CodeRateLimited, "too many attempts, try again later")
	}
	return nil
}

func emailKey(email string) string {
	return fmt.Sprintf("userhub:login:email:%s", strings.ToLower(email))
}

func ipKey(ip string) string {
	return fmt.Sprintf("userhub:login:ip:%s", ip)
}
