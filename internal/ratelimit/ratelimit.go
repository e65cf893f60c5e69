package ratelimit

import (
	"context"
	"strconv"
	"time"

	"todo_bot/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window per-user command limiter backed by Redis
// INCR/EXPIRE. Without a reachable Redis it is fail-open: every call
// is allowed, so the bot never depends on Redis being up.
type Limiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

// New connects to Redis at addr and returns a limiter allowing max
// events per window per user. An empty addr or a failed ping yields a
// disabled (always-allow) limiter.
func New(addr, password string, db, max int, window time.Duration) *Limiter {
	l := &Limiter{max: max, window: window}
	if addr == "" {
		return l
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not reachable, rate limiting disabled", "error", err)
		return l
	}

	l.client = client
	return l
}

// Allow reports whether the user may issue another command in the
// current window. Redis errors fail open.
func (l *Limiter) Allow(ctx context.Context, userID int64) bool {
	if l.client == nil {
		return true
	}

	key := "rl:" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" +
		strconv.FormatInt(userID, 10)

	val, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return true
	}
	if val == 1 {
		l.client.Expire(ctx, key, l.window)
	}
	return val <= int64(l.max)
}
