package core

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles login attempts with fixed-window counters in
// redis, keyed per username and per client IP. A nil limiter (or a nil
// client) disables throttling.
//
// On redis outage the limiter fails open with a log line: throttling is a
// hardening layer on the front door, not an authorization control, and
// the service keeps serving when redis degrades.
type LoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(client *redis.Client, cfg Config) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxAttempts: cfg.LoginMaxAttempts,
		window:      cfg.LoginWindow,
	}
}

// Allow records one attempt for username/ip and reports whether the
// caller is still within budget.
func (l *LoginLimiter) Allow(ctx context.Context, username, ip string) bool {
	if l == nil || l.redis == nil || l.maxAttempts <= 0 {
		return true
	}
	if username != "" && !l.allowKey(ctx, "login:user:"+username) {
		return false
	}
	if ip != "" && !l.allowKey(ctx, "login:ip:"+ip) {
		return false
	}
	return true
}

func (l *LoginLimiter) allowKey(ctx context.Context, key string) bool {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("login limiter unavailable, allowing %s: %v", key, err)
		return true
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("login limiter expire failed for %s: %v", key, err)
		}
	}
	return count <= int64(l.maxAttempts)
}
