package gatewayhttp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle tracks failed /token attempts per client IP, the
// Redis-backed equivalent of la2go LoginServer's in-memory FloodProtector
// (SPEC_FULL.md supplemented feature: "config-driven flood/connection
// protection").
type LoginThrottle struct {
	rdb          *redis.Client
	tryBeforeBan int
	blockAfter   time.Duration
}

// NewLoginThrottle builds a LoginThrottle. tryBeforeBan and blockAfter
// come from config.Gateway.LoginTryBeforeBan / LoginBlockAfterBan.
func NewLoginThrottle(rdb *redis.Client, tryBeforeBan int, blockAfter time.Duration) *LoginThrottle {
	return &LoginThrottle{rdb: rdb, tryBeforeBan: tryBeforeBan, blockAfter: blockAfter}
}

func throttleKey(ip string) string {
	return fmt.Sprintf("gateway:login:fail:%s", ip)
}

// Blocked reports whether ip has exceeded its failed-attempt budget.
func (t *LoginThrottle) Blocked(ctx context.Context, ip string) (bool, error) {
	count, err := t.rdb.Get(ctx, throttleKey(ip)).Int()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("checking login throttle for %s: %w", ip, err)
	}
	return count >= t.tryBeforeBan, nil
}

// RecordFailure increments ip's failed-attempt counter, arming a TTL on
// the first failure so the ban window expires on its own.
func (t *LoginThrottle) RecordFailure(ctx context.Context, ip string) error {
	key := throttleKey(ip)
	pipe := t.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.blockAfter)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recording login failure for %s: %w", ip, err)
	}
	return nil
}

// Reset clears ip's failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, ip string) error {
	if err := t.rdb.Del(ctx, throttleKey(ip)).Err(); err != nil {
		return fmt.Errorf("resetting login throttle for %s: %w", ip, err)
	}
	return nil
}
