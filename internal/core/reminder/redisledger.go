package reminder

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces claims inside a shared Redis database.
const DefaultKeyPrefix = "taskbot:reminder:"

// RedisLedger stores claims in Redis so several bot instances share one
// watermark.
type RedisLedger struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ Ledger = (*RedisLedger)(nil)

// NewRedisLedger creates a ledger using the given client. Empty prefix and
// non-positive ttl fall back to the defaults.
func NewRedisLedger(client redis.Cmdable, prefix string, ttl time.Duration) *RedisLedger {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLedger{client: client, prefix: prefix, ttl: ttl}
}

func (l *RedisLedger) key(k Key) string {
	return l.prefix + k.String()
}

func (l *RedisLedger) Claim(ctx context.Context, key Key) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key(key), time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim reminder %s: %w", key, err)
	}
	return ok, nil
}

func (l *RedisLedger) Release(ctx context.Context, key Key) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("release reminder %s: %w", key, err)
	}
	return nil
}

func (l *RedisLedger) Claimed(ctx context.Context) ([]string, error) {
	var keys []string
	iter := l.client.Scan(ctx, 0, l.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), l.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list reminder claims: %w", err)
	}

	slices.Sort(keys)
	return keys, nil
}
