package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/taskbot/internal/core/kv"
)

// Namespace is the KV key prefix used for claims.
const Namespace = "reminder"

// claim is the value stored for each key.
type claim struct {
	ClaimedAt time.Time `json:"claimed_at"`
}

// KVLedger stores claims in the shared KV store.
type KVLedger struct {
	claims *kv.Bucket[claim]
	ttl    time.Duration
}

var _ Ledger = (*KVLedger)(nil)

// NewKVLedger creates a ledger over store. A non-positive ttl uses DefaultTTL.
func NewKVLedger(store kv.KV, ttl time.Duration) *KVLedger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &KVLedger{
		claims: kv.NewBucket[claim](store, Namespace),
		ttl:    ttl,
	}
}

func (l *KVLedger) Claim(ctx context.Context, key Key) (bool, error) {
	ok, err := l.claims.Claim(ctx, key.String(), claim{ClaimedAt: time.Now()}, l.ttl)
	if err != nil {
		return false, fmt.Errorf("claim reminder %s: %w", key, err)
	}
	return ok, nil
}

func (l *KVLedger) Release(ctx context.Context, key Key) error {
	if err := l.claims.Delete(ctx, key.String()); err != nil {
		return fmt.Errorf("release reminder %s: %w", key, err)
	}
	return nil
}

func (l *KVLedger) Claimed(ctx context.Context) ([]string, error) {
	keys, err := l.claims.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reminder claims: %w", err)
	}
	return keys, nil
}
