package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hay-kot/taskbot/internal/core/kv"
	"github.com/hay-kot/taskbot/internal/data/db"
)

// KVStore implements kv.KV on the kv_store table. Expiry is enforced at read
// time; SweepExpired reclaims the rows.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var _ kv.KV = (*KVStore)(nil)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(db *db.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	row, err := s.db.Queries().KVGet(ctx, db.KVGetParams{Key: key, Now: nullNanos(s.now())})
	if err != nil {
		if IsNotFoundError(err) {
			return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
		}
		return fmt.Errorf("kv get %q: %w", key, err)
	}

	if err := json.Unmarshal(row.Value, dest); err != nil {
		return fmt.Errorf("kv get %q: decode: %w", key, err)
	}
	return nil
}

func (s *KVStore) Put(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv put %q: encode: %w", key, err)
	}

	now := s.now()
	err = s.db.Queries().KVPut(ctx, db.KVPutParams{
		Key:       key,
		Value:     data,
		ExpiresAt: expiry(now, ttl),
		CreatedAt: now.UnixNano(),
		UpdatedAt: now.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("kv put %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) PutIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("kv claim %q: encode: %w", key, err)
	}

	now := s.now()
	n, err := s.db.Queries().KVPutIfAbsent(ctx, db.KVPutIfAbsentParams{
		Key:       key,
		Value:     data,
		ExpiresAt: expiry(now, ttl),
		Now:       now.UnixNano(),
	})
	if err != nil {
		return false, fmt.Errorf("kv claim %q: %w", key, err)
	}
	return n > 0, nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.db.Queries().KVListKeys(ctx, db.KVListKeysParams{
		Prefix: prefix,
		Now:    nullNanos(s.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("kv keys %q: %w", prefix, err)
	}
	return keys, nil
}

// SweepExpired deletes entries whose TTL has passed and returns how many
// were removed.
func (s *KVStore) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.db.Queries().KVSweepExpired(ctx, nullNanos(s.now()))
	if err != nil {
		return 0, fmt.Errorf("kv sweep: %w", err)
	}
	return n, nil
}

func expiry(now time.Time, ttl time.Duration) sql.NullInt64 {
	if ttl <= 0 {
		return sql.NullInt64{}
	}
	return nullNanos(now.Add(ttl))
}

func nullNanos(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}
