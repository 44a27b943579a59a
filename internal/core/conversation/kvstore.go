package conversation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hay-kot/taskbot/internal/core/kv"
)

// Namespace is the KV key prefix used for persisted conversations.
const Namespace = "conversation"

// KVStore persists conversations in the shared KV store so an in-flight
// dialog survives a restart.
type KVStore struct {
	bucket *kv.Bucket[Conversation]
}

var _ Store = (*KVStore)(nil)

func NewKVStore(store kv.KV) *KVStore {
	return &KVStore{bucket: kv.NewBucket[Conversation](store, Namespace)}
}

func (s *KVStore) Get(ctx context.Context, identity int64) (Conversation, error) {
	c, err := s.bucket.Get(ctx, key(identity))
	if err != nil {
		if kv.IsMissing(err) {
			return Idle(), nil
		}
		return Conversation{}, fmt.Errorf("load conversation %d: %w", identity, err)
	}
	return c, nil
}

func (s *KVStore) Save(ctx context.Context, identity int64, c Conversation) error {
	if c.State == StateIdle {
		return s.Clear(ctx, identity)
	}
	if err := s.bucket.Put(ctx, key(identity), c, 0); err != nil {
		return fmt.Errorf("save conversation %d: %w", identity, err)
	}
	return nil
}

func (s *KVStore) Clear(ctx context.Context, identity int64) error {
	if err := s.bucket.Delete(ctx, key(identity)); err != nil {
		return fmt.Errorf("clear conversation %d: %w", identity, err)
	}
	return nil
}

func key(identity int64) string {
	return strconv.FormatInt(identity, 10)
}
