// Package kv defines the durable JSON key-value store behind conversation
// state and the reminder ledger.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get for keys that are absent or expired.
var ErrNotFound = errors.New("key not found")

// KV stores JSON values under string keys. A ttl of zero never expires.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Put(ctx context.Context, key string, value any, ttl time.Duration) error
	// PutIfAbsent writes value only when key is absent or expired and
	// reports whether it did.
	PutIfAbsent(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	// Keys returns the live keys starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// IsMissing reports whether err means the key was absent.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Bucket is a typed view of a KV store confined to one namespace. Keys
// passed to a Bucket are stored as "namespace:key".
type Bucket[T any] struct {
	store  KV
	prefix string
}

// NewBucket returns a Bucket over store for namespace.
func NewBucket[T any](store KV, namespace string) *Bucket[T] {
	return &Bucket[T]{store: store, prefix: namespace + ":"}
}

func (b *Bucket[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	err := b.store.Get(ctx, b.prefix+key, &v)
	return v, err
}

func (b *Bucket[T]) Put(ctx context.Context, key string, value T, ttl time.Duration) error {
	return b.store.Put(ctx, b.prefix+key, value, ttl)
}

// Claim stores value only if key is not already held.
func (b *Bucket[T]) Claim(ctx context.Context, key string, value T, ttl time.Duration) (bool, error) {
	return b.store.PutIfAbsent(ctx, b.prefix+key, value, ttl)
}

func (b *Bucket[T]) Delete(ctx context.Context, key string) error {
	return b.store.Delete(ctx, b.prefix+key)
}

// Keys returns the live keys in the namespace with the prefix removed.
func (b *Bucket[T]) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.store.Keys(ctx, b.prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = k[len(b.prefix):]
	}
	return keys, nil
}
