package conversation

import (
	"context"

	"github.com/hay-kot/taskbot/pkg/kv"
)

// MemoryStore keeps conversations in process memory. State is lost on restart.
type MemoryStore struct {
	data *kv.Store[int64, Conversation]
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: kv.New[int64, Conversation]()}
}

func (m *MemoryStore) Get(_ context.Context, identity int64) (Conversation, error) {
	c, ok := m.data.Get(identity)
	if !ok {
		return Idle(), nil
	}
	return c, nil
}

func (m *MemoryStore) Save(_ context.Context, identity int64, c Conversation) error {
	if c.State == StateIdle {
		m.data.Delete(identity)
		return nil
	}
	m.data.Set(identity, c)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, identity int64) error {
	m.data.Delete(identity)
	return nil
}
