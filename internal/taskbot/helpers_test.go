package taskbot

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/data/db"
	"github.com/hay-kot/taskbot/internal/data/stores"
)

var testNow = time.Date(2030, 12, 1, 10, 0, 0, 0, time.UTC)

type harness struct {
	db    *db.DB
	store *stores.TaskStore
	tasks *TaskService
	flow  *CompletionFlow
	bus   *testbus.Bus
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return database
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database := openTestDB(t)
	store := stores.NewTaskStore(database)
	tb := testbus.New(t)

	tasks := NewTaskService(store, tb.EventBus, zerolog.Nop())
	tasks.now = func() time.Time { return testNow }

	flow := NewCompletionFlow(tasks, conversation.NewMemoryStore(), zerolog.Nop())

	return &harness{
		db:    database,
		store: store,
		tasks: tasks,
		flow:  flow,
		bus:   tb,
	}
}

func (h *harness) register(t *testing.T, identity int64, handle string) task.User {
	t.Helper()

	u, err := h.tasks.Register(context.Background(), task.User{Identity: identity, Handle: handle})
	require.NoError(t, err)
	return u
}

func (h *harness) create(t *testing.T, assignee string, in time.Duration) task.Task {
	t.Helper()

	created, err := h.tasks.Create(context.Background(), 1, "task for "+assignee, assignee, testNow.Add(in))
	require.NoError(t, err)
	return created
}

func mustZone(t *testing.T, name string) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}
