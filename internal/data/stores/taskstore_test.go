package stores

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var moscow = mustZone("Europe/Moscow")

func mustZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func newTestTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	return NewTaskStore(newTestDB(t))
}

func createTask(t *testing.T, store *TaskStore, assignee string, deadline time.Time) task.Task {
	t.Helper()
	created, err := store.CreateTask(context.Background(), task.Task{
		Description: "task for " + assignee,
		Assignee:    task.NormalizeHandle(assignee),
		Deadline:    deadline,
		CreatedAt:   deadline.Add(-30 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return created
}

func TestTaskStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	deadline := time.Date(2030, 12, 31, 18, 0, 0, 0, moscow)
	first := createTask(t, store, "alice", deadline)
	second := createTask(t, store, "alice", deadline)
	assert.Greater(t, second.ID, first.ID, "ids are monotonic")

	got, err := store.GetTask(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusTodo, got.Status)
	assert.Equal(t, "alice", got.Assignee)
	assert.True(t, deadline.Equal(got.Deadline))
	assert.Equal(t, "Europe/Moscow", got.Deadline.Location().String())
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.Comment)
}

func TestTaskStore_GetNotFound(t *testing.T) {
	store := newTestTaskStore(t)

	_, err := store.GetTask(context.Background(), 999)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskStore_IDsNotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	deadline := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	first := createTask(t, store, "bob", deadline)

	ok, err := store.DeleteTask(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, ok)

	next := createTask(t, store, "bob", deadline)
	assert.Greater(t, next.ID, first.ID)
}

func TestTaskStore_CompleteTask(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	created := createTask(t, store, "bob", time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))
	at := time.Date(2029, 12, 30, 12, 0, 0, 0, time.UTC)

	ok, err := store.CompleteTask(ctx, created.ID, "done and dusted", at)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusDone, got.Status)
	require.NotNil(t, got.Comment)
	assert.Equal(t, "done and dusted", *got.Comment)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, at.Equal(*got.CompletedAt))

	ok, err = store.CompleteTask(ctx, created.ID, "again", at.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok, "second completion must not apply")

	got, err = store.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "done and dusted", *got.Comment, "fields are set once")
	assert.True(t, at.Equal(*got.CompletedAt))
}

func TestTaskStore_CompleteMissing(t *testing.T) {
	store := newTestTaskStore(t)

	ok, err := store.CompleteTask(context.Background(), 42, "x", time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskStore_ConcurrentCompletion(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	created := createTask(t, store, "bob", time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.CompleteTask(ctx, created.ID, "mine", time.Now())
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load(), "exactly one completion wins")
}

func TestTaskStore_DeleteTwice(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	created := createTask(t, store, "bob", time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC))

	ok, err := store.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.DeleteTask(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskStore_Users(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	t.Run("handle lookup ignores at sign and case", func(t *testing.T) {
		require.NoError(t, store.SaveUser(ctx, task.User{Identity: 100, Handle: "@Bob", FirstName: "Bob"}))

		u, err := store.FindUserByHandle(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(100), u.Identity)
		assert.Equal(t, "bob", u.Handle)

		u, err = store.FindUserByHandle(ctx, "@BOB")
		require.NoError(t, err)
		assert.Equal(t, int64(100), u.Identity)
	})

	t.Run("re-registration overwrites", func(t *testing.T) {
		require.NoError(t, store.SaveUser(ctx, task.User{Identity: 100, Handle: "robert", FirstName: "Robert"}))

		_, err := store.FindUserByHandle(ctx, "bob")
		assert.ErrorIs(t, err, task.ErrUserNotFound)

		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "Robert", users[0].FirstName)
	})

	t.Run("unknown handle", func(t *testing.T) {
		_, err := store.FindUserByHandle(ctx, "nobody")
		assert.ErrorIs(t, err, task.ErrUserNotFound)

		_, err = store.FindUserByHandle(ctx, "  ")
		assert.ErrorIs(t, err, task.ErrUserNotFound)
	})
}

func TestTaskStore_ListTasksForIdentity_LateRegistration(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	deadline := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	later := createTask(t, store, "carol", deadline.Add(24*time.Hour))
	sooner := createTask(t, store, "@Carol", deadline)
	createTask(t, store, "dave", deadline)

	tasks, err := store.ListTasksForIdentity(ctx, 300)
	require.NoError(t, err)
	assert.Empty(t, tasks, "unregistered identity owns nothing")

	require.NoError(t, store.SaveUser(ctx, task.User{Identity: 300, Handle: "carol"}))

	tasks, err = store.ListTasksForIdentity(ctx, 300)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, sooner.ID, tasks[0].ID, "ordered by deadline")
	assert.Equal(t, later.ID, tasks[1].ID)
}

func TestTaskStore_TasksDueForReminder(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	ref := time.Date(2030, 6, 10, 9, 0, 0, 0, moscow)
	at := func(days, hour int) time.Time {
		return time.Date(2030, 6, 10+days, hour, 30, 0, 0, moscow)
	}

	require.NoError(t, store.SaveUser(ctx, task.User{Identity: 1, Handle: "bob"}))

	in7 := createTask(t, store, "bob", at(7, 23))
	in1 := createTask(t, store, "bob", at(1, 0))
	createTask(t, store, "bob", at(2, 12))
	createTask(t, store, "bob", at(6, 12))
	done := createTask(t, store, "bob", at(7, 10))
	unresolved := createTask(t, store, "ghost", at(1, 12))

	ok, err := store.CompleteTask(ctx, done.ID, "early", ref)
	require.NoError(t, err)
	require.True(t, ok)

	due, err := store.TasksDueForReminder(ctx, ref, []int{7, 1, 7})
	require.NoError(t, err)

	byID := map[int64]task.DueTask{}
	for _, d := range due {
		byID[d.ID] = d
	}

	require.Len(t, byID, 3, "only 7 and 1 day tasks that are still todo")
	assert.Len(t, due, 3, "duplicate thresholds are ignored")

	assert.Equal(t, 7, byID[in7.ID].Threshold)
	require.NotNil(t, byID[in7.ID].Recipient)
	assert.Equal(t, int64(1), *byID[in7.ID].Recipient)

	assert.Equal(t, 1, byID[in1.ID].Threshold)

	assert.Equal(t, 1, byID[unresolved.ID].Threshold)
	assert.Nil(t, byID[unresolved.ID].Recipient)

	_, hasDone := byID[done.ID]
	assert.False(t, hasDone)
}

func TestTaskStore_TasksDueForReminder_ZoneBoundary(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	// 22:30 UTC on the 16th is already the 17th in Moscow.
	ref := time.Date(2030, 6, 10, 9, 0, 0, 0, moscow)
	deadline := time.Date(2030, 6, 16, 22, 30, 0, 0, time.UTC)
	created := createTask(t, store, "bob", deadline)

	due, err := store.TasksDueForReminder(ctx, ref, []int{7})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, created.ID, due[0].ID)

	due, err = store.TasksDueForReminder(ctx, ref, []int{6})
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestTaskStore_OffsetDeadlineRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	deadline, err := time.Parse(time.RFC3339, "2030-12-08T01:00:00+14:00")
	require.NoError(t, err)
	created := createTask(t, store, "bob", deadline)

	got, err := store.GetTask(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deadline.Equal(got.Deadline))

	_, offset := got.Deadline.Zone()
	assert.Equal(t, 14*3600, offset)
	assert.Equal(t, 8, got.Deadline.Day(), "wall clock date is kept")

	west := createTask(t, store, "bob", time.Date(2030, 12, 8, 1, 0, 0, 0, time.FixedZone("", -(9*3600+30*60))))
	got, err = store.GetTask(ctx, west.ID)
	require.NoError(t, err)
	_, offset = got.Deadline.Zone()
	assert.Equal(t, -(9*3600 + 30*60), offset)
}

func TestZoneName(t *testing.T) {
	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{name: "named", loc: moscow, want: "Europe/Moscow"},
		{name: "utc", loc: time.UTC, want: "UTC"},
		{name: "east", loc: time.FixedZone("", 14*3600), want: "+14:00"},
		{name: "west", loc: time.FixedZone("", -(3*3600 + 30*60)), want: "-03:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2030, 1, 1, 0, 0, 0, 0, tt.loc)
			assert.Equal(t, tt.want, zoneName(at))

			_, want := at.Zone()
			_, got := at.In(loadZone(tt.want)).Zone()
			assert.Equal(t, want, got)
		})
	}
}

func TestTaskStore_TasksDueForReminder_LatestRegistrationWins(t *testing.T) {
	ctx := context.Background()
	store := newTestTaskStore(t)

	ref := time.Date(2030, 6, 10, 9, 0, 0, 0, moscow)
	created := createTask(t, store, "erin", time.Date(2030, 6, 11, 12, 0, 0, 0, moscow))

	first := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveUser(ctx, task.User{Identity: 10, Handle: "erin", RegisteredAt: first}))
	require.NoError(t, store.SaveUser(ctx, task.User{Identity: 20, Handle: "erin", RegisteredAt: first.Add(time.Hour)}))

	due, err := store.TasksDueForReminder(ctx, ref, []int{1})
	require.NoError(t, err)
	require.Len(t, due, 1, "one row per task regardless of registrations")
	assert.Equal(t, created.ID, due[0].ID)
	require.NotNil(t, due[0].Recipient)
	assert.Equal(t, int64(20), *due[0].Recipient)
}
