package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/data/db"
)

// TaskStore implements task.Store using SQLite.
type TaskStore struct {
	db *db.DB
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new SQLite-backed task store.
func NewTaskStore(db *db.DB) *TaskStore {
	return &TaskStore{db: db}
}

// CreateTask persists a new todo task. The ID is assigned by the database
// and is never reused.
func (s *TaskStore) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.Status = task.StatusTodo
	t.CompletedAt = nil
	t.Comment = nil

	id, err := s.db.Queries().CreateTask(ctx, db.CreateTaskParams{
		Description: t.Description,
		Assignee:    t.Assignee,
		Deadline:    t.Deadline.UnixNano(),
		DeadlineTz:  zoneName(t.Deadline),
		CreatedAt:   t.CreatedAt.UnixNano(),
	})
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	t.ID = id
	return t, nil
}

// GetTask returns a task by ID.
func (s *TaskStore) GetTask(ctx context.Context, id int64) (task.Task, error) {
	row, err := s.db.Queries().GetTask(ctx, id)
	if err != nil {
		if IsNotFoundError(err) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return rowToTask(row), nil
}

// ListTasks returns every task ordered by deadline.
func (s *TaskStore) ListTasks(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.Queries().ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return rowsToTasks(rows), nil
}

// ListTasksForIdentity returns the tasks assigned to the handle the identity
// is currently registered with.
func (s *TaskStore) ListTasksForIdentity(ctx context.Context, identity int64) ([]task.Task, error) {
	rows, err := s.db.Queries().ListTasksForUser(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %d: %w", identity, err)
	}
	return rowsToTasks(rows), nil
}

// CompleteTask performs the todo -> done transition. Only one concurrent
// caller can win; the others observe false.
func (s *TaskStore) CompleteTask(ctx context.Context, id int64, comment string, at time.Time) (bool, error) {
	n, err := s.db.Queries().CompleteTask(ctx, db.CompleteTaskParams{
		CompletedAt: sql.NullInt64{Int64: at.UnixNano(), Valid: true},
		Comment:     sql.NullString{String: comment, Valid: true},
		ID:          id,
	})
	if err != nil {
		return false, fmt.Errorf("complete task %d: %w", id, err)
	}
	return n == 1, nil
}

// DeleteTask removes a task and reports whether it existed.
func (s *TaskStore) DeleteTask(ctx context.Context, id int64) (bool, error) {
	n, err := s.db.Queries().DeleteTask(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	return n > 0, nil
}

// SaveUser creates or overwrites the user record for u.Identity.
func (s *TaskStore) SaveUser(ctx context.Context, u task.User) error {
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = time.Now()
	}

	err := s.db.Queries().UpsertUser(ctx, db.UpsertUserParams{
		UserID:       u.Identity,
		Handle:       task.NormalizeHandle(u.Handle),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		RegisteredAt: u.RegisteredAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("save user %d: %w", u.Identity, err)
	}
	return nil
}

// ListUsers returns all registered users ordered by handle.
func (s *TaskStore) ListUsers(ctx context.Context) ([]task.User, error) {
	rows, err := s.db.Queries().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]task.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, rowToUser(row))
	}
	return users, nil
}

// FindUserByHandle returns the most recent registration for the handle.
func (s *TaskStore) FindUserByHandle(ctx context.Context, handle string) (task.User, error) {
	handle = task.NormalizeHandle(handle)
	if handle == "" {
		return task.User{}, task.ErrUserNotFound
	}

	row, err := s.db.Queries().FindUserByHandle(ctx, handle)
	if err != nil {
		if IsNotFoundError(err) {
			return task.User{}, task.ErrUserNotFound
		}
		return task.User{}, fmt.Errorf("find user %q: %w", handle, err)
	}
	return rowToUser(row), nil
}

// TasksDueForReminder returns todo tasks whose deadline falls on the calendar
// day exactly N days after ref's date, for each threshold N. Each result
// carries the threshold that selected it and the resolved recipient.
func (s *TaskStore) TasksDueForReminder(ctx context.Context, ref time.Time, thresholds []int) ([]task.DueTask, error) {
	seen := make(map[int]struct{}, len(thresholds))
	var due []task.DueTask

	for _, days := range thresholds {
		if _, ok := seen[days]; ok {
			continue
		}
		seen[days] = struct{}{}

		start, end := task.DayWindow(ref, days)
		rows, err := s.db.Queries().ListTasksDueBetween(ctx, db.ListTasksDueBetweenParams{
			Start: start.UnixNano(),
			End:   end.UnixNano(),
		})
		if err != nil {
			return nil, fmt.Errorf("tasks due in %d days: %w", days, err)
		}

		for _, row := range rows {
			dt := task.DueTask{
				Task: rowToTask(db.Task{
					ID:          row.ID,
					Description: row.Description,
					Assignee:    row.Assignee,
					Deadline:    row.Deadline,
					DeadlineTz:  row.DeadlineTz,
					Status:      row.Status,
					CreatedAt:   row.CreatedAt,
					CompletedAt: row.CompletedAt,
					Comment:     row.Comment,
				}),
				Threshold: days,
			}
			if row.RecipientID.Valid {
				id := row.RecipientID.Int64
				dt.Recipient = &id
			}
			due = append(due, dt)
		}
	}

	return due, nil
}
