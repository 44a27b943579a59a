package task

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("task not found")
	// ErrAlreadyDone is returned when completing a task that is no longer todo.
	ErrAlreadyDone = errors.New("task already done")
	// ErrInvalidDeadline is returned when a deadline is not in the future.
	ErrInvalidDeadline = errors.New("deadline must be in the future")
	// ErrInvalidFormat is returned when task input cannot be interpreted.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrUserNotFound is returned when no registered user owns a handle.
	ErrUserNotFound = errors.New("user not found")
)

// Store defines the interface for task and user persistence.
//
// Every method is atomic on its own. Callers must not assume that two calls
// observe the same snapshot.
type Store interface {
	// CreateTask persists a new task and returns it with its assigned ID.
	CreateTask(ctx context.Context, t Task) (Task, error)

	// GetTask returns a task by ID. Returns ErrNotFound if it does not exist.
	GetTask(ctx context.Context, id int64) (Task, error)

	// ListTasks returns all tasks ordered by deadline.
	ListTasks(ctx context.Context) ([]Task, error)

	// ListTasksForIdentity returns the tasks whose assignee handle currently
	// belongs to the given identity, ordered by deadline.
	ListTasksForIdentity(ctx context.Context, identity int64) ([]Task, error)

	// CompleteTask marks a todo task as done with the given comment. It
	// reports false when no todo task with that ID exists.
	CompleteTask(ctx context.Context, id int64, comment string, at time.Time) (bool, error)

	// DeleteTask removes a task. It reports false when the task did not exist.
	DeleteTask(ctx context.Context, id int64) (bool, error)

	// SaveUser creates or overwrites the user record for u.Identity.
	SaveUser(ctx context.Context, u User) error

	// ListUsers returns all registered users ordered by registration time.
	ListUsers(ctx context.Context) ([]User, error)

	// FindUserByHandle returns the user currently owning the handle.
	// Returns ErrUserNotFound if nobody does.
	FindUserByHandle(ctx context.Context, handle string) (User, error)

	// TasksDueForReminder returns todo tasks whose deadline date is exactly
	// one of the threshold day counts after ref's date, in ref's location.
	TasksDueForReminder(ctx context.Context, ref time.Time, thresholds []int) ([]DueTask, error)
}
