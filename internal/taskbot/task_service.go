package taskbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/logging"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/core/validate"
)

// TaskService wraps task.Store with the task transition rules and event
// publishing. It performs no permission checks; callers at the interaction
// boundary do that.
type TaskService struct {
	store task.Store
	bus   *eventbus.EventBus
	log   zerolog.Logger
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(store task.Store, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	return &TaskService{
		store: store,
		bus:   bus,
		log:   logging.Sub(log, "task-service"),
		now:   time.Now,
	}
}

// Create validates and stores a new todo task assigned to a handle.
func (s *TaskService) Create(ctx context.Context, by int64, description, assignee string, deadline time.Time) (task.Task, error) {
	if strings.TrimSpace(assignee) != "" {
		if err := validate.Handle(assignee); err != nil {
			return task.Task{}, fmt.Errorf("%w: %w", task.ErrInvalidFormat, err)
		}
	}

	t, err := task.NewTask(description, assignee, deadline, s.now())
	if err != nil {
		return task.Task{}, err
	}

	created, err := s.store.CreateTask(ctx, t)
	if err != nil {
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	s.log.Info().
		Int64("task_id", created.ID).
		Str("assignee", created.Assignee).
		Time("deadline", created.Deadline).
		Msg("task created")

	s.bus.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: created, By: by})

	return created, nil
}

// Get returns a task by ID.
func (s *TaskService) Get(ctx context.Context, id int64) (task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// List returns every task ordered by deadline.
func (s *TaskService) List(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListFor returns all tasks currently assigned to identity, any status.
func (s *TaskService) ListFor(ctx context.Context, identity int64) ([]task.Task, error) {
	tasks, err := s.store.ListTasksForIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %d: %w", identity, err)
	}
	return tasks, nil
}

// Pending returns the todo tasks currently assigned to identity.
func (s *TaskService) Pending(ctx context.Context, identity int64) ([]task.Task, error) {
	tasks, err := s.ListFor(ctx, identity)
	if err != nil {
		return nil, err
	}
	return task.FilterStatus(tasks, task.StatusTodo), nil
}

// Complete moves a todo task to done with the given comment. The write is
// conditional on the task still being todo, so concurrent callers get exactly
// one success; the others see task.ErrAlreadyDone.
func (s *TaskService) Complete(ctx context.Context, by, id int64, comment string) (task.Task, error) {
	if err := validate.Comment(comment); err != nil {
		return task.Task{}, fmt.Errorf("%w: %w", task.ErrInvalidFormat, err)
	}
	comment = strings.TrimSpace(comment)

	ok, err := s.store.CompleteTask(ctx, id, comment, s.now())
	if err != nil {
		return task.Task{}, fmt.Errorf("complete task %d: %w", id, err)
	}

	if !ok {
		// Distinguish a missing task from one that is already done.
		if _, err := s.store.GetTask(ctx, id); err != nil {
			if errors.Is(err, task.ErrNotFound) {
				return task.Task{}, err
			}
			return task.Task{}, fmt.Errorf("complete task %d: %w", id, err)
		}
		return task.Task{}, fmt.Errorf("task %d: %w", id, task.ErrAlreadyDone)
	}

	done, err := s.store.GetTask(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("reload task %d: %w", id, err)
	}

	s.log.Info().Int64("task_id", id).Int64("by", by).Msg("task completed")
	s.bus.PublishTaskCompleted(eventbus.TaskCompletedPayload{Task: done, By: by})

	return done, nil
}

// Delete removes a task. Deleting a missing task returns task.ErrNotFound
// and has no side effects.
func (s *TaskService) Delete(ctx context.Context, by, id int64) error {
	ok, err := s.store.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("task %d: %w", id, task.ErrNotFound)
	}

	s.log.Info().Int64("task_id", id).Int64("by", by).Msg("task deleted")
	s.bus.PublishTaskDeleted(eventbus.TaskDeletedPayload{TaskID: id, By: by})

	return nil
}

// Register creates or overwrites the user record for u.Identity. A user
// without a handle is stored but cannot receive tasks.
func (s *TaskService) Register(ctx context.Context, u task.User) (task.User, error) {
	if u.Identity == 0 {
		return task.User{}, fmt.Errorf("%w: identity is required", task.ErrInvalidFormat)
	}
	if strings.TrimSpace(u.Handle) != "" {
		if err := validate.Handle(u.Handle); err != nil {
			return task.User{}, fmt.Errorf("%w: %w", task.ErrInvalidFormat, err)
		}
	}

	u.Handle = task.NormalizeHandle(u.Handle)
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.RegisteredAt = s.now()

	if err := s.store.SaveUser(ctx, u); err != nil {
		return task.User{}, fmt.Errorf("save user %d: %w", u.Identity, err)
	}

	s.log.Info().Int64("identity", u.Identity).Str("handle", u.Handle).Msg("user registered")
	s.bus.PublishUserRegistered(eventbus.UserRegisteredPayload{User: u})

	return u, nil
}

// Users returns all registered users.
func (s *TaskService) Users(ctx context.Context) ([]task.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Resolve returns the user currently owning handle.
func (s *TaskService) Resolve(ctx context.Context, handle string) (task.User, error) {
	u, err := s.store.FindUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, task.ErrUserNotFound) {
			return task.User{}, fmt.Errorf("%w: %q", ErrUnresolvedAssignee, task.NormalizeHandle(handle))
		}
		return task.User{}, fmt.Errorf("resolve %q: %w", handle, err)
	}
	return u, nil
}
