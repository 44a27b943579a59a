package taskbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/core/logging"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/pkg/kv"
)

// Notices returned alongside flow results.
const (
	NoticeNoPendingTasks = "no_pending_tasks"
	NoticeSelectTask     = "select_task"
	NoticeAwaitComment   = "awaiting_comment"
	NoticeTaskCompleted  = "task_completed"
	NoticeReset          = "reset"
)

// FlowResult describes the conversation after an event was applied.
type FlowResult struct {
	State      conversation.State
	Candidates []task.Task
	Task       *task.Task
	Notice     string
}

// CompletionFlow drives the "select a task, supply a comment, mark done"
// dialog. Events for one identity are serialized; identities are independent.
type CompletionFlow struct {
	tasks *TaskService
	convs conversation.Store
	locks *kv.Locker[int64]
	log   zerolog.Logger
	now   func() time.Time
}

// NewCompletionFlow creates a CompletionFlow.
func NewCompletionFlow(tasks *TaskService, convs conversation.Store, log zerolog.Logger) *CompletionFlow {
	return &CompletionFlow{
		tasks: tasks,
		convs: convs,
		locks: kv.NewLocker[int64](),
		log:   logging.Sub(log, "completion"),
		now:   time.Now,
	}
}

// Request starts (or restarts) the dialog from any state.
func (f *CompletionFlow) Request(ctx context.Context, identity int64) (FlowResult, error) {
	defer f.locks.Lock(identity)()

	pending, err := f.tasks.Pending(ctx, identity)
	if err != nil {
		return FlowResult{}, err
	}

	if len(pending) == 0 {
		if err := f.convs.Clear(ctx, identity); err != nil {
			return FlowResult{}, fmt.Errorf("clear conversation: %w", err)
		}
		return FlowResult{State: conversation.StateIdle, Notice: NoticeNoPendingTasks}, nil
	}

	next := conversation.Conversation{
		State:     conversation.StateAwaitingTaskSelection,
		UpdatedAt: f.now(),
	}
	if err := f.convs.Save(ctx, identity, next); err != nil {
		return FlowResult{}, fmt.Errorf("save conversation: %w", err)
	}

	return FlowResult{
		State:      next.State,
		Candidates: pending,
		Notice:     NoticeSelectTask,
	}, nil
}

// Select picks the task to complete. The task must be in the caller's
// current todo set; otherwise the state is left unchanged.
func (f *CompletionFlow) Select(ctx context.Context, identity, taskID int64) (FlowResult, error) {
	defer f.locks.Lock(identity)()

	cur, err := f.convs.Get(ctx, identity)
	if err != nil {
		return FlowResult{}, fmt.Errorf("load conversation: %w", err)
	}
	if cur.State != conversation.StateAwaitingTaskSelection {
		return FlowResult{State: cur.State}, fmt.Errorf("%w: select_task in state %s", ErrUnexpectedEvent, cur.State)
	}

	pending, err := f.tasks.Pending(ctx, identity)
	if err != nil {
		return FlowResult{State: cur.State}, err
	}

	var picked *task.Task
	for i := range pending {
		if pending[i].ID == taskID {
			picked = &pending[i]
			break
		}
	}
	if picked == nil {
		return FlowResult{State: cur.State, Candidates: pending},
			fmt.Errorf("task %d is not one of your pending tasks: %w", taskID, task.ErrNotFound)
	}

	next := conversation.Conversation{
		State:          conversation.StateAwaitingComment,
		SelectedTaskID: taskID,
		UpdatedAt:      f.now(),
	}
	if err := f.convs.Save(ctx, identity, next); err != nil {
		return FlowResult{State: cur.State}, fmt.Errorf("save conversation: %w", err)
	}

	return FlowResult{State: next.State, Task: picked, Notice: NoticeAwaitComment}, nil
}

// Submit completes the selected task with comment. Success, a missing task
// and an already-done task all end the dialog. An empty comment or an
// infrastructure failure keeps the state so the caller can resend.
func (f *CompletionFlow) Submit(ctx context.Context, identity int64, comment string) (FlowResult, error) {
	defer f.locks.Lock(identity)()

	cur, err := f.convs.Get(ctx, identity)
	if err != nil {
		return FlowResult{}, fmt.Errorf("load conversation: %w", err)
	}
	if cur.State != conversation.StateAwaitingComment {
		return FlowResult{State: cur.State}, fmt.Errorf("%w: submit_comment in state %s", ErrUnexpectedEvent, cur.State)
	}

	done, err := f.tasks.Complete(ctx, identity, cur.SelectedTaskID, comment)
	switch {
	case err == nil:
	case errors.Is(err, task.ErrNotFound), errors.Is(err, task.ErrAlreadyDone):
		if cerr := f.convs.Clear(ctx, identity); cerr != nil {
			return FlowResult{State: cur.State}, fmt.Errorf("clear conversation: %w", cerr)
		}
		return FlowResult{State: conversation.StateIdle}, err
	case errors.Is(err, task.ErrInvalidFormat):
		return FlowResult{State: cur.State}, err
	default:
		f.log.Warn().Err(err).
			Int64("identity", identity).
			Int64("task_id", cur.SelectedTaskID).
			Msg("completion failed, keeping dialog state")
		return FlowResult{State: cur.State}, err
	}

	if err := f.convs.Clear(ctx, identity); err != nil {
		// The task is already done at this point.
		f.log.Error().Err(err).Int64("identity", identity).Msg("clear conversation after completion")
	}

	return FlowResult{State: conversation.StateIdle, Task: &done, Notice: NoticeTaskCompleted}, nil
}

// Reset returns the dialog to idle from any state.
func (f *CompletionFlow) Reset(ctx context.Context, identity int64) (FlowResult, error) {
	defer f.locks.Lock(identity)()

	if err := f.convs.Clear(ctx, identity); err != nil {
		return FlowResult{}, fmt.Errorf("clear conversation: %w", err)
	}
	return FlowResult{State: conversation.StateIdle, Notice: NoticeReset}, nil
}

// State returns the current dialog position for identity.
func (f *CompletionFlow) State(ctx context.Context, identity int64) (conversation.Conversation, error) {
	defer f.locks.Lock(identity)()

	c, err := f.convs.Get(ctx, identity)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("load conversation: %w", err)
	}
	return c, nil
}
