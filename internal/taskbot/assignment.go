package taskbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/logging"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/pkg/tmpl"
)

// AssignmentNotifier tells an assignee about a newly created task.
type AssignmentNotifier struct {
	store    task.Store
	notifier notify.Notifier
	renderer *tmpl.Renderer
	template string
	log      zerolog.Logger
}

// NewAssignmentNotifier creates an AssignmentNotifier.
func NewAssignmentNotifier(store task.Store, notifier notify.Notifier, renderer *tmpl.Renderer, template string, log zerolog.Logger) *AssignmentNotifier {
	return &AssignmentNotifier{
		store:    store,
		notifier: notifier,
		renderer: renderer,
		template: template,
		log:      logging.Sub(log, "assignment"),
	}
}

// Subscribe sends a notice for every TaskCreated event on bus.
func (a *AssignmentNotifier) Subscribe(bus *eventbus.EventBus) {
	bus.SubscribeTaskCreated(func(p eventbus.TaskCreatedPayload) {
		if err := a.Notify(context.Background(), p.Task); err != nil {
			a.log.Debug().Err(err).Int64("task_id", p.Task.ID).Msg("assignment notice not delivered")
		}
	})
}

// Notify sends the assignment message for t. An unregistered assignee is
// logged and reported as ErrUnresolvedAssignee.
func (a *AssignmentNotifier) Notify(ctx context.Context, t task.Task) error {
	u, err := a.store.FindUserByHandle(ctx, t.Assignee)
	if err != nil {
		if errors.Is(err, task.ErrUserNotFound) {
			a.log.Warn().
				Int64("task_id", t.ID).
				Str("assignee", t.Assignee).
				Str("kind", string(KindUnresolvedAssignee)).
				Msg("assignee not registered, notice skipped")
			return fmt.Errorf("%w: %q", ErrUnresolvedAssignee, t.Assignee)
		}
		return fmt.Errorf("resolve assignee: %w", err)
	}

	text, err := a.renderer.Render(a.template, config.MessageData{Task: t})
	if err != nil {
		return fmt.Errorf("render assignment: %w", err)
	}

	err = a.notifier.Send(ctx, u.Identity, notify.Message{
		Kind:   notify.KindAssignment,
		Text:   text,
		TaskID: t.ID,
	})
	if err != nil {
		a.log.Warn().Err(err).
			Int64("task_id", t.ID).
			Int64("recipient", u.Identity).
			Str("kind", string(KindDeliveryFailure)).
			Msg("assignment delivery failed")
		return err
	}

	a.log.Info().Int64("task_id", t.ID).Int64("recipient", u.Identity).Msg("assignment notice sent")
	return nil
}
