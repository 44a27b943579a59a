package taskbot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/core/logging"
	"github.com/hay-kot/taskbot/internal/core/task"
)

// EventType names an interaction event.
type EventType string

const (
	EventRegisterUser      EventType = "register_user"
	EventListMyTasks       EventType = "list_my_tasks"
	EventRequestCompletion EventType = "request_completion"
	EventSelectTask        EventType = "select_task"
	EventSubmitComment     EventType = "submit_comment"
	EventReset             EventType = "reset"
	EventAdminCreateTask   EventType = "admin_create_task"
	EventAdminListAll      EventType = "admin_list_all"
	EventAdminDeleteTask   EventType = "admin_delete_task"
	EventAdminListUsers    EventType = "admin_list_users"
)

// IsAdmin reports whether the event type requires admin rights.
func (t EventType) IsAdmin() bool {
	switch t {
	case EventAdminCreateTask, EventAdminListAll, EventAdminDeleteTask, EventAdminListUsers:
		return true
	default:
		return false
	}
}

// Event is one message received at the interaction boundary. Only the
// fields relevant to Type are read.
type Event struct {
	Type     EventType `json:"type"`
	Identity int64     `json:"identity"`

	// register_user
	Handle    string `json:"handle,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	// select_task, admin_delete_task
	TaskID int64 `json:"task_id,omitempty"`

	// submit_comment
	Comment string `json:"comment,omitempty"`

	// admin_create_task
	Description string `json:"description,omitempty"`
	Assignee    string `json:"assignee,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// Outcome is the reply to an Event.
type Outcome struct {
	Type     EventType          `json:"type"`
	Identity int64              `json:"identity"`
	OK       bool               `json:"ok"`
	Error    *OutcomeError      `json:"error,omitempty"`
	State    conversation.State `json:"state,omitempty"`
	Notice   string             `json:"notice,omitempty"`
	Task     *task.Task         `json:"task,omitempty"`
	Tasks    []task.Task        `json:"tasks,omitempty"`
	User     *task.User         `json:"user,omitempty"`
	Users    []task.User        `json:"users,omitempty"`
}

// Admins decides who may send admin events.
type Admins interface {
	IsAdmin(identity int64) bool
}

// Dispatcher routes interaction events to the task service and the
// completion flow.
type Dispatcher struct {
	tasks  *TaskService
	flow   *CompletionFlow
	admins Admins
	loc    *time.Location
	log    zerolog.Logger
}

// NewDispatcher creates a Dispatcher. Deadlines without an explicit offset
// are read in loc.
func NewDispatcher(tasks *TaskService, flow *CompletionFlow, admins Admins, loc *time.Location, log zerolog.Logger) *Dispatcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{
		tasks:  tasks,
		flow:   flow,
		admins: admins,
		loc:    loc,
		log:    logging.Sub(log, "dispatcher"),
	}
}

// Handle applies ev and reports the outcome. Failures are carried in the
// Outcome rather than returned.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) Outcome {
	ctx = logging.WithIdentity(ctx, ev.Identity)
	if ev.TaskID != 0 {
		ctx = logging.WithTaskID(ctx, ev.TaskID)
	}

	out := Outcome{Type: ev.Type, Identity: ev.Identity}

	err := d.apply(ctx, ev, &out)
	if err != nil {
		out.Error = newOutcomeError(err)
		lvl := zerolog.DebugLevel
		if out.Error.Kind == KindInternal {
			lvl = zerolog.ErrorLevel
		} else if out.Error.Kind == KindPermissionDenied {
			lvl = zerolog.WarnLevel
		}
		d.log.WithLevel(lvl).Ctx(ctx).Err(err).
			Str("event", string(ev.Type)).
			Str("kind", string(out.Error.Kind)).
			Msg("event failed")
		return out
	}

	out.OK = true
	return out
}

func (d *Dispatcher) apply(ctx context.Context, ev Event, out *Outcome) error {
	if ev.Identity == 0 {
		return fmt.Errorf("%w: identity is required", task.ErrInvalidFormat)
	}

	if ev.Type.IsAdmin() && !d.admins.IsAdmin(ev.Identity) {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, ev.Type)
	}

	switch ev.Type {
	case EventRegisterUser:
		u, err := d.tasks.Register(ctx, task.User{
			Identity:  ev.Identity,
			Handle:    ev.Handle,
			FirstName: ev.FirstName,
			LastName:  ev.LastName,
		})
		if err != nil {
			return err
		}
		out.User = &u
		return nil

	case EventListMyTasks:
		tasks, err := d.tasks.ListFor(ctx, ev.Identity)
		if err != nil {
			return err
		}
		out.Tasks = tasks
		return nil

	case EventRequestCompletion:
		res, err := d.flow.Request(ctx, ev.Identity)
		applyFlow(out, res)
		return err

	case EventSelectTask:
		res, err := d.flow.Select(ctx, ev.Identity, ev.TaskID)
		applyFlow(out, res)
		return err

	case EventSubmitComment:
		res, err := d.flow.Submit(ctx, ev.Identity, ev.Comment)
		applyFlow(out, res)
		return err

	case EventReset:
		res, err := d.flow.Reset(ctx, ev.Identity)
		applyFlow(out, res)
		return err

	case EventAdminCreateTask:
		deadline, err := ParseDeadline(ev.Deadline, d.loc)
		if err != nil {
			return err
		}
		t, err := d.tasks.Create(ctx, ev.Identity, ev.Description, ev.Assignee, deadline)
		if err != nil {
			return err
		}
		out.Task = &t
		return nil

	case EventAdminListAll:
		tasks, err := d.tasks.List(ctx)
		if err != nil {
			return err
		}
		out.Tasks = tasks
		return nil

	case EventAdminDeleteTask:
		return d.tasks.Delete(ctx, ev.Identity, ev.TaskID)

	case EventAdminListUsers:
		users, err := d.tasks.Users(ctx)
		if err != nil {
			return err
		}
		out.Users = users
		return nil

	default:
		return fmt.Errorf("%w: unknown event type %q", ErrUnexpectedEvent, ev.Type)
	}
}

func applyFlow(out *Outcome, res FlowResult) {
	out.State = res.State
	out.Notice = res.Notice
	out.Tasks = res.Candidates
	out.Task = res.Task
}
