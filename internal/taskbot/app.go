package taskbot

import (
	"github.com/rs/zerolog"

	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/reminder"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/data/db"
	"github.com/hay-kot/taskbot/internal/data/stores"
	"github.com/hay-kot/taskbot/pkg/tmpl"
)

// App is the central entry point for all taskbot operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Tasks       *TaskService
	Completion  *CompletionFlow
	Dispatcher  *Dispatcher
	Scheduler   *Scheduler
	Assignments *AssignmentNotifier

	Outbox   notify.Store
	KV       *stores.KVStore
	Bus      *eventbus.EventBus
	Config   *config.Config
	DB       *db.DB
	Renderer *tmpl.Renderer
}

// Deps are the collaborators an App is built from. Backend selection
// (ledger, notifier, conversation store) happens before NewApp.
type Deps struct {
	Config        *config.Config
	DB            *db.DB
	Store         task.Store
	KV            *stores.KVStore
	Conversations conversation.Store
	Ledger        reminder.Ledger
	Notifier      notify.Notifier
	Outbox        notify.Store
	Bus           *eventbus.EventBus
	Logger        zerolog.Logger
}

// NewApp constructs an App from explicit dependencies and subscribes the
// assignment notifier to the bus.
func NewApp(d Deps) *App {
	renderer := tmpl.New(d.Config.Location())

	tasks := NewTaskService(d.Store, d.Bus, d.Logger)
	flow := NewCompletionFlow(tasks, d.Conversations, d.Logger)
	assignments := NewAssignmentNotifier(d.Store, d.Notifier, renderer, d.Config.Messages.Assignment, d.Logger)
	assignments.Subscribe(d.Bus)

	return &App{
		Tasks:       tasks,
		Completion:  flow,
		Dispatcher:  NewDispatcher(tasks, flow, d.Config, d.Config.Location(), d.Logger),
		Scheduler:   NewScheduler(d.Config, d.Store, d.Ledger, d.Notifier, d.Bus, d.Logger),
		Assignments: assignments,
		Outbox:      d.Outbox,
		KV:          d.KV,
		Bus:         d.Bus,
		Config:      d.Config,
		DB:          d.DB,
		Renderer:    renderer,
	}
}
