package taskbot

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/conversation"
	"github.com/hay-kot/taskbot/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/reminder"
	"github.com/hay-kot/taskbot/internal/data/stores"
	"github.com/hay-kot/taskbot/internal/notifier"
)

func TestNewApp(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Admins = []int64{adminID}
	require.NoError(t, cfg.Validate())

	database := openTestDB(t)
	kvStore := stores.NewKVStore(database)
	outbox := stores.NewNotifyStore(database)
	tb := testbus.New(t)

	app := NewApp(Deps{
		Config:        &cfg,
		DB:            database,
		Store:         stores.NewTaskStore(database),
		KV:            kvStore,
		Conversations: conversation.NewKVStore(kvStore),
		Ledger:        reminder.NewKVLedger(kvStore, cfg.Reminders.LedgerTTL),
		Notifier:      notifier.NewOutbox(outbox),
		Outbox:        outbox,
		Bus:           tb.EventBus,
		Logger:        zerolog.Nop(),
	})

	out := app.Dispatcher.Handle(ctx, Event{Type: EventRegisterUser, Identity: 100, Handle: "bob"})
	require.True(t, out.OK)

	deadline := time.Now().In(cfg.Location()).AddDate(0, 0, 7)
	out = app.Dispatcher.Handle(ctx, Event{
		Type:        EventAdminCreateTask,
		Identity:    adminID,
		Description: "Review contract",
		Assignee:    "bob",
		Deadline:    deadline.Format(DeadlineLayout),
	})
	require.True(t, out.OK, "%+v", out.Error)

	require.Eventually(t, func() bool {
		items, err := app.Outbox.ListFor(ctx, 100)
		return err == nil && len(items) == 1 && items[0].Kind == notify.KindAssignment
	}, time.Second, 10*time.Millisecond)

	ref := time.Date(deadline.Year(), deadline.Month(), deadline.Day()-7, 9, 0, 0, 0, cfg.Location())
	report, err := app.Scheduler.RunCycle(ctx, ref, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ReminderSent))

	items, err := app.Outbox.ListFor(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
