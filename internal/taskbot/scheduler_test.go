package taskbot

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/reminder"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/internal/data/stores"
)

type sentMessage struct {
	Recipient int64
	Msg       notify.Message
}

// recordingNotifier captures messages and fails while failing is set.
type recordingNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failing bool
}

func (n *recordingNotifier) Send(_ context.Context, recipient int64, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failing {
		return errors.New("transport down")
	}
	n.sent = append(n.sent, sentMessage{Recipient: recipient, Msg: msg})
	return nil
}

func (n *recordingNotifier) setFailing(v bool) {
	n.mu.Lock()
	n.failing = v
	n.mu.Unlock()
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type schedulerFixture struct {
	cfg      *config.Config
	store    *stores.TaskStore
	notifier *recordingNotifier
	bus      *testbus.Bus
	ref      time.Time
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	require.NoError(t, cfg.Validate())

	database := openTestDB(t)

	return &schedulerFixture{
		cfg:      &cfg,
		store:    stores.NewTaskStore(database),
		notifier: &recordingNotifier{},
		bus:      testbus.New(t),
		ref:      time.Date(2030, 12, 18, 9, 0, 0, 0, cfg.Location()),
	}
}

func (f *schedulerFixture) scheduler(ledger reminder.Ledger, opts ...SchedulerOption) *Scheduler {
	return NewScheduler(f.cfg, f.store, ledger, f.notifier, f.bus.EventBus, zerolog.Nop(), opts...)
}

func (f *schedulerFixture) kvLedger(t *testing.T) reminder.Ledger {
	t.Helper()
	return reminder.NewKVLedger(stores.NewKVStore(openTestDB(t)), time.Hour)
}

func (f *schedulerFixture) task(t *testing.T, assignee string, deadline time.Time) task.Task {
	t.Helper()

	tk, err := task.NewTask("task for "+assignee, assignee, deadline, f.ref.AddDate(0, 0, -30))
	require.NoError(t, err)
	created, err := f.store.CreateTask(context.Background(), tk)
	require.NoError(t, err)
	return created
}

func (f *schedulerFixture) user(t *testing.T, identity int64, handle string) {
	t.Helper()
	require.NoError(t, f.store.SaveUser(context.Background(), task.User{
		Identity:     identity,
		Handle:       handle,
		RegisteredAt: f.ref,
	}))
}

func (f *schedulerFixture) at(days, hour int) time.Time {
	return time.Date(f.ref.Year(), f.ref.Month(), f.ref.Day()+days, hour, 0, 0, 0, f.ref.Location())
}

func TestScheduler_RunCycle_SelectsThresholdDays(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")

	week := f.task(t, "bob", f.at(7, 23))
	day := f.task(t, "@Bob", f.at(1, 12))
	f.task(t, "bob", f.at(2, 12))
	f.task(t, "bob", f.at(6, 12))
	done := f.task(t, "bob", f.at(7, 10))
	_, err := f.store.CompleteTask(ctx, done.ID, "early", f.ref)
	require.NoError(t, err)

	s := f.scheduler(f.kvLedger(t))
	report, err := s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Count(ReminderSent))
	assert.Len(t, report.Results, 2)

	msgs := f.notifier.messages()
	require.Len(t, msgs, 2)

	byTask := map[int64]notify.Message{}
	for _, m := range msgs {
		assert.Equal(t, int64(100), m.Recipient)
		assert.Equal(t, notify.KindReminder, m.Msg.Kind)
		byTask[m.Msg.TaskID] = m.Msg
	}

	require.Contains(t, byTask, week.ID)
	require.Contains(t, byTask, day.ID)
	assert.Contains(t, byTask[week.ID].Text, "7 days left")
	assert.Contains(t, byTask[day.ID].Text, "1 day left")

	f.bus.AssertPublished(t, eventbus.EventReminderSent)
}

func TestScheduler_RunCycle_SentOnce(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")
	f.task(t, "bob", f.at(7, 12))

	s := f.scheduler(f.kvLedger(t))

	first, err := s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count(ReminderSent))

	second, err := s.RunCycle(ctx, f.ref.Add(30*time.Second), false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Count(ReminderSent))
	assert.Equal(t, 1, second.Count(ReminderAlreadySent))

	assert.Len(t, f.notifier.messages(), 1)
}

func TestScheduler_RunCycle_UnresolvedAssignee(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	ghost := f.task(t, "ghost", f.at(7, 12))

	s := f.scheduler(f.kvLedger(t))

	report, err := s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, ReminderUnresolved, report.Results[0].Status)
	assert.Empty(t, f.notifier.messages())
	f.bus.AssertPublished(t, eventbus.EventReminderSkipped)

	// Not claimed, so registering later in the window still delivers.
	f.user(t, 300, "ghost")

	report, err = s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ReminderSent))

	msgs := f.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(300), msgs[0].Recipient)
	assert.Equal(t, ghost.ID, msgs[0].Msg.TaskID)
}

func TestScheduler_RunCycle_DeliveryFailureReleasesClaim(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")
	f.user(t, 200, "alice")
	f.task(t, "bob", f.at(7, 12))

	s := f.scheduler(f.kvLedger(t))

	f.notifier.setFailing(true)
	report, err := s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ReminderFailed))

	f.notifier.setFailing(false)
	report, err = s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ReminderSent))
	assert.Len(t, f.notifier.messages(), 1)
}

func TestScheduler_RunCycle_DryRun(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")
	f.task(t, "bob", f.at(1, 12))

	s := f.scheduler(f.kvLedger(t))

	report, err := s.RunCycle(ctx, f.ref, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	require.Len(t, report.Results, 1)
	assert.Equal(t, ReminderPlanned, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Text, "Urgent")
	assert.Empty(t, f.notifier.messages())

	report, err = s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(ReminderSent))

	report, err = s.RunCycle(ctx, f.ref, true)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, ReminderAlreadySent, report.Results[0].Status, "held claim is reported")
	assert.Len(t, f.notifier.messages(), 1)
}

func TestScheduler_RunCycle_ManyRecipients(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.cfg.Reminders.Workers = 3

	for i := range 10 {
		handle := string(rune('a'+i)) + "user"
		f.user(t, int64(1000+i), handle)
		f.task(t, handle, f.at(7, 12))
		f.task(t, handle, f.at(1, 12))
	}

	s := f.scheduler(f.kvLedger(t))
	report, err := s.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	assert.Equal(t, 20, report.Count(ReminderSent))
	assert.Len(t, f.notifier.messages(), 20)
}

func TestScheduler_RunCycle_RedisLedger(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")
	f.task(t, "bob", f.at(7, 12))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ledger := reminder.NewRedisLedger(client, reminder.DefaultKeyPrefix, time.Hour)

	// Two schedulers sharing one ledger deliver once.
	a := f.scheduler(ledger)
	b := f.scheduler(ledger)

	ra, err := a.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)
	rb, err := b.RunCycle(ctx, f.ref, false)
	require.NoError(t, err)

	assert.Equal(t, 1, ra.Count(ReminderSent)+rb.Count(ReminderSent))
	assert.Len(t, f.notifier.messages(), 1)

	dry, err := b.RunCycle(ctx, f.ref, true)
	require.NoError(t, err)
	assert.Equal(t, 1, dry.Count(ReminderAlreadySent))
}

func TestScheduler_Tick(t *testing.T) {
	ctx := context.Background()
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")
	f.task(t, "bob", f.at(7, 12))
	f.task(t, "bob", f.at(8, 12))

	s := f.scheduler(f.kvLedger(t))
	loc := f.cfg.Location()

	assert.False(t, s.Tick(ctx, time.Date(2030, 12, 18, 8, 59, 59, 0, loc)))
	assert.True(t, s.Tick(ctx, time.Date(2030, 12, 18, 9, 0, 5, 0, loc)))
	assert.False(t, s.Tick(ctx, time.Date(2030, 12, 18, 9, 0, 45, 0, loc)), "same minute fires once")
	assert.False(t, s.Tick(ctx, time.Date(2030, 12, 18, 9, 1, 0, 0, loc)))
	assert.Len(t, f.notifier.messages(), 1)

	// Next day the 8-day task is 7 days out.
	assert.True(t, s.Tick(ctx, time.Date(2030, 12, 19, 9, 0, 0, 0, loc)))
	assert.Len(t, f.notifier.messages(), 2)

	// The trigger minute is read in the configured zone.
	assert.False(t, s.Tick(ctx, time.Date(2030, 12, 20, 9, 0, 0, 0, time.UTC)))
	assert.True(t, s.Tick(ctx, time.Date(2030, 12, 20, 6, 0, 0, 0, time.UTC)))
}

// fakeClock advances by the requested duration on every After call and
// cancels once it passes stop.
type fakeClock struct {
	now    time.Time
	stop   time.Time
	cancel context.CancelFunc
	waits  []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	if !c.now.Before(c.stop) {
		c.cancel()
	}
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func TestScheduler_Run(t *testing.T) {
	f := newSchedulerFixture(t)
	f.user(t, 100, "bob")
	f.task(t, "bob", f.at(7, 12))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := &fakeClock{
		now:    f.ref.Add(-90 * time.Second), // 08:58:30
		stop:   f.ref.Add(3 * time.Minute),
		cancel: cancel,
	}

	s := f.scheduler(f.kvLedger(t), WithClock(clock))
	require.NoError(t, s.Run(ctx))

	require.NotEmpty(t, clock.waits)
	assert.Equal(t, 30*time.Second, clock.waits[0], "first wait aligns to the minute boundary")
	for _, w := range clock.waits[1:] {
		assert.Equal(t, time.Minute, w)
	}

	assert.Len(t, f.notifier.messages(), 1)
}

func TestNewScheduler_InvalidClockWarns(t *testing.T) {
	f := newSchedulerFixture(t)
	f.cfg.Reminders.Time = "25:99"

	var buf bytes.Buffer
	s := NewScheduler(f.cfg, f.store, f.kvLedger(t), f.notifier, f.bus.EventBus, zerolog.New(&buf))

	assert.Equal(t, 9, s.hour)
	assert.Equal(t, 0, s.minute)

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"component":"scheduler"`)
	assert.Contains(t, out, "invalid reminder time")
	assert.Contains(t, out, "25:99")
}
