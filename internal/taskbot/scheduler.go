package taskbot

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hay-kot/taskbot/internal/core/config"
	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/logging"
	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/reminder"
	"github.com/hay-kot/taskbot/internal/core/task"
	"github.com/hay-kot/taskbot/pkg/tmpl"
)

// ReminderStatus is the result of one reminder in a cycle.
type ReminderStatus string

const (
	ReminderSent        ReminderStatus = "sent"
	ReminderAlreadySent ReminderStatus = "already_sent"
	ReminderUnresolved  ReminderStatus = "unresolved"
	ReminderFailed      ReminderStatus = "failed"
	ReminderPlanned     ReminderStatus = "planned" // dry run
)

// Skip reasons published with ReminderSkipped.
const (
	SkipUnresolvedAssignee = "unresolved_assignee"
	SkipDeliveryFailure    = "delivery_failure"
	SkipRenderFailure      = "render_failure"
	SkipLedgerFailure      = "ledger_failure"
)

// ReminderResult records what happened to one due task at one threshold.
type ReminderResult struct {
	TaskID    int64          `json:"task_id"`
	Threshold int            `json:"threshold"`
	Assignee  string         `json:"assignee"`
	Recipient int64          `json:"recipient,omitempty"`
	Status    ReminderStatus `json:"status"`
	Text      string         `json:"text,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Report summarizes a reminder cycle.
type Report struct {
	Ref     time.Time        `json:"ref"`
	DryRun  bool             `json:"dry_run"`
	Results []ReminderResult `json:"results"`
}

// Count returns the number of results with status.
func (r Report) Count(status ReminderStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Clock abstracts time for the scheduler loop.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// Scheduler sends deadline reminders once per day in a configured trigger
// minute. Deliveries are claimed in a ledger so a reminder is sent at most
// once per task, threshold and deadline.
type Scheduler struct {
	store    task.Store
	ledger   reminder.Ledger
	notifier notify.Notifier
	bus      *eventbus.EventBus
	renderer *tmpl.Renderer
	log      zerolog.Logger
	clock    Clock

	loc        *time.Location
	hour       int
	minute     int
	resolution time.Duration
	workers    int
	thresholds []int
	messages   map[int]string

	mu        sync.Mutex
	lastFired time.Time
}

// NewScheduler creates a Scheduler from the reminder configuration.
func NewScheduler(
	cfg *config.Config,
	store task.Store,
	ledger reminder.Ledger,
	notifier notify.Notifier,
	bus *eventbus.EventBus,
	log zerolog.Logger,
	opts ...SchedulerOption,
) *Scheduler {
	log = logging.Sub(log, "scheduler")

	hour, minute, err := cfg.ReminderClock()
	if err != nil {
		hour, minute = 9, 0
		log.Warn().Err(err).Msg("invalid reminder time, firing at 09:00")
	}

	messages := make(map[int]string, len(cfg.Reminders.Thresholds))
	for _, th := range cfg.Reminders.Thresholds {
		messages[th.Days] = th.Message
	}

	s := &Scheduler{
		store:      store,
		ledger:     ledger,
		notifier:   notifier,
		bus:        bus,
		renderer:   tmpl.New(cfg.Location()),
		log:        log,
		clock:      realClock{},
		loc:        cfg.Location(),
		hour:       hour,
		minute:     minute,
		resolution: cfg.Reminders.Resolution,
		workers:    max(cfg.Reminders.Workers, 1),
		thresholds: cfg.ThresholdDays(),
		messages:   messages,
	}
	if s.resolution <= 0 {
		s.resolution = time.Minute
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run ticks on resolution boundaries until ctx is cancelled. Cycle errors
// are logged and never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().
		Str("trigger", fmt.Sprintf("%02d:%02d", s.hour, s.minute)).
		Str("timezone", s.loc.String()).
		Ints("thresholds", s.thresholds).
		Msg("reminder scheduler started")

	for {
		now := s.clock.Now()
		next := now.Truncate(s.resolution).Add(s.resolution)

		select {
		case <-ctx.Done():
			s.log.Info().Msg("reminder scheduler stopped")
			return nil
		case <-s.clock.After(next.Sub(now)):
		}

		s.Tick(ctx, s.clock.Now())
	}
}

// Tick runs a cycle when now falls in the trigger minute and that minute has
// not fired yet in this process. It reports whether a cycle ran.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) bool {
	now = now.In(s.loc)
	if now.Hour() != s.hour || now.Minute() != s.minute {
		return false
	}

	minute := now.Truncate(time.Minute)

	s.mu.Lock()
	if minute.Equal(s.lastFired) {
		s.mu.Unlock()
		return false
	}
	s.lastFired = minute
	s.mu.Unlock()

	report, err := s.RunCycle(ctx, now, false)
	if err != nil {
		s.log.Error().Err(err).Time("ref", now).Msg("reminder cycle failed")
		return true
	}

	s.log.Info().
		Time("ref", now).
		Int("sent", report.Count(ReminderSent)).
		Int("already_sent", report.Count(ReminderAlreadySent)).
		Int("unresolved", report.Count(ReminderUnresolved)).
		Int("failed", report.Count(ReminderFailed)).
		Msg("reminder cycle finished")

	return true
}

// RunCycle selects tasks due at ref and dispatches their reminders. With
// dryRun nothing is claimed or sent; results are reported as planned, or as
// already sent when the ledger still holds their claim.
func (s *Scheduler) RunCycle(ctx context.Context, ref time.Time, dryRun bool) (Report, error) {
	ref = ref.In(s.loc)

	due, err := s.store.TasksDueForReminder(ctx, ref, s.thresholds)
	if err != nil {
		return Report{}, fmt.Errorf("select due tasks: %w", err)
	}

	var held map[string]struct{}
	if dryRun {
		held = s.heldClaims(ctx)
	}

	report := Report{Ref: ref, DryRun: dryRun}
	var mu sync.Mutex
	record := func(r ReminderResult) {
		mu.Lock()
		report.Results = append(report.Results, r)
		mu.Unlock()
	}

	byRecipient := make(map[int64][]task.DueTask)
	var order []int64
	for _, d := range due {
		if d.Recipient == nil {
			// Not claimed, so a later cycle for the same day can still deliver.
			s.log.Warn().
				Int64("task_id", d.ID).
				Str("assignee", d.Assignee).
				Int("threshold", d.Threshold).
				Str("kind", string(KindUnresolvedAssignee)).
				Msg("reminder skipped, assignee not registered")
			record(ReminderResult{
				TaskID:    d.ID,
				Threshold: d.Threshold,
				Assignee:  d.Assignee,
				Status:    ReminderUnresolved,
			})
			if !dryRun {
				s.bus.PublishReminderSkipped(eventbus.ReminderSkippedPayload{
					TaskID:    d.ID,
					Threshold: d.Threshold,
					Reason:    SkipUnresolvedAssignee,
				})
			}
			continue
		}

		rcpt := *d.Recipient
		if _, ok := byRecipient[rcpt]; !ok {
			order = append(order, rcpt)
		}
		byRecipient[rcpt] = append(byRecipient[rcpt], d)
	}

	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, rcpt := range order {
		items := byRecipient[rcpt]
		g.Go(func() error {
			for _, d := range items {
				if ctx.Err() != nil {
					return nil
				}
				record(s.dispatch(ctx, rcpt, d, dryRun, held))
			}
			return nil
		})
	}

	_ = g.Wait()

	sort.Slice(report.Results, func(i, j int) bool {
		a, b := report.Results[i], report.Results[j]
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.Threshold > b.Threshold
	})

	return report, nil
}

func (s *Scheduler) dispatch(ctx context.Context, recipient int64, d task.DueTask, dryRun bool, held map[string]struct{}) ReminderResult {
	res := ReminderResult{
		TaskID:    d.ID,
		Threshold: d.Threshold,
		Assignee:  d.Assignee,
		Recipient: recipient,
	}
	log := s.log.With().
		Int64("task_id", d.ID).
		Int64("recipient", recipient).
		Int("threshold", d.Threshold).
		Logger()

	text, err := s.render(d)
	if err != nil {
		log.Error().Err(err).Msg("render reminder")
		res.Status = ReminderFailed
		res.Error = err.Error()
		s.skipped(d, SkipRenderFailure, dryRun)
		return res
	}
	res.Text = text

	key := reminder.Key{TaskID: d.ID, Threshold: d.Threshold, Deadline: d.Deadline}

	if dryRun {
		res.Status = ReminderPlanned
		if _, ok := held[key.String()]; ok {
			res.Status = ReminderAlreadySent
		}
		return res
	}

	claimed, err := s.ledger.Claim(ctx, key)
	if err != nil {
		log.Error().Err(err).Msg("claim reminder")
		res.Status = ReminderFailed
		res.Error = err.Error()
		s.skipped(d, SkipLedgerFailure, false)
		return res
	}
	if !claimed {
		log.Debug().Msg("reminder already sent")
		res.Status = ReminderAlreadySent
		return res
	}

	err = s.notifier.Send(ctx, recipient, notify.Message{
		Kind:   notify.KindReminder,
		Text:   text,
		TaskID: d.ID,
	})
	if err != nil {
		log.Warn().Err(err).Str("kind", string(KindDeliveryFailure)).Msg("reminder delivery failed")
		if rerr := s.ledger.Release(ctx, key); rerr != nil {
			log.Error().Err(rerr).Msg("release reminder claim")
		}
		res.Status = ReminderFailed
		res.Error = err.Error()
		s.skipped(d, SkipDeliveryFailure, false)
		return res
	}

	log.Info().Msg("reminder sent")
	res.Status = ReminderSent
	s.bus.PublishReminderSent(eventbus.ReminderSentPayload{
		TaskID:    d.ID,
		Recipient: recipient,
		Threshold: d.Threshold,
	})

	return res
}

func (s *Scheduler) heldClaims(ctx context.Context) map[string]struct{} {
	keys, err := s.ledger.Claimed(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("list reminder claims, dry run reports all as planned")
		return nil
	}

	held := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		held[k] = struct{}{}
	}
	return held
}

func (s *Scheduler) render(d task.DueTask) (string, error) {
	text, ok := s.messages[d.Threshold]
	if !ok {
		return "", fmt.Errorf("no message configured for %d days", d.Threshold)
	}
	return s.renderer.Render(text, config.MessageData{Task: d.Task, Days: d.Threshold})
}

func (s *Scheduler) skipped(d task.DueTask, reason string, dryRun bool) {
	if dryRun {
		return
	}
	s.bus.PublishReminderSkipped(eventbus.ReminderSkippedPayload{
		TaskID:    d.ID,
		Threshold: d.Threshold,
		Reason:    reason,
	})
}
