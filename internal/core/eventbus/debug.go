package eventbus

import (
	"fmt"

	"github.com/rs/zerolog"
)

// RegisterDebugLogger logs bus activity to logger. Published events are
// logged at debug level, dropped events and subscriber panics at warn and
// error.
func RegisterDebugLogger(bus *EventBus, logger zerolog.Logger) {
	bus.OnPublish(func(event Event, payload any) {
		withTask(logger.Debug(), payload).Str("event", string(event)).Msg("event published")
	})

	bus.OnDrop(func(event Event, payload any) {
		withTask(logger.Warn(), payload).Str("event", string(event)).Msg("event dropped, buffer full")
	})

	bus.OnPanic(func(event Event, payload any, recovered any) {
		withTask(logger.Error(), payload).
			Str("event", string(event)).
			Str("panic", fmt.Sprint(recovered)).
			Msg("subscriber panicked")
	})
}

func withTask(e *zerolog.Event, payload any) *zerolog.Event {
	var id int64
	switch p := payload.(type) {
	case TaskCreatedPayload:
		id = p.Task.ID
	case TaskCompletedPayload:
		id = p.Task.ID
	case TaskDeletedPayload:
		id = p.TaskID
	case ReminderSentPayload:
		id = p.TaskID
	case ReminderSkippedPayload:
		id = p.TaskID
	}
	if id != 0 {
		e = e.Int64("task_id", id)
	}
	return e
}
