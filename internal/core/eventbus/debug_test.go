package eventbus_test

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/taskbot/internal/core/eventbus"
	"github.com/hay-kot/taskbot/internal/core/eventbus/testbus"
	"github.com/hay-kot/taskbot/internal/core/task"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishTaskCreated(eventbus.TaskCreatedPayload{Task: task.Task{ID: 1}})
	tb.PublishUserRegistered(eventbus.UserRegisteredPayload{User: task.User{Identity: 5}})
	tb.PublishReminderSent(eventbus.ReminderSentPayload{TaskID: 3, Recipient: 2, Threshold: 7})

	tb.AssertPublished(t, eventbus.EventReminderSent)

	out := buf.String()
	assert.Contains(t, out, `"event":"task.created"`)
	assert.Contains(t, out, `"task_id":1`)
	assert.Contains(t, out, `"task_id":3`)
	assert.Contains(t, out, `"event":"user.registered"`)
}
