// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within taskbot.
package eventbus

import (
	"github.com/hay-kot/taskbot/internal/core/task"
)

// Events published on the bus. Keep list sorted A-Z.
const (
	EventReminderSent    Event = "reminder.sent"
	EventReminderSkipped Event = "reminder.skipped"
	EventTaskCompleted   Event = "task.completed"
	EventTaskCreated     Event = "task.created"
	EventTaskDeleted     Event = "task.deleted"
	EventUserRegistered  Event = "user.registered"
)

// TaskCreatedPayload is emitted after a task is stored.
type TaskCreatedPayload struct {
	Task task.Task
	By   int64
}

// TaskCompletedPayload is emitted when the todo -> done transition commits.
type TaskCompletedPayload struct {
	Task task.Task
	By   int64
}

// TaskDeletedPayload is emitted when an existing task is removed.
type TaskDeletedPayload struct {
	TaskID int64
	By     int64
}

// UserRegisteredPayload is emitted on registration and re-registration.
type UserRegisteredPayload struct {
	User task.User
}

// ReminderSentPayload is emitted for every delivered reminder.
type ReminderSentPayload struct {
	TaskID    int64
	Recipient int64
	Threshold int
}

// ReminderSkippedPayload is emitted when a due reminder was not delivered.
type ReminderSkippedPayload struct {
	TaskID    int64
	Threshold int
	Reason    string
}

func (bus *EventBus) PublishReminderSent(p ReminderSentPayload) {
	bus.send(EventReminderSent, p)
}

func (bus *EventBus) SubscribeReminderSent(fn func(ReminderSentPayload)) {
	bus.subscribe(EventReminderSent, func(v any) { fn(v.(ReminderSentPayload)) })
}

func (bus *EventBus) PublishReminderSkipped(p ReminderSkippedPayload) {
	bus.send(EventReminderSkipped, p)
}

func (bus *EventBus) SubscribeReminderSkipped(fn func(ReminderSkippedPayload)) {
	bus.subscribe(EventReminderSkipped, func(v any) { fn(v.(ReminderSkippedPayload)) })
}

func (bus *EventBus) PublishTaskCompleted(p TaskCompletedPayload) {
	bus.send(EventTaskCompleted, p)
}

func (bus *EventBus) SubscribeTaskCompleted(fn func(TaskCompletedPayload)) {
	bus.subscribe(EventTaskCompleted, func(v any) { fn(v.(TaskCompletedPayload)) })
}

func (bus *EventBus) PublishTaskCreated(p TaskCreatedPayload) {
	bus.send(EventTaskCreated, p)
}

func (bus *EventBus) SubscribeTaskCreated(fn func(TaskCreatedPayload)) {
	bus.subscribe(EventTaskCreated, func(v any) { fn(v.(TaskCreatedPayload)) })
}

func (bus *EventBus) PublishTaskDeleted(p TaskDeletedPayload) {
	bus.send(EventTaskDeleted, p)
}

func (bus *EventBus) SubscribeTaskDeleted(fn func(TaskDeletedPayload)) {
	bus.subscribe(EventTaskDeleted, func(v any) { fn(v.(TaskDeletedPayload)) })
}

func (bus *EventBus) PublishUserRegistered(p UserRegisteredPayload) {
	bus.send(EventUserRegistered, p)
}

func (bus *EventBus) SubscribeUserRegistered(fn func(UserRegisteredPayload)) {
	bus.subscribe(EventUserRegistered, func(v any) { fn(v.(UserRegisteredPayload)) })
}
