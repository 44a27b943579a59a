// Package task defines the deadline-bound task and user domain model.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a task. The only transition is
// StatusTodo -> StatusDone.
type Status string

const (
	StatusTodo Status = "todo"
	StatusDone Status = "done"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusDone:
		return true
	default:
		return false
	}
}

// Task is a unit of assigned work with a deadline and a one-way completion state.
//
// CompletedAt and Comment are non-nil iff Status is StatusDone.
type Task struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Assignee    string     `json:"assignee"`
	Deadline    time.Time  `json:"deadline"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Comment     *string    `json:"comment,omitempty"`
}

// IsDone reports whether the task has been completed.
func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// NewTask builds a Todo task after validating its inputs against now.
// The assignee handle is normalized.
func NewTask(description, assignee string, deadline, now time.Time) (Task, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Task{}, fmt.Errorf("%w: description is required", ErrInvalidFormat)
	}

	handle := NormalizeHandle(assignee)
	if handle == "" {
		return Task{}, fmt.Errorf("%w: assignee handle is required", ErrInvalidFormat)
	}

	if !deadline.After(now) {
		return Task{}, ErrInvalidDeadline
	}

	return Task{
		Description: description,
		Assignee:    handle,
		Deadline:    deadline,
		Status:      StatusTodo,
		CreatedAt:   now,
	}, nil
}

// DueTask is a Todo task selected for a reminder at a given threshold.
type DueTask struct {
	Task
	// Threshold is the number of calendar days left until the deadline.
	Threshold int
	// Recipient is the identity resolved from the assignee handle, nil when
	// no registered user currently owns the handle.
	Recipient *int64
}

// FilterStatus returns the tasks with the given status, preserving order.
func FilterStatus(tasks []Task, status Status) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
