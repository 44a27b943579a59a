package taskbot

import (
	"errors"
	"fmt"

	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/task"
)

// ErrorKind classifies failures reported at the interaction boundary.
type ErrorKind string

const (
	KindInvalidDeadline    ErrorKind = "InvalidDeadline"
	KindInvalidFormat      ErrorKind = "InvalidFormat"
	KindPermissionDenied   ErrorKind = "PermissionDenied"
	KindTaskNotFound       ErrorKind = "TaskNotFound"
	KindTaskAlreadyDone    ErrorKind = "TaskAlreadyDone"
	KindUnresolvedAssignee ErrorKind = "UnresolvedAssignee"
	KindDeliveryFailure    ErrorKind = "DeliveryFailure"
	KindUnexpectedEvent    ErrorKind = "UnexpectedEvent"
	KindInternal           ErrorKind = "Internal"
)

var (
	// ErrPermissionDenied is returned when a non-admin sends an admin event.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnexpectedEvent is returned when an event does not apply to the
	// caller's current conversation state.
	ErrUnexpectedEvent = errors.New("unexpected event")
	// ErrUnresolvedAssignee is returned when no registered user owns a handle.
	ErrUnresolvedAssignee = errors.New("assignee is not registered")
)

// KindOf maps an error to its ErrorKind. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, task.ErrInvalidDeadline):
		return KindInvalidDeadline
	case errors.Is(err, task.ErrInvalidFormat):
		return KindInvalidFormat
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, task.ErrNotFound):
		return KindTaskNotFound
	case errors.Is(err, task.ErrAlreadyDone):
		return KindTaskAlreadyDone
	case errors.Is(err, ErrUnresolvedAssignee), errors.Is(err, task.ErrUserNotFound):
		return KindUnresolvedAssignee
	case errors.Is(err, notify.ErrDelivery):
		return KindDeliveryFailure
	case errors.Is(err, ErrUnexpectedEvent):
		return KindUnexpectedEvent
	default:
		return KindInternal
	}
}

// OutcomeError is the serializable form of a failure.
type OutcomeError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *OutcomeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newOutcomeError(err error) *OutcomeError {
	if err == nil {
		return nil
	}
	kind := KindOf(err)
	msg := err.Error()
	if kind == KindInternal {
		// Infrastructure detail stays in the logs.
		msg = "internal error"
	}
	return &OutcomeError{Kind: kind, Message: msg}
}
