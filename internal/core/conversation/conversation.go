// Package conversation holds the per-identity completion dialog state.
package conversation

import (
	"context"
	"time"
)

// State is a step of the completion dialog.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingTaskSelection State = "awaiting_task_selection"
	StateAwaitingComment       State = "awaiting_comment"
)

// Conversation is the dialog position for one identity. SelectedTaskID is
// zero unless State is StateAwaitingComment.
type Conversation struct {
	State          State     `json:"state"`
	SelectedTaskID int64     `json:"selected_task_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Idle returns the zero conversation every identity starts from.
func Idle() Conversation {
	return Conversation{State: StateIdle}
}

// Store keeps conversation state keyed by identity. Get on an unknown
// identity returns Idle() without error.
type Store interface {
	Get(ctx context.Context, identity int64) (Conversation, error)
	Save(ctx context.Context, identity int64, c Conversation) error
	Clear(ctx context.Context, identity int64) error
}
