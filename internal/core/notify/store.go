// Package notify defines outgoing messages and the delivery boundary.
package notify

import (
	"context"
	"errors"
	"time"
)

// ErrDelivery is wrapped by Notifier implementations when a message could
// not be handed to the transport.
var ErrDelivery = errors.New("delivery failed")

// Kind classifies an outgoing message.
type Kind string

const (
	KindAssignment Kind = "assignment"
	KindReminder   Kind = "reminder"
	KindNotice     Kind = "notice"
)

// Message is the payload handed to a Notifier.
type Message struct {
	Kind   Kind   `json:"kind"`
	Text   string `json:"text"`
	TaskID int64  `json:"task_id,omitempty"`
}

// Notifier delivers a message to a single recipient identity. Delivery is
// best-effort; an error means the message was not accepted.
type Notifier interface {
	Send(ctx context.Context, recipient int64, msg Message) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, recipient int64, msg Message) error

func (f NotifierFunc) Send(ctx context.Context, recipient int64, msg Message) error {
	return f(ctx, recipient, msg)
}

// Notification is a delivered message as recorded in the outbox.
type Notification struct {
	ID        int64     `json:"id"`
	Recipient int64     `json:"recipient"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	TaskID    int64     `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists notifications to durable storage.
type Store interface {
	Save(ctx context.Context, n Notification) (int64, error)
	List(ctx context.Context) ([]Notification, error)
	ListFor(ctx context.Context, recipient int64) ([]Notification, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
