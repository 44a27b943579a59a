// Package notifier implements notify.Notifier on top of the available
// transports.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/taskbot/internal/core/notify"
)

// Outbox records every message in the notification store. The chat adapter
// (or `taskbot inbox`) drains it.
type Outbox struct {
	store notify.Store
	now   func() time.Time
}

var _ notify.Notifier = (*Outbox)(nil)

func NewOutbox(store notify.Store) *Outbox {
	return &Outbox{store: store, now: time.Now}
}

func (o *Outbox) Send(ctx context.Context, recipient int64, msg notify.Message) error {
	_, err := o.store.Save(ctx, notify.Notification{
		Recipient: recipient,
		Kind:      msg.Kind,
		Text:      msg.Text,
		TaskID:    msg.TaskID,
		CreatedAt: o.now(),
	})
	if err != nil {
		return fmt.Errorf("%w: outbox %d: %w", notify.ErrDelivery, recipient, err)
	}
	return nil
}
