package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hay-kot/taskbot/internal/core/notify"
)

// DefaultChannelPrefix is prepended to the recipient identity to form the
// pub/sub channel name.
const DefaultChannelPrefix = "taskbot:notify:"

// Redis publishes each message as JSON on a per-recipient channel. A
// publish that reaches no subscriber is still a successful send.
type Redis struct {
	client redis.Cmdable
	prefix string
}

var _ notify.Notifier = (*Redis)(nil)

func NewRedis(client redis.Cmdable, channelPrefix string) *Redis {
	if channelPrefix == "" {
		channelPrefix = DefaultChannelPrefix
	}
	return &Redis{client: client, prefix: channelPrefix}
}

// Channel returns the channel name for a recipient.
func (r *Redis) Channel(recipient int64) string {
	return r.prefix + strconv.FormatInt(recipient, 10)
}

// envelope is the published payload.
type envelope struct {
	Recipient int64       `json:"recipient"`
	Kind      notify.Kind `json:"kind"`
	Text      string      `json:"text"`
	TaskID    int64       `json:"task_id,omitempty"`
	SentAt    time.Time   `json:"sent_at"`
}

func (r *Redis) Send(ctx context.Context, recipient int64, msg notify.Message) error {
	payload, err := json.Marshal(envelope{
		Recipient: recipient,
		Kind:      msg.Kind,
		Text:      msg.Text,
		TaskID:    msg.TaskID,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("%w: encode message: %w", notify.ErrDelivery, err)
	}

	if err := r.client.Publish(ctx, r.Channel(recipient), payload).Err(); err != nil {
		return fmt.Errorf("%w: publish to %d: %w", notify.ErrDelivery, recipient, err)
	}
	return nil
}
