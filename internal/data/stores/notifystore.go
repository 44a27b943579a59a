package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/data/db"
)

// NotifyStore implements notify.Store using SQLite.
type NotifyStore struct {
	db *db.DB
}

var _ notify.Store = (*NotifyStore)(nil)

// NewNotifyStore creates a new SQLite-backed notification store.
func NewNotifyStore(db *db.DB) *NotifyStore {
	return &NotifyStore{db: db}
}

// Save persists a notification and returns its auto-generated ID.
func (s *NotifyStore) Save(ctx context.Context, n notify.Notification) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	id, err := s.db.Queries().InsertNotification(ctx, db.InsertNotificationParams{
		Recipient: n.Recipient,
		Kind:      string(n.Kind),
		Message:   n.Text,
		TaskID:    sql.NullInt64{Int64: n.TaskID, Valid: n.TaskID != 0},
		CreatedAt: n.CreatedAt.UnixNano(),
	})
	if err != nil {
		return 0, fmt.Errorf("insert notification: %w", err)
	}

	return id, nil
}

// List returns all notifications in delivery order.
func (s *NotifyStore) List(ctx context.Context) ([]notify.Notification, error) {
	rows, err := s.db.Queries().ListNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return rowsToNotifications(rows), nil
}

// ListFor returns the notifications addressed to one recipient in delivery order.
func (s *NotifyStore) ListFor(ctx context.Context, recipient int64) ([]notify.Notification, error) {
	rows, err := s.db.Queries().ListNotificationsByRecipient(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %d: %w", recipient, err)
	}
	return rowsToNotifications(rows), nil
}

// Clear deletes all notifications.
func (s *NotifyStore) Clear(ctx context.Context) error {
	if err := s.db.Queries().DeleteAllNotifications(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// Count returns the total number of notifications.
func (s *NotifyStore) Count(ctx context.Context) (int64, error) {
	count, err := s.db.Queries().CountNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("count notifications: %w", err)
	}
	return count, nil
}

func rowsToNotifications(rows []db.Notification) []notify.Notification {
	result := make([]notify.Notification, 0, len(rows))
	for _, row := range rows {
		result = append(result, notify.Notification{
			ID:        row.ID,
			Recipient: row.Recipient,
			Kind:      notify.Kind(row.Kind),
			Text:      row.Message,
			TaskID:    row.TaskID.Int64,
			CreatedAt: time.Unix(0, row.CreatedAt),
		})
	}
	return result
}
