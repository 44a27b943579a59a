package logging

import "context"

type contextKey string

const (
	identityKey contextKey = "identity"
	taskIDKey   contextKey = "task_id"
)

// WithIdentity adds the acting chat identity to the context.
func WithIdentity(ctx context.Context, identity int64) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// WithTaskID adds the task being operated on to the context.
func WithTaskID(ctx context.Context, taskID int64) context.Context {
	return context.WithValue(ctx, taskIDKey, taskID)
}

// GetIdentity retrieves the identity from the context.
func GetIdentity(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(identityKey).(int64)
	return id, ok
}

// GetTaskID retrieves the task ID from the context.
func GetTaskID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(taskIDKey).(int64)
	return id, ok
}
