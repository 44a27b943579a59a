package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts identity and task_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if id, ok := GetIdentity(ctx); ok {
		e.Int64("identity", id)
	}

	if id, ok := GetTaskID(ctx); ok {
		e.Int64("task_id", id)
	}
}
