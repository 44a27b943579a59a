package taskbot

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/taskbot/internal/core/notify"
	"github.com/hay-kot/taskbot/internal/core/task"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ""},
		{task.ErrInvalidDeadline, KindInvalidDeadline},
		{fmt.Errorf("%w: bad", task.ErrInvalidFormat), KindInvalidFormat},
		{fmt.Errorf("%w: admin_list_all", ErrPermissionDenied), KindPermissionDenied},
		{fmt.Errorf("task 3: %w", task.ErrNotFound), KindTaskNotFound},
		{fmt.Errorf("task 3: %w", task.ErrAlreadyDone), KindTaskAlreadyDone},
		{ErrUnresolvedAssignee, KindUnresolvedAssignee},
		{task.ErrUserNotFound, KindUnresolvedAssignee},
		{fmt.Errorf("%w: timeout", notify.ErrDelivery), KindDeliveryFailure},
		{ErrUnexpectedEvent, KindUnexpectedEvent},
		{errors.New("database is locked"), KindInternal},
	}

	for _, tt := range tests {
		name := "nil"
		if tt.err != nil {
			name = tt.err.Error()
		}
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNewOutcomeError(t *testing.T) {
	assert.Nil(t, newOutcomeError(nil))

	oe := newOutcomeError(fmt.Errorf("task 7: %w", task.ErrNotFound))
	assert.Equal(t, KindTaskNotFound, oe.Kind)
	assert.Equal(t, "task 7: task not found", oe.Message)

	oe = newOutcomeError(errors.New("open /var/lib/taskbot.db: permission denied"))
	assert.Equal(t, KindInternal, oe.Kind)
	assert.Equal(t, "internal error", oe.Message)
}
