package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	now := time.Date(2030, 12, 1, 10, 0, 0, 0, time.UTC)

	t.Run("valid task is todo with normalized assignee", func(t *testing.T) {
		got, err := NewTask("  Ship release ", "@Bob", now.Add(time.Hour), now)
		require.NoError(t, err)
		assert.Equal(t, "Ship release", got.Description)
		assert.Equal(t, "bob", got.Assignee)
		assert.Equal(t, StatusTodo, got.Status)
		assert.Equal(t, now, got.CreatedAt)
		assert.Nil(t, got.CompletedAt)
		assert.Nil(t, got.Comment)
	})

	t.Run("deadline equal to now is rejected", func(t *testing.T) {
		_, err := NewTask("x", "bob", now, now)
		assert.ErrorIs(t, err, ErrInvalidDeadline)
	})

	t.Run("deadline in the past is rejected", func(t *testing.T) {
		_, err := NewTask("x", "bob", now.Add(-time.Minute), now)
		assert.ErrorIs(t, err, ErrInvalidDeadline)
	})

	t.Run("empty description", func(t *testing.T) {
		_, err := NewTask("   ", "bob", now.Add(time.Hour), now)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("bare marker is not a handle", func(t *testing.T) {
		_, err := NewTask("x", "@", now.Add(time.Hour), now)
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bob", "bob"},
		{"@bob", "bob"},
		{" @Bob ", "bob"},
		{"BOB", "bob"},
		{"", ""},
		{"@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHandle(tt.in))
		})
	}

	assert.Equal(t, NormalizeHandle("@bob"), NormalizeHandle("bob"))
}

func TestFilterStatus(t *testing.T) {
	tasks := []Task{
		{ID: 1, Status: StatusTodo},
		{ID: 2, Status: StatusDone},
		{ID: 3, Status: StatusTodo},
	}

	todo := FilterStatus(tasks, StatusTodo)
	require.Len(t, todo, 2)
	assert.Equal(t, int64(1), todo[0].ID)
	assert.Equal(t, int64(3), todo[1].ID)
}
