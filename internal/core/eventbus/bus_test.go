package eventbus

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T, buffer int) *EventBus {
	t.Helper()
	bus := New(buffer)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = bus.Start(ctx) }()
	return bus
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := startBus(t, 8)

	got := make(chan TaskDeletedPayload, 1)
	bus.SubscribeTaskDeleted(func(p TaskDeletedPayload) { got <- p })

	bus.PublishTaskDeleted(TaskDeletedPayload{TaskID: 4, By: 1})

	select {
	case p := <-got:
		assert.Equal(t, int64(4), p.TaskID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_PanicIsolated(t *testing.T) {
	bus := startBus(t, 8)

	var panics atomic.Int32
	bus.OnPanic(func(Event, any, any) { panics.Add(1) })

	delivered := make(chan struct{}, 1)
	bus.SubscribeUserRegistered(func(UserRegisteredPayload) { panic("boom") })
	bus.SubscribeUserRegistered(func(UserRegisteredPayload) { delivered <- struct{}{} })

	bus.PublishUserRegistered(UserRegisteredPayload{})

	select {
	case <-delivered:
	case <-time.After(time.Second):
		t.Fatal("second subscriber not reached")
	}
	assert.Equal(t, int32(1), panics.Load())
}

func TestEventBus_DropWhenFull(t *testing.T) {
	// Not started, so the buffer fills.
	bus := New(1)

	var dropped atomic.Int32
	bus.OnDrop(func(Event, any) { dropped.Add(1) })

	bus.PublishReminderSkipped(ReminderSkippedPayload{TaskID: 1})
	bus.PublishReminderSkipped(ReminderSkippedPayload{TaskID: 2})

	assert.Equal(t, int32(1), dropped.Load())
}

func TestEventBus_DrainOnStop(t *testing.T) {
	bus := New(4)

	var count atomic.Int32
	bus.SubscribeTaskCompleted(func(TaskCompletedPayload) { count.Add(1) })

	bus.PublishTaskCompleted(TaskCompletedPayload{})
	bus.PublishTaskCompleted(TaskCompletedPayload{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Start(ctx))

	assert.Equal(t, int32(2), count.Load())
}

func TestEventBus_OnDeliverAfterSubscribers(t *testing.T) {
	bus := startBus(t, 8)

	var order []string
	done := make(chan struct{})
	bus.SubscribeTaskDeleted(func(TaskDeletedPayload) { order = append(order, "subscriber") })
	bus.OnDeliver(func(event Event, payload any) {
		order = append(order, string(event))
		assert.Equal(t, TaskDeletedPayload{TaskID: 9}, payload)
		close(done)
	})

	bus.PublishTaskDeleted(TaskDeletedPayload{TaskID: 9})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver hook not called")
	}
	assert.Equal(t, []string{"subscriber", "task.deleted"}, order)
}
