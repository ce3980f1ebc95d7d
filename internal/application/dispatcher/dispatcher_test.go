package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/print-order-tracker/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, fmt.Sprint(append([]interface{}{msg}, keysAndValues...)...))
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func testEvent(t event.Type) *event.Event {
	return event.NewEvent(t, "order-1", "Sara", time.Now(), nil).WithOrderNumber("PO-1")
}

func TestSubscribe_GeneratesUniqueNames(t *testing.T) {
	d := NewDispatcher()

	first := d.Subscribe(event.TypeOrderForwarded, func(ctx context.Context, evt *event.Event) error { return nil })
	second := d.Subscribe(event.TypeOrderForwarded, func(ctx context.Context, evt *event.Event) error { return nil })

	assert.NotEqual(t, first, second)
	handlers := d.ListHandlers(event.TypeOrderForwarded)
	require.Len(t, handlers, 2)
	assert.Equal(t, first, handlers[0].Name)
	assert.Nil(t, handlers[0].Handler)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	var calls []string

	d.SubscribeNamed(event.TypePaymentRecorded, "inbox", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "inbox")
		return nil
	})
	d.SubscribeNamed(event.TypePaymentRecorded, "lark", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "lark")
		return nil
	})
	d.Unsubscribe(event.TypePaymentRecorded, "inbox")

	require.NoError(t, d.Dispatch(context.Background(), testEvent(event.TypePaymentRecorded)))
	assert.Equal(t, []string{"lark"}, calls)
}

func TestDispatch_RunsTypedThenWildcardHandlers(t *testing.T) {
	d := NewDispatcher()
	var calls []string

	d.SubscribeNamed(AllEvents, "audit", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "audit:"+string(evt.Type))
		return nil
	})
	d.SubscribeNamed(event.TypeOrderDispatched, "notify", func(ctx context.Context, evt *event.Event) error {
		calls = append(calls, "notify")
		return nil
	})

	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, testEvent(event.TypeOrderDispatched)))
	require.NoError(t, d.Dispatch(ctx, testEvent(event.TypeOrderCreated)))

	assert.Equal(t, []string{"notify", "audit:order.dispatched", "audit:order.created"}, calls)
}

func TestDispatch_JoinsErrorsAndKeepsGoing(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	errSink := errors.New("sink offline")
	var ran atomic.Int32

	d.SubscribeNamed(event.TypeOrderForwarded, "failing", func(ctx context.Context, evt *event.Event) error {
		ran.Add(1)
		return errSink
	})
	d.SubscribeNamed(event.TypeOrderForwarded, "panicking", func(ctx context.Context, evt *event.Event) error {
		ran.Add(1)
		panic("boom")
	})
	d.SubscribeNamed(event.TypeOrderForwarded, "ok", func(ctx context.Context, evt *event.Event) error {
		ran.Add(1)
		return nil
	})

	err := d.Dispatch(context.Background(), testEvent(event.TypeOrderForwarded))
	require.Error(t, err)
	assert.ErrorIs(t, err, errSink)
	assert.Contains(t, err.Error(), "handler panic: boom")
	assert.Equal(t, int32(3), ran.Load())
	assert.Equal(t, 2, logger.ErrorCount())
}

func TestDispatch_StopsOnCancelledContext(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.Subscribe(event.TypeOrderVerified, func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Dispatch(ctx, testEvent(event.TypeOrderVerified))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestDispatchAsync_CloseWaitsForHandlers(t *testing.T) {
	d := NewDispatcher()
	var done atomic.Int32

	for i := 0; i < 3; i++ {
		d.Subscribe(event.TypeApprovalRequested, func(ctx context.Context, evt *event.Event) error {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, testEvent(event.TypeApprovalRequested))
	cancel()

	require.NoError(t, d.Close())
	assert.Equal(t, int32(3), done.Load())
}

func TestDispatchAsync_HandlersSurviveRequestCancellation(t *testing.T) {
	d := NewDispatcher()
	var sawErr atomic.Bool

	d.Subscribe(event.TypeOrderCreated, func(ctx context.Context, evt *event.Event) error {
		time.Sleep(5 * time.Millisecond)
		sawErr.Store(ctx.Err() != nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	d.DispatchAsync(ctx, testEvent(event.TypeOrderCreated))
	cancel()
	require.NoError(t, d.Close())

	assert.False(t, sawErr.Load())
}

func TestClose(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.Close(), ErrClosed)
	assert.ErrorIs(t, d.Dispatch(context.Background(), testEvent(event.TypeOrderCreated)), ErrClosed)

	d.DispatchAsync(context.Background(), testEvent(event.TypeOrderCreated))
	assert.Equal(t, 1, logger.ErrorCount())
}
