package kafka

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleWithRetryRetriesSameMessageUntilSuccess(t *testing.T) {
	var calls int
	var seen [][]byte
	handler := func(_ context.Context, message []byte) error {
		calls++
		seen = append(seen, message)
		if calls < 3 {
			return fmt.Errorf("distributor unreachable")
		}
		return nil
	}

	err := handleWithRetry(context.Background(), handler, []byte("order-4411"), time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, 3, calls, "the failed message is retried, not skipped")
	for _, message := range seen {
		assert.Equal(t, "order-4411", string(message), "every attempt delivers the same message")
	}
}

func TestHandleWithRetryStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	handler := func(context.Context, []byte) error {
		calls++
		cancel()
		return fmt.Errorf("still failing")
	}

	err := handleWithRetry(ctx, handler, []byte("order-4411"), time.Hour, zap.NewNop())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "shutdown leaves the message uncommitted instead of spinning")
}

func TestHandleWithRetryImmediateSuccessDoesNotPause(t *testing.T) {
	handler := func(context.Context, []byte) error { return nil }

	start := time.Now()
	err := handleWithRetry(context.Background(), handler, []byte("order-4411"), time.Hour, zap.NewNop())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
