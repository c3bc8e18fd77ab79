package wait

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUntil(t *testing.T) {
	t.Run("returns immediately when the check already holds", func(t *testing.T) {
		var calls atomic.Int64
		start := time.Now()
		err := Until(context.Background(), "subject", "condition", time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
			calls.Add(1)
			return true, nil
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, calls.Load())
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("polls until the check flips", func(t *testing.T) {
		var calls atomic.Int64
		err := Until(context.Background(), "subject", "condition", time.Second, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			return calls.Add(1) >= 3, nil
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, calls.Load(), int64(3))
	})

	t.Run("treats check errors as not yet satisfied", func(t *testing.T) {
		var calls atomic.Int64
		err := Until(context.Background(), "subject", "condition", time.Second, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			if calls.Add(1) < 3 {
				return false, errors.New("element does not exist yet")
			}
			return true, nil
		})
		require.NoError(t, err)
	})

	t.Run("fails at the deadline, not earlier", func(t *testing.T) {
		timeout := 150 * time.Millisecond
		start := time.Now()
		err := Until(context.Background(), "subject", "condition", timeout, 40*time.Millisecond, func(ctx context.Context) (bool, error) {
			return false, nil
		})
		elapsed := time.Since(start)

		var timedOut *TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.GreaterOrEqual(t, elapsed, timeout)
	})

	t.Run("timeout error carries subject, condition, and last failure", func(t *testing.T) {
		cause := errors.New("no such element")
		err := Until(context.Background(), "the button", "visible", 30*time.Millisecond, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
			return false, cause
		})

		var timedOut *TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.Equal(t, "the button", timedOut.Subject)
		assert.Equal(t, "visible", timedOut.Condition)
		assert.False(t, timedOut.Negated)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "waiting for the button to become visible")
		assert.Contains(t, err.Error(), "no such element")
	})

	t.Run("last clean false clears a previous error", func(t *testing.T) {
		var calls atomic.Int64
		err := Until(context.Background(), "subject", "condition", 50*time.Millisecond, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
			if calls.Add(1) == 1 {
				return false, errors.New("transient probe failure")
			}
			return false, nil
		})

		var timedOut *TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.NoError(t, timedOut.LastErr)
	})

	t.Run("honors context cancellation between polls", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(30*time.Millisecond, cancel)

		err := Until(ctx, "subject", "condition", 10*time.Second, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
			return false, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestUntilNot(t *testing.T) {
	t.Run("succeeds once the check stops holding", func(t *testing.T) {
		var calls atomic.Int64
		err := UntilNot(context.Background(), "subject", "condition", time.Second, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			return calls.Add(1) < 3, nil
		})
		require.NoError(t, err)
	})

	t.Run("a check error counts as condition not holding", func(t *testing.T) {
		err := UntilNot(context.Background(), "subject", "visible", time.Second, 5*time.Millisecond, func(ctx context.Context) (bool, error) {
			return false, errors.New("element vanished")
		})
		assert.NoError(t, err)
	})

	t.Run("times out while the check keeps holding", func(t *testing.T) {
		err := UntilNot(context.Background(), "the spinner", "visible", 30*time.Millisecond, 10*time.Millisecond, func(ctx context.Context) (bool, error) {
			return true, nil
		})

		var timedOut *TimeoutError
		require.ErrorAs(t, err, &timedOut)
		assert.True(t, timedOut.Negated)
		assert.Contains(t, err.Error(), "waiting for the spinner to stop being visible")
	})
}
