package pool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/habedi/solekit/pkg/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Run(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	var count atomic.Int64

	workerFunc := func(ctx context.Context, item int) error {
		count.Add(1)
		time.Sleep(10 * time.Millisecond)
		return nil
	}

	errs := pool.Run(context.Background(), items, 3, workerFunc)

	assert.Empty(t, errs)
	assert.Equal(t, int64(len(items)), count.Load())
}

func TestPool_CollectsErrors(t *testing.T) {
	items := []int{1, 2, 3, 4}
	expectedErr := errors.New("worker failed")

	workerFunc := func(ctx context.Context, item int) error {
		if item%2 == 0 {
			return expectedErr
		}
		return nil
	}

	errs := pool.Run(context.Background(), items, 2, workerFunc)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], expectedErr)
	assert.ErrorIs(t, errs[1], expectedErr)
}

func TestPool_EmptyItems(t *testing.T) {
	called := false
	errs := pool.Run(context.Background(), []string{}, 4, func(ctx context.Context, s string) error {
		called = true
		return nil
	})
	assert.Empty(t, errs)
	assert.False(t, called)
}

func TestPool_NonPositiveWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		var count atomic.Int64
		errs := pool.Run(context.Background(), []int{1, 2, 3}, n, func(ctx context.Context, i int) error {
			count.Add(1)
			return nil
		})
		assert.Empty(t, errs)
		assert.Equal(t, int64(3), count.Load(), "workers=%d", n)
	}
}

func TestPool_NeverExceedsWorkerLimit(t *testing.T) {
	items := make([]int, 30)
	var current, peak atomic.Int64

	pool.Run(context.Background(), items, 4, func(ctx context.Context, _ int) error {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return nil
	})
	assert.LessOrEqual(t, peak.Load(), int64(4))
}

func TestPool_PanicBecomesError(t *testing.T) {
	errs := pool.Run(context.Background(), []string{"ok", "bad"}, 2, func(ctx context.Context, s string) error {
		if s == "bad" {
			panic("kaboom")
		}
		return nil
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "kaboom")
}

func TestPool_ContextCancellation(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	var processed atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())

	pool.Run(ctx, items, 2, func(ctx context.Context, item int) error {
		processed.Add(1)
		if item == 0 {
			cancel()
		}
		time.Sleep(time.Millisecond)
		return nil
	})

	assert.Less(t, processed.Load(), int64(len(items)))
}
