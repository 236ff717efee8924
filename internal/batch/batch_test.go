package batch

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
)

func TestCoordinator_PartialFailure_OrderPreserved(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)

	result := c.Run(context.Background(), 5, 2, func(ctx context.Context, index int) (interface{}, error) {
		if index == 1 || index == 3 {
			return nil, fmt.Errorf("element %d failed", index)
		}
		return fmt.Sprintf("value-%d", index), nil
	})

	require.Len(t, result.Outcomes, 5)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 2, result.Failed)

	for i, o := range result.Outcomes {
		assert.Equal(t, i, o.Index)
		if i == 1 || i == 3 {
			assert.Error(t, o.Err)
		} else {
			require.NoError(t, o.Err)
			assert.Equal(t, fmt.Sprintf("value-%d", i), o.Value)
		}
	}
}

func TestCoordinator_RespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)

	var current, peak atomic.Int32
	var mu sync.Mutex

	c.Run(context.Background(), 20, 3, func(ctx context.Context, index int) (interface{}, error) {
		n := current.Add(1)
		mu.Lock()
		if n > peak.Load() {
			peak.Store(n)
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)
		current.Add(-1)
		return index, nil
	})

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestCoordinator_AllSucceed(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)
	result := c.Run(context.Background(), 4, 0, func(ctx context.Context, index int) (interface{}, error) {
		return index * 2, nil
	})

	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 0, result.Failed)
	for i, o := range result.Outcomes {
		assert.Equal(t, i*2, o.Value)
	}
}

func TestCoordinator_EmptyBatch(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)
	result := c.Run(context.Background(), 0, 2, func(ctx context.Context, index int) (interface{}, error) {
		return nil, errors.New("should not run")
	})

	assert.Empty(t, result.Outcomes)
	assert.Equal(t, 0, result.Total)
}

func TestCoordinator_WorkerPanicIsolated(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)
	result := c.Run(context.Background(), 3, 2, func(ctx context.Context, index int) (interface{}, error) {
		if index == 1 {
			panic("boom")
		}
		return index, nil
	})

	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)

	var panicErr *WorkerPanicError
	require.ErrorAs(t, result.Outcomes[1].Err, &panicErr)
	assert.Equal(t, 1, panicErr.Index)
}

func TestCoordinator_FailureDoesNotStarveQueue(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(nil)

	// More elements than slots, every one failing; Run must still finish.
	result := c.Run(context.Background(), 10, 2, func(ctx context.Context, index int) (interface{}, error) {
		return nil, errors.New("always fails")
	})

	assert.Equal(t, 10, result.Failed)
	assert.Equal(t, 0, result.Successful)
}
