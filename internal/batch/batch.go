// Package batch runs independent sub-requests with bounded concurrency
// and order-preserving partial-failure semantics.
package batch

import (
	"context"
	"sync"

	"github.com/vyrodovalexey/avamlgw/internal/observability"
)

// DefaultLimit is the concurrency bound applied when callers pass a
// non-positive limit.
const DefaultLimit = 10

// Worker executes one sub-request by index.
type Worker func(ctx context.Context, index int) (interface{}, error)

// Outcome is the result of one sub-request. Exactly one of Value and Err
// is meaningful, selected by Err.
type Outcome struct {
	Index int
	Value interface{}
	Err   error
}

// Result aggregates a batch run. Outcomes[i] always corresponds to input
// element i.
type Result struct {
	Outcomes   []Outcome
	Total      int
	Successful int
	Failed     int
}

// Coordinator fans out sub-requests through a counting semaphore.
type Coordinator struct {
	logger observability.Logger
}

// NewCoordinator creates a batch coordinator.
func NewCoordinator(logger observability.Logger) *Coordinator {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Coordinator{logger: logger}
}

// Run executes n sub-requests through worker with at most limit running
// concurrently. A failing worker affects only its own outcome; every
// semaphore slot is released regardless of how the worker ends.
func (c *Coordinator) Run(ctx context.Context, n, limit int, worker Worker) *Result {
	if limit <= 0 {
		limit = DefaultLimit
	}

	result := &Result{
		Outcomes: make([]Outcome, n),
		Total:    n,
	}

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := c.invoke(ctx, index, worker)
			result.Outcomes[index] = Outcome{Index: index, Value: value, Err: err}
		}(i)
	}
	wg.Wait()

	for _, o := range result.Outcomes {
		if o.Err != nil {
			result.Failed++
		} else {
			result.Successful++
		}
	}

	c.logger.Debug("batch completed",
		observability.Int("total", result.Total),
		observability.Int("successful", result.Successful),
		observability.Int("failed", result.Failed))

	return result
}

// invoke runs one worker, converting a panic into that element's error
// so a crashing sub-request cannot take down the batch.
func (c *Coordinator) invoke(ctx context.Context, index int, worker Worker) (value interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("batch worker panicked",
				observability.Int("index", index),
				observability.Any("panic", r))
			err = &WorkerPanicError{Index: index, Value: r}
		}
	}()
	return worker(ctx, index)
}
