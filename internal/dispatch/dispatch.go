// Package dispatch executes upstream operations under the per-target
// circuit breaker composed with the retry policy.
package dispatch

import (
	"context"
	"time"

	"github.com/vyrodovalexey/avamlgw/internal/circuitbreaker"
	"github.com/vyrodovalexey/avamlgw/internal/observability"
	"github.com/vyrodovalexey/avamlgw/internal/retry"
)

// Operation is one externally supplied upstream call.
type Operation func(ctx context.Context) (interface{}, error)

// Dispatcher composes the retry policy with the per-target breaker
// table. All callers share one Dispatcher handle; there is no ambient
// breaker state.
type Dispatcher struct {
	registry *circuitbreaker.Registry
	policy   *retry.Policy
	logger   observability.Logger
}

// New creates a Dispatcher.
func New(registry *circuitbreaker.Registry, policy *retry.Policy, logger observability.Logger) *Dispatcher {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if policy == nil {
		policy = retry.DefaultPolicy()
	}
	policy.Validate()

	return &Dispatcher{
		registry: registry,
		policy:   policy,
		logger:   logger,
	}
}

// Execute runs op against targetKey under the target's breaker with
// retry. An open breaker rejects the call before any attempt. Attempts
// are strictly sequential; no new attempt starts once the context
// deadline has passed. The breaker observes exactly one outcome per
// Execute call: a success however many retries it took, or a single
// failure when every attempt is exhausted, in which case the last
// underlying error is returned.
func (d *Dispatcher) Execute(ctx context.Context, targetKey string, op Operation) (interface{}, error) {
	breaker := d.registry.GetOrCreate(targetKey)

	if err := breaker.Allow(); err != nil {
		d.logger.Debug("dispatch rejected by open circuit",
			observability.String("target", targetKey))
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < d.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		result, err := op(ctx)
		if err == nil {
			breaker.RecordSuccess()
			if attempt > 0 {
				d.logger.Debug("dispatch succeeded after retry",
					observability.String("target", targetKey),
					observability.Int("attempt", attempt+1))
			}
			return result, nil
		}

		lastErr = err
		if !d.policy.ShouldRetry(err, attempt) {
			break
		}

		delay := d.policy.Delay(attempt)
		d.logger.Debug("dispatch attempt failed, backing off",
			observability.String("target", targetKey),
			observability.Int("attempt", attempt+1),
			observability.Duration("delay", delay),
			observability.Error(err))

		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
		case <-time.After(delay):
			continue
		}
		break
	}

	breaker.RecordFailure()
	d.logger.Warn("dispatch exhausted",
		observability.String("target", targetKey),
		observability.Error(lastErr))

	return nil, lastErr
}

// Stats returns the breaker statistics for every known target.
func (d *Dispatcher) Stats() map[string]circuitbreaker.Stats {
	return d.registry.Stats()
}
