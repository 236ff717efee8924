// Package retry decides retry eligibility and computes jittered
// exponential backoff delays for upstream prediction calls.
package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Default retry configuration constants.
const (
	// DefaultMaxAttempts is the default number of attempts, including the first.
	DefaultMaxAttempts = 3

	// DefaultBaseDelay is the default base backoff delay.
	DefaultBaseDelay = time.Second

	// DefaultMaxDelay is the default backoff ceiling.
	DefaultMaxDelay = 60 * time.Second

	// DefaultExponentialBase is the default backoff growth factor.
	DefaultExponentialBase = 2.0
)

// Policy decides whether a failed attempt is retried and how long to wait
// before the next attempt.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the backoff delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay before jitter is applied.
	MaxDelay time.Duration

	// ExponentialBase is the factor by which the delay grows per attempt.
	ExponentialBase float64

	// Jitter disables the random delay scaling when false. Jitter is on by
	// default; it desynchronizes concurrent retriers hitting one target.
	Jitter bool
}

// DefaultPolicy returns a Policy with default values.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:     DefaultMaxAttempts,
		BaseDelay:       DefaultBaseDelay,
		MaxDelay:        DefaultMaxDelay,
		ExponentialBase: DefaultExponentialBase,
		Jitter:          true,
	}
}

// Validate normalizes out-of-range fields to their defaults.
func (p *Policy) Validate() {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultBaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultMaxDelay
	}
	if p.ExponentialBase <= 1 {
		p.ExponentialBase = DefaultExponentialBase
	}
}

// ShouldRetry reports whether the given failed attempt is eligible for a
// retry. attempt is zero-based: attempt 0 is the first call.
func (p *Policy) ShouldRetry(err error, attempt int) bool {
	if attempt+1 >= p.MaxAttempts {
		return false
	}
	return IsRetryable(err)
}

// Delay returns the backoff delay before retrying the given zero-based
// attempt: min(base * exponentialBase^attempt, max), scaled by a uniform
// random factor in [0.5, 1.0] when jitter is enabled.
func (p *Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(p.BaseDelay) * math.Pow(p.ExponentialBase, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter {
		// Jitter for retry timing is not security-sensitive.
		//nolint:gosec // G404
		delay *= 0.5 + 0.5*rand.Float64()
	}

	return time.Duration(delay)
}
