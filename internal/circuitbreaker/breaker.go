// Package circuitbreaker guards upstream prediction targets behind
// per-target circuit breakers so a persistently failing target is not
// hammered while it recovers.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"github.com/vyrodovalexey/avamlgw/internal/observability"
)

// State represents the state of a circuit breaker.
type State int

const (
	// StateClosed indicates the circuit is closed and calls are allowed.
	StateClosed State = iota

	// StateOpen indicates the circuit is open and calls are rejected.
	StateOpen

	// StateHalfOpen indicates a single trial call is probing the target.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Config holds configuration for a circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failed calls before
	// the circuit opens.
	FailureThreshold int

	// RecoveryTimeout is how long the circuit stays open before a single
	// trial call is admitted.
	RecoveryTimeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

// Validate normalizes out-of-range fields to their defaults.
func (c *Config) Validate() {
	if c.FailureThreshold < 1 {
		c.FailureThreshold = 5
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = 30 * time.Second
	}
}

// Breaker is a per-target circuit breaker.
//
// Transitions run only Closed -> Open -> HalfOpen -> {Closed | Open}.
// HalfOpen admission is serialized: when the recovery deadline passes, the
// first caller to reach Allow acquires the single trial slot under the
// breaker lock; every other caller is rejected with ErrCircuitOpen until
// that trial reports its outcome.
type Breaker struct {
	name   string
	config *Config
	logger observability.Logger

	mu            sync.Mutex
	state         State
	failureCount  int
	openedAt      time.Time
	trialInFlight bool
}

// New creates a new circuit breaker for the named target.
func New(name string, config *Config, logger observability.Logger) *Breaker {
	if config == nil {
		config = DefaultConfig()
	}
	config.Validate()

	if logger == nil {
		logger = observability.NopLogger()
	}

	recordState(name, StateClosed)

	return &Breaker{
		name:   name,
		config: config,
		logger: logger,
		state:  StateClosed,
	}
}

// Allow reports whether a call may proceed. Returns ErrCircuitOpen when the
// circuit rejects the call; the caller must not touch the network in that
// case.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return nil

	case StateOpen:
		if time.Now().Before(b.openedAt.Add(b.config.RecoveryTimeout)) {
			recordRejection(b.name)
			return ErrCircuitOpen
		}
		b.transitionTo(StateHalfOpen)
		b.trialInFlight = true
		return nil

	case StateHalfOpen:
		// The trial slot is taken; everyone else still observes open.
		recordRejection(b.name)
		return ErrCircuitOpen

	default:
		recordRejection(b.name)
		return ErrCircuitOpen
	}
}

// RecordSuccess records one successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	recordSuccess(b.name)

	switch b.state {
	case StateHalfOpen:
		b.trialInFlight = false
		b.failureCount = 0
		b.transitionTo(StateClosed)

	case StateClosed:
		b.failureCount = 0
	}
}

// RecordFailure records one failed call. A call that exhausted its retries
// counts as exactly one failure.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	recordFailure(b.name)

	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.config.FailureThreshold {
			b.openedAt = time.Now()
			b.transitionTo(StateOpen)
		}

	case StateHalfOpen:
		b.trialInFlight = false
		b.openedAt = time.Now()
		b.transitionTo(StateOpen)
	}
}

// transitionTo moves the breaker to a new state.
// Must be called with the lock held.
func (b *Breaker) transitionTo(newState State) {
	oldState := b.state
	b.state = newState

	recordState(b.name, newState)
	recordTransition(b.name, oldState, newState)

	b.logger.Info("circuit breaker state changed",
		observability.String("target", b.name),
		observability.String("from", oldState.String()),
		observability.String("to", newState.String()),
		observability.Int("failureCount", b.failureCount),
	)
}

// State returns the current state of the breaker.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Name returns the target name of the breaker.
func (b *Breaker) Name() string {
	return b.name
}

// Stats holds a snapshot of breaker state.
type Stats struct {
	State            State
	FailureCount     int
	OpenedAt         time.Time
	RecoveryDeadline time.Time
}

// Stats returns the current statistics of the breaker.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Stats{
		State:        b.state,
		FailureCount: b.failureCount,
		OpenedAt:     b.openedAt,
	}
	if b.state == StateOpen {
		s.RecoveryDeadline = b.openedAt.Add(b.config.RecoveryTimeout)
	}
	return s
}
