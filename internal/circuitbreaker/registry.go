package circuitbreaker

import (
	"sync"

	"github.com/vyrodovalexey/avamlgw/internal/observability"
)

// Registry owns the per-target breaker table. Breakers are created lazily
// on first use and live for the process lifetime.
type Registry struct {
	breakers sync.Map
	config   *Config
	logger   observability.Logger
}

// NewRegistry creates a new circuit breaker registry.
func NewRegistry(config *Config, logger observability.Logger) *Registry {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	return &Registry{
		config: config,
		logger: logger,
	}
}

// Get returns the breaker for the target, or nil if none exists yet.
func (r *Registry) Get(target string) *Breaker {
	value, ok := r.breakers.Load(target)
	if !ok {
		return nil
	}
	return value.(*Breaker)
}

// GetOrCreate returns the breaker for the target, creating it on first use.
func (r *Registry) GetOrCreate(target string) *Breaker {
	if value, ok := r.breakers.Load(target); ok {
		return value.(*Breaker)
	}

	b := New(target, r.config, r.logger)

	actual, loaded := r.breakers.LoadOrStore(target, b)
	if loaded {
		return actual.(*Breaker)
	}

	r.logger.Debug("created circuit breaker",
		observability.String("target", target))

	return b
}

// Stats returns statistics for all breakers keyed by target.
func (r *Registry) Stats() map[string]Stats {
	stats := make(map[string]Stats)
	r.breakers.Range(func(key, value interface{}) bool {
		stats[key.(string)] = value.(*Breaker).Stats()
		return true
	})
	return stats
}

// Count returns the number of breakers in the registry.
func (r *Registry) Count() int {
	count := 0
	r.breakers.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}
