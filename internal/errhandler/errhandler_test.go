package errhandler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avamlgw/internal/auth"
	"github.com/vyrodovalexey/avamlgw/internal/circuitbreaker"
	"github.com/vyrodovalexey/avamlgw/internal/upstream"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		err          error
		wantCategory Category
		wantSeverity Severity
	}{
		{
			name:         "authentication failure",
			err:          fmt.Errorf("validate: %w", auth.ErrAuthenticationFailed),
			wantCategory: CategoryAuthentication,
			wantSeverity: SeverityMedium,
		},
		{
			name:         "context deadline",
			err:          context.DeadlineExceeded,
			wantCategory: CategoryTimeout,
			wantSeverity: SeverityMedium,
		},
		{
			name:         "upstream 401",
			err:          &upstream.StatusError{Code: 401},
			wantCategory: CategoryAuthentication,
			wantSeverity: SeverityMedium,
		},
		{
			name:         "upstream 403",
			err:          &upstream.StatusError{Code: 403},
			wantCategory: CategoryAuthorization,
			wantSeverity: SeverityMedium,
		},
		{
			name:         "upstream 429",
			err:          &upstream.StatusError{Code: 429},
			wantCategory: CategoryRateLimit,
			wantSeverity: SeverityLow,
		},
		{
			name:         "upstream 422",
			err:          &upstream.StatusError{Code: 422},
			wantCategory: CategoryValidation,
			wantSeverity: SeverityLow,
		},
		{
			name:         "upstream 503",
			err:          &upstream.StatusError{Code: 503},
			wantCategory: CategoryUpstreamError,
			wantSeverity: SeverityHigh,
		},
		{
			name:         "circuit open",
			err:          circuitbreaker.ErrCircuitOpen,
			wantCategory: CategoryCircuitBreaker,
			wantSeverity: SeverityHigh,
		},
		{
			name:         "connection refused",
			err:          fmt.Errorf("dial: %w", syscall.ECONNREFUSED),
			wantCategory: CategoryNetworkError,
			wantSeverity: SeverityMedium,
		},
		{
			name:         "unmatched error",
			err:          errors.New("something odd"),
			wantCategory: CategoryUnknown,
			wantSeverity: SeverityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			category, severity := Classify(tt.err)
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantSeverity, severity)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	err := &upstream.StatusError{Code: 503}
	firstCat, firstSev := Classify(err)
	for i := 0; i < 50; i++ {
		cat, sev := Classify(err)
		assert.Equal(t, firstCat, cat)
		assert.Equal(t, firstSev, sev)
	}
}

func TestHandler_Response_RateLimit(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	resp := h.Response(&upstream.StatusError{Code: 429}, "req-1", "corr-1")

	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, "RATE_LIMIT_LOW", resp.ErrorCode)
	assert.Equal(t, CategoryRateLimit, resp.Category)
	assert.Equal(t, SeverityLow, resp.Severity)
	assert.Equal(t, 60, resp.RetryAfter)
	assert.Empty(t, resp.Detail)
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "corr-1", resp.CorrelationID)
	assert.NotEmpty(t, resp.ErrorID)
}

func TestHandler_Response_UpstreamError(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	resp := h.Response(&upstream.StatusError{Code: 503, Body: "down"}, "req-2", "")

	assert.Equal(t, 502, resp.StatusCode)
	assert.Equal(t, "UPSTREAM_ERROR_HIGH", resp.ErrorCode)
	assert.Equal(t, SeverityHigh, resp.Severity)
	assert.NotEmpty(t, resp.Detail)
	assert.Zero(t, resp.RetryAfter)
}

func TestHandler_Response_CircuitBreaker(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	resp := h.Response(circuitbreaker.ErrCircuitOpen, "", "")

	assert.Equal(t, 503, resp.StatusCode)
	assert.Equal(t, "CIRCUIT_BREAKER_HIGH", resp.ErrorCode)
	assert.Equal(t, 60, resp.RetryAfter)
}

func TestHandler_Response_UniqueErrorIDs(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		resp := h.Response(errors.New("boom"), "", "")
		assert.False(t, seen[resp.ErrorID])
		seen[resp.ErrorID] = true
	}
}

func TestHandler_Metrics(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	h.Response(&upstream.StatusError{Code: 429}, "", "")
	h.Response(&upstream.StatusError{Code: 503}, "", "")
	h.Response(&upstream.StatusError{Code: 503}, "", "")

	m := h.Metrics()
	assert.Equal(t, uint64(3), m.Total)
	assert.Equal(t, uint64(1), m.ByCategory[CategoryRateLimit])
	assert.Equal(t, uint64(2), m.ByCategory[CategoryUpstreamError])
	assert.Equal(t, uint64(1), m.BySeverity[SeverityLow])
	assert.Equal(t, uint64(2), m.BySeverity[SeverityHigh])
	assert.False(t, m.LastErrorTime.IsZero())
}

func TestHandler_Recent_Order(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	h.Response(&upstream.StatusError{Code: 429}, "first", "")
	h.Response(&upstream.StatusError{Code: 503}, "second", "")

	recent := h.Recent(10)
	require.Len(t, recent, 2)
	assert.Equal(t, "first", recent[0].RequestID)
	assert.Equal(t, "second", recent[1].RequestID)
}

func TestRecordRing_EvictsOldest(t *testing.T) {
	t.Parallel()

	ring := newRecordRing(3)
	for i := 0; i < 5; i++ {
		ring.append(ErrorRecord{RequestID: fmt.Sprintf("req-%d", i)})
	}

	all := ring.recent(0)
	require.Len(t, all, 3)
	assert.Equal(t, "req-2", all[0].RequestID)
	assert.Equal(t, "req-3", all[1].RequestID)
	assert.Equal(t, "req-4", all[2].RequestID)

	last := ring.recent(2)
	require.Len(t, last, 2)
	assert.Equal(t, "req-3", last[0].RequestID)
	assert.Equal(t, "req-4", last[1].RequestID)
}

type captureNotifier struct {
	mu     sync.Mutex
	alerts []string
	done   chan struct{}
}

func (n *captureNotifier) Notify(alertType string, payload map[string]interface{}) {
	n.mu.Lock()
	n.alerts = append(n.alerts, alertType)
	n.mu.Unlock()
	n.done <- struct{}{}
}

func (n *captureNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.alerts))
	copy(out, n.alerts)
	return out
}

func TestHandler_CircuitBreakerAlert(t *testing.T) {
	t.Parallel()

	notifier := &captureNotifier{done: make(chan struct{}, 4)}
	h := NewHandler(nil, WithNotifier(notifier))

	h.Response(circuitbreaker.ErrCircuitOpen, "", "")

	select {
	case <-notifier.done:
	case <-time.After(time.Second):
		t.Fatal("expected circuit breaker alert")
	}
	assert.Contains(t, notifier.types(), "circuit_breaker_open")
}

func TestHandler_NoAlertWithoutNotifier(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil)
	resp := h.Response(circuitbreaker.ErrCircuitOpen, "", "")
	assert.NotNil(t, resp)
}
