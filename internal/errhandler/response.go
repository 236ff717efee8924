package errhandler

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/avamlgw/internal/observability"
)

// retryAfterSeconds is the Retry-After hint attached to rate-limit and
// circuit-breaker responses.
const retryAfterSeconds = 60

// ringCapacity bounds the in-memory error log.
const ringCapacity = 1000

// statusCodes maps each category to the HTTP status relayed to callers.
var statusCodes = map[Category]int{
	CategoryAuthentication: 401,
	CategoryAuthorization:  403,
	CategoryValidation:     400,
	CategoryTimeout:        408,
	CategoryRateLimit:      429,
	CategoryUpstreamError:  502,
	CategoryNetworkError:   503,
	CategoryCircuitBreaker: 503,
	CategoryInternalError:  500,
	CategoryUnknown:        500,
}

// messages holds the generic per-category messages. Low and medium severity
// responses carry only these, never the underlying error text.
var messages = map[Category]string{
	CategoryAuthentication: "Authentication failed",
	CategoryAuthorization:  "Access denied",
	CategoryValidation:     "Invalid request data",
	CategoryTimeout:        "Request timeout",
	CategoryRateLimit:      "Rate limit exceeded",
	CategoryUpstreamError:  "Prediction service temporarily unavailable",
	CategoryNetworkError:   "Network connectivity issue",
	CategoryCircuitBreaker: "Service temporarily unavailable",
	CategoryInternalError:  "Internal server error",
	CategoryUnknown:        "An unexpected error occurred",
}

// ErrorResponse is the structured failure representation handed to the
// legacy-facing layer.
type ErrorResponse struct {
	ErrorID       string   `json:"error_id"`
	StatusCode    int      `json:"status_code"`
	ErrorCode     string   `json:"error_code"`
	Message       string   `json:"message"`
	Detail        string   `json:"detail,omitempty"`
	Category      Category `json:"category"`
	Severity      Severity `json:"severity"`
	Timestamp     string   `json:"timestamp"`
	RequestID     string   `json:"request_id,omitempty"`
	CorrelationID string   `json:"correlation_id,omitempty"`
	RetryAfter    int      `json:"retry_after,omitempty"`
}

// ErrorRecord is one entry in the bounded error log.
type ErrorRecord struct {
	Category      Category
	Severity      Severity
	StatusCode    int
	Message       string
	Detail        string
	RetryAfter    int
	CorrelationID string
	RequestID     string
	Timestamp     time.Time
}

// Notifier is the alert-hook collaborator. Notifications are
// fire-and-forget; failures are the notifier's problem.
type Notifier interface {
	Notify(alertType string, payload map[string]interface{})
}

// Handler classifies errors, builds responses, and keeps aggregate error
// metrics plus a bounded log of recent errors.
type Handler struct {
	logger   observability.Logger
	notifier Notifier

	mu         sync.Mutex
	total      uint64
	byCategory map[Category]uint64
	bySeverity map[Severity]uint64
	lastError  time.Time
	ring       *recordRing
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithNotifier sets the alert-hook collaborator.
func WithNotifier(n Notifier) HandlerOption {
	return func(h *Handler) {
		h.notifier = n
	}
}

// NewHandler creates a new error handler.
func NewHandler(logger observability.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}

	h := &Handler{
		logger:     logger,
		byCategory: make(map[Category]uint64),
		bySeverity: make(map[Severity]uint64),
		ring:       newRecordRing(ringCapacity),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Response classifies err and builds the structured response for it,
// recording metrics, the error log entry, and any alert. A fault inside
// classification falls back to a hardcoded internal-error response rather
// than propagating.
func (h *Handler) Response(err error, requestID, correlationID string) (resp *ErrorResponse) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("error handler fault",
				observability.Any("panic", r),
				observability.String("requestId", requestID))
			resp = h.fallbackResponse(requestID, correlationID)
		}
	}()

	category, severity := Classify(err)
	resp = h.buildResponse(err, category, severity, requestID, correlationID)

	h.record(resp)
	h.logError(err, resp)
	h.checkAlerts(resp)

	return resp
}

// buildResponse assembles the ErrorResponse for a classified error.
func (h *Handler) buildResponse(
	err error,
	category Category,
	severity Severity,
	requestID, correlationID string,
) *ErrorResponse {
	resp := &ErrorResponse{
		ErrorID:       fmt.Sprintf("err_%s", uuid.NewString()),
		StatusCode:    statusCodes[category],
		ErrorCode:     ErrorCode(category, severity),
		Message:       messages[category],
		Category:      category,
		Severity:      severity,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:     requestID,
		CorrelationID: correlationID,
	}

	// Raw error text is exposed only where operators need it; low and
	// medium responses stay generic to avoid leaking internals.
	if err != nil && (severity == SeverityHigh || severity == SeverityCritical) {
		resp.Detail = err.Error()
	}

	if category == CategoryRateLimit || category == CategoryCircuitBreaker {
		resp.RetryAfter = retryAfterSeconds
	}

	return resp
}

// fallbackResponse is the hardcoded response used when classification
// itself fails.
func (h *Handler) fallbackResponse(requestID, correlationID string) *ErrorResponse {
	return &ErrorResponse{
		ErrorID:       fmt.Sprintf("err_%s", uuid.NewString()),
		StatusCode:    500,
		ErrorCode:     ErrorCode(CategoryInternalError, SeverityCritical),
		Message:       messages[CategoryInternalError],
		Detail:        "error handler fault",
		Category:      CategoryInternalError,
		Severity:      SeverityCritical,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		RequestID:     requestID,
		CorrelationID: correlationID,
	}
}

// ErrorCode returns the stable error code for a classification pair.
func ErrorCode(category Category, severity Severity) string {
	return strings.ToUpper(string(category)) + "_" + strings.ToUpper(string(severity))
}

// record updates aggregate counters and the bounded error log.
func (h *Handler) record(resp *ErrorResponse) {
	recordClassification(resp.Category, resp.Severity)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.total++
	h.byCategory[resp.Category]++
	h.bySeverity[resp.Severity]++
	h.lastError = time.Now()

	h.ring.append(ErrorRecord{
		Category:      resp.Category,
		Severity:      resp.Severity,
		StatusCode:    resp.StatusCode,
		Message:       resp.Message,
		Detail:        resp.Detail,
		RetryAfter:    resp.RetryAfter,
		CorrelationID: resp.CorrelationID,
		RequestID:     resp.RequestID,
		Timestamp:     time.Now(),
	})
}

// logError logs a classified error at a level matching its severity.
func (h *Handler) logError(err error, resp *ErrorResponse) {
	fields := []observability.Field{
		observability.String("errorId", resp.ErrorID),
		observability.String("category", string(resp.Category)),
		observability.String("severity", string(resp.Severity)),
		observability.String("requestId", resp.RequestID),
		observability.String("correlationId", resp.CorrelationID),
		observability.Error(err),
	}

	switch resp.Severity {
	case SeverityCritical, SeverityHigh:
		h.logger.Error(resp.Message, fields...)
	case SeverityMedium:
		h.logger.Warn(resp.Message, fields...)
	default:
		h.logger.Info(resp.Message, fields...)
	}
}

// checkAlerts fires alert-hook notifications for conditions operators
// care about.
func (h *Handler) checkAlerts(resp *ErrorResponse) {
	if h.notifier == nil {
		return
	}

	if resp.Severity == SeverityCritical {
		h.notify("critical_error", map[string]interface{}{
			"category":  string(resp.Category),
			"severity":  string(resp.Severity),
			"error_id":  resp.ErrorID,
			"timestamp": resp.Timestamp,
		})
	}

	if resp.Category == CategoryCircuitBreaker {
		h.notify("circuit_breaker_open", map[string]interface{}{
			"error_id":  resp.ErrorID,
			"timestamp": resp.Timestamp,
		})
	}
}

// notify delivers one alert without blocking the caller.
func (h *Handler) notify(alertType string, payload map[string]interface{}) {
	notifier := h.notifier
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Warn("alert notifier panicked",
					observability.String("alertType", alertType),
					observability.Any("panic", r))
			}
		}()
		notifier.Notify(alertType, payload)
	}()
}

// Metrics is a snapshot of aggregate error counters.
type Metrics struct {
	Total         uint64
	ByCategory    map[Category]uint64
	BySeverity    map[Severity]uint64
	LastErrorTime time.Time
}

// Metrics returns a snapshot of the aggregate error counters.
func (h *Handler) Metrics() Metrics {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := Metrics{
		Total:         h.total,
		ByCategory:    make(map[Category]uint64, len(h.byCategory)),
		BySeverity:    make(map[Severity]uint64, len(h.bySeverity)),
		LastErrorTime: h.lastError,
	}
	for k, v := range h.byCategory {
		m.ByCategory[k] = v
	}
	for k, v := range h.bySeverity {
		m.BySeverity[k] = v
	}
	return m
}

// Recent returns up to limit most recent error records, newest last.
func (h *Handler) Recent(limit int) []ErrorRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ring.recent(limit)
}
