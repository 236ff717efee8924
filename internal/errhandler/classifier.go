// Package errhandler classifies dispatch failures into a stable
// (category, severity) taxonomy and maps them to structured error
// responses the legacy-facing layer relays verbatim.
package errhandler

import (
	"errors"

	"github.com/vyrodovalexey/avamlgw/internal/auth"
	"github.com/vyrodovalexey/avamlgw/internal/circuitbreaker"
	"github.com/vyrodovalexey/avamlgw/internal/retry"
)

// Category classifies a failure by its origin.
type Category string

// Error categories.
const (
	CategoryAuthentication Category = "authentication"
	CategoryAuthorization  Category = "authorization"
	CategoryValidation     Category = "validation"
	CategoryTimeout        Category = "timeout"
	CategoryRateLimit      Category = "rate_limit"
	CategoryUpstreamError  Category = "upstream_error"
	CategoryNetworkError   Category = "network_error"
	CategoryCircuitBreaker Category = "circuit_breaker"
	CategoryInternalError  Category = "internal_error"
	CategoryUnknown        Category = "unknown"
)

// Severity grades how serious a failure is.
type Severity string

// Error severities. Critical is reserved for faults inside the
// classifier itself.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Classify maps an error to its (category, severity) pair. Classification
// is ordered; the first matching rule wins, so the same error always
// yields the same pair.
func Classify(err error) (Category, Severity) {
	if err == nil {
		return CategoryUnknown, SeverityMedium
	}

	// Credential and permission failures from the bridge.
	if errors.Is(err, auth.ErrAuthenticationFailed) {
		return CategoryAuthentication, SeverityMedium
	}

	if retry.IsTimeout(err) {
		return CategoryTimeout, SeverityMedium
	}

	var sc retry.StatusCoder
	if errors.As(err, &sc) {
		return classifyStatus(sc.StatusCode())
	}

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return CategoryCircuitBreaker, SeverityHigh
	}

	if retry.IsConnectionError(err) {
		return CategoryNetworkError, SeverityMedium
	}

	return CategoryUnknown, SeverityMedium
}

// classifyStatus maps an upstream HTTP status to a category.
func classifyStatus(status int) (Category, Severity) {
	switch {
	case status == 401:
		return CategoryAuthentication, SeverityMedium
	case status == 403:
		return CategoryAuthorization, SeverityMedium
	case status == 429:
		return CategoryRateLimit, SeverityLow
	case status >= 400 && status < 500:
		return CategoryValidation, SeverityLow
	case status >= 500:
		return CategoryUpstreamError, SeverityHigh
	default:
		return CategoryUnknown, SeverityMedium
	}
}
