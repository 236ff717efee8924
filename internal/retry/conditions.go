package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"syscall"
)

// StatusCoder is implemented by errors carrying an upstream HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// retryableStatusCodes are the upstream statuses worth another attempt.
var retryableStatusCodes = map[int]bool{
	429: true,
	502: true,
	503: true,
	504: true,
}

// IsRetryable reports whether the error is transient: a timeout, a
// connection failure, or an upstream status in {429, 502, 503, 504}.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return retryableStatusCodes[sc.StatusCode()]
	}

	return IsTimeout(err) || IsConnectionError(err)
}

// IsTimeout reports whether the error is timeout-shaped.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	return false
}

// IsConnectionError reports whether the error is connection-shaped.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
