// Package upstream implements the HTTP client for the prediction service.
// It builds the minimal payload and header shape the service expects and
// interprets one scoring response.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vyrodovalexey/avamlgw/internal/observability"
)

// DefaultUserAgent identifies the bridge to the prediction service.
const DefaultUserAgent = "avamlgw/1.0"

// maxErrorBodySize bounds how much of an error response body is retained.
const maxErrorBodySize = 4 << 10

// PredictionPayload is the request body sent to the prediction service.
type PredictionPayload struct {
	Data          []map[string]interface{} `json:"data"`
	Method        string                   `json:"method"`
	ModelID       string                   `json:"model_id,omitempty"`
	CorrelationID string                   `json:"correlation_id,omitempty"`
}

// NewPredictionPayload builds the scoring payload for one input map.
func NewPredictionPayload(input map[string]interface{}, modelID, correlationID string) *PredictionPayload {
	return &PredictionPayload{
		Data:          []map[string]interface{}{input},
		Method:        "predict",
		ModelID:       modelID,
		CorrelationID: correlationID,
	}
}

// PredictionResult is the interpreted prediction service response. The first
// element of the service's result array is the prediction.
type PredictionResult struct {
	Prediction   interface{}
	Confidence   *float64
	ModelVersion string
}

// rawResponse mirrors the prediction service's response body.
type rawResponse struct {
	Result       []interface{} `json:"result"`
	Confidence   *float64      `json:"confidence,omitempty"`
	ModelVersion string        `json:"model_version,omitempty"`
}

// StatusError is returned for non-2xx prediction service responses.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

// StatusCode returns the upstream HTTP status.
func (e *StatusError) StatusCode() int {
	return e.Code
}

// Client calls the prediction service.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     observability.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header value.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a prediction service client. The timeout bounds each
// individual call; per-request deadlines come from the context.
func NewClient(timeout time.Duration, logger observability.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  DefaultUserAgent,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Predict posts one scoring payload to the endpoint and interprets the
// response. headers carries the Authorization and correlation headers built
// by the authentication bridge.
func (c *Client) Predict(
	ctx context.Context,
	endpointURL string,
	headers map[string]string,
	payload *PredictionPayload,
) (*PredictionResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	recordCall(resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.logger.Warn("prediction call failed",
			observability.String("endpoint", endpointURL),
			observability.Int("status", resp.StatusCode),
			observability.Duration("elapsed", time.Since(start)))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	var raw rawResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}

	result := &PredictionResult{
		Confidence:   raw.Confidence,
		ModelVersion: raw.ModelVersion,
	}
	if len(raw.Result) > 0 {
		result.Prediction = raw.Result[0]
	}

	c.logger.Debug("prediction call succeeded",
		observability.String("endpoint", endpointURL),
		observability.Duration("elapsed", time.Since(start)))

	return result, nil
}
