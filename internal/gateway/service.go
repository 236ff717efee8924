// Package gateway wires the authentication bridge, dispatcher,
// prediction client, error handler, and batch coordinator into the
// service surface the HTTP layer calls.
package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/avamlgw/internal/auth"
	"github.com/vyrodovalexey/avamlgw/internal/batch"
	"github.com/vyrodovalexey/avamlgw/internal/circuitbreaker"
	"github.com/vyrodovalexey/avamlgw/internal/config"
	"github.com/vyrodovalexey/avamlgw/internal/dispatch"
	"github.com/vyrodovalexey/avamlgw/internal/errhandler"
	"github.com/vyrodovalexey/avamlgw/internal/observability"
	"github.com/vyrodovalexey/avamlgw/internal/retry"
	"github.com/vyrodovalexey/avamlgw/internal/secrets"
	"github.com/vyrodovalexey/avamlgw/internal/upstream"
)

// PredictionRequest is one scoring request from a legacy caller.
type PredictionRequest struct {
	RequestID     string                 `json:"request_id,omitempty"`
	TargetID      string                 `json:"target_id,omitempty"`
	ModelID       string                 `json:"model_id,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Data          map[string]interface{} `json:"data"`
}

// PredictionResponse is the legacy-shaped success response.
type PredictionResponse struct {
	Prediction   interface{} `json:"prediction"`
	Confidence   *float64    `json:"confidence,omitempty"`
	ModelVersion string      `json:"model_version,omitempty"`
	RequestID    string      `json:"request_id"`
	Timestamp    string      `json:"timestamp"`
	Status       string      `json:"status"`
}

// BatchItem is one element of a batch response: a success or the
// structured error for that index, never both.
type BatchItem struct {
	Index    int                       `json:"index"`
	Response *PredictionResponse       `json:"response,omitempty"`
	Error    *errhandler.ErrorResponse `json:"error,omitempty"`
}

// BatchResponse aggregates a batch run.
type BatchResponse struct {
	BatchID    string      `json:"batch_id"`
	Total      int         `json:"total"`
	Successful int         `json:"successful"`
	Failed     int         `json:"failed"`
	Responses  []BatchItem `json:"responses"`
}

// Service is the bridge's composition root.
type Service struct {
	bridge      *auth.Bridge
	dispatcher  *dispatch.Dispatcher
	client      *upstream.Client
	errors      *errhandler.Handler
	coordinator *batch.Coordinator
	batchLimit  int
	logger      observability.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	store    secrets.Provider
	notifier errhandler.Notifier
	client   *upstream.Client
}

// WithSecretProvider overrides the secret store built from configuration.
func WithSecretProvider(p secrets.Provider) Option {
	return func(o *options) { o.store = p }
}

// WithNotifier sets the alert-hook collaborator.
func WithNotifier(n errhandler.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithUpstreamClient overrides the prediction service client.
func WithUpstreamClient(c *upstream.Client) Option {
	return func(o *options) { o.client = c }
}

// New builds a Service from configuration.
func New(cfg *config.Config, logger observability.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.store
	if store == nil {
		var err error
		store, err = buildSecretProvider(cfg.Secrets, logger)
		if err != nil {
			return nil, err
		}
	}

	bridge, err := auth.NewBridge(cfg.Auth.ToBridge(), store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build authentication bridge: %w", err)
	}

	registry := circuitbreaker.NewRegistry(&circuitbreaker.Config{
		FailureThreshold: cfg.Resilience.FailureThreshold,
		RecoveryTimeout:  cfg.Resilience.RecoveryTimeout.Duration(),
	}, logger)

	policy := &retry.Policy{
		MaxAttempts:     cfg.Resilience.MaxAttempts,
		BaseDelay:       cfg.Resilience.BaseDelay.Duration(),
		MaxDelay:        cfg.Resilience.MaxDelay.Duration(),
		ExponentialBase: cfg.Resilience.ExponentialBase,
		Jitter:          cfg.Resilience.Jitter,
	}

	client := o.client
	if client == nil {
		clientOpts := []upstream.ClientOption{}
		if cfg.Upstream.UserAgent != "" {
			clientOpts = append(clientOpts, upstream.WithUserAgent(cfg.Upstream.UserAgent))
		}
		client = upstream.NewClient(cfg.Upstream.Timeout.Duration(), logger, clientOpts...)
	}

	handlerOpts := []errhandler.HandlerOption{}
	if o.notifier != nil {
		handlerOpts = append(handlerOpts, errhandler.WithNotifier(o.notifier))
	}

	return &Service{
		bridge:      bridge,
		dispatcher:  dispatch.New(registry, policy, logger),
		client:      client,
		errors:      errhandler.NewHandler(logger, handlerOpts...),
		coordinator: batch.NewCoordinator(logger),
		batchLimit:  cfg.Batch.MaxConcurrent,
		logger:      logger,
	}, nil
}

func buildSecretProvider(cfg config.SecretsConfig, logger observability.Logger) (secrets.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "static":
		return secrets.NewStaticProvider(cfg.Static), nil
	case "env":
		return secrets.NewEnvProvider(cfg.EnvPrefix), nil
	case "vault":
		return secrets.NewVaultProvider(&secrets.VaultConfig{
			Address:    cfg.VaultAddress,
			Token:      cfg.VaultToken,
			MountPoint: cfg.VaultMount,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown secrets provider %q", cfg.Provider)
	}
}

// Predict authenticates the credential and runs one scoring call under
// the target's breaker and the retry policy. Failures come back as a
// structured error response; authentication failures are uniform so the
// HTTP layer can issue its 401 without learning the reason.
func (s *Service) Predict(ctx context.Context, credential string, req PredictionRequest) (*PredictionResponse, *errhandler.ErrorResponse) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = "req_" + uuid.NewString()
	}

	principal, err := s.bridge.Validate(ctx, credential)
	if err != nil {
		return nil, s.errors.Response(auth.ErrAuthenticationFailed, requestID, req.CorrelationID)
	}

	return s.predictAs(ctx, principal, requestID, req)
}

// predictAs runs one scoring call for an already validated principal.
func (s *Service) predictAs(ctx context.Context, principal *auth.Principal, requestID string, req PredictionRequest) (*PredictionResponse, *errhandler.ErrorResponse) {
	desc, err := s.bridge.ResolveEndpoint(ctx, req.TargetID)
	if err != nil {
		return nil, s.errors.Response(err, requestID, req.CorrelationID)
	}

	material, err := s.bridge.UpstreamCredential(ctx, principal, desc)
	if err != nil {
		return nil, s.errors.Response(err, requestID, req.CorrelationID)
	}

	headers := s.bridge.UpstreamHeaders(principal, material)
	payload := upstream.NewPredictionPayload(req.Data, req.ModelID, req.CorrelationID)

	targetKey := req.TargetID
	if targetKey == "" {
		targetKey = desc.TargetName
	}

	result, err := s.dispatcher.Execute(ctx, targetKey, func(ctx context.Context) (interface{}, error) {
		return s.client.Predict(ctx, desc.URL, headers, payload)
	})
	if err != nil {
		return nil, s.errors.Response(err, requestID, req.CorrelationID)
	}

	prediction := result.(*upstream.PredictionResult)
	return &PredictionResponse{
		Prediction:   prediction.Prediction,
		Confidence:   prediction.Confidence,
		ModelVersion: prediction.ModelVersion,
		RequestID:    requestID,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Status:       "success",
	}, nil
}

// PredictBatch validates the credential once and fans the requests out
// through the coordinator. Element i of the response always corresponds
// to request i; a failing element carries its own error response and
// does not affect the others.
func (s *Service) PredictBatch(ctx context.Context, credential string, reqs []PredictionRequest) (*BatchResponse, *errhandler.ErrorResponse) {
	batchID := "batch_" + uuid.NewString()

	principal, err := s.bridge.Validate(ctx, credential)
	if err != nil {
		return nil, s.errors.Response(auth.ErrAuthenticationFailed, batchID, "")
	}

	result := s.coordinator.Run(ctx, len(reqs), s.batchLimit, func(ctx context.Context, index int) (interface{}, error) {
		subID := fmt.Sprintf("%s_%d", batchID, index)
		resp, errResp := s.predictAs(ctx, principal, subID, reqs[index])
		if errResp != nil {
			return errResp, fmt.Errorf("batch element %d failed", index)
		}
		return resp, nil
	})

	response := &BatchResponse{
		BatchID:    batchID,
		Total:      result.Total,
		Successful: result.Successful,
		Failed:     result.Failed,
		Responses:  make([]BatchItem, len(result.Outcomes)),
	}

	for i, outcome := range result.Outcomes {
		item := BatchItem{Index: i}
		if outcome.Err != nil {
			if errResp, ok := outcome.Value.(*errhandler.ErrorResponse); ok {
				item.Error = errResp
			} else {
				item.Error = s.errors.Response(outcome.Err, fmt.Sprintf("%s_%d", batchID, i), "")
			}
		} else {
			item.Response = outcome.Value.(*PredictionResponse)
		}
		response.Responses[i] = item
	}

	s.logger.Info("batch processed",
		observability.String("batchId", batchID),
		observability.Int("total", response.Total),
		observability.Int("successful", response.Successful),
		observability.Int("failed", response.Failed))

	return response, nil
}

// ErrorMetrics returns the aggregate error counters.
func (s *Service) ErrorMetrics() errhandler.Metrics {
	return s.errors.Metrics()
}

// RecentErrors returns up to limit most recent error records.
func (s *Service) RecentErrors(limit int) []errhandler.ErrorRecord {
	return s.errors.Recent(limit)
}

// CircuitStats returns per-target breaker statistics.
func (s *Service) CircuitStats() map[string]circuitbreaker.Stats {
	return s.dispatcher.Stats()
}
