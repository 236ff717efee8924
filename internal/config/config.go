// Package config provides configuration for the bridge: authentication
// sources, resilience tuning, upstream client settings, and batch
// limits. Configuration loads from a YAML file with ${VAR} environment
// substitution; durations use human-readable strings ("30s", "5m").
package config

import (
	"fmt"
	"time"

	"github.com/vyrodovalexey/avamlgw/internal/auth"
	"github.com/vyrodovalexey/avamlgw/internal/observability"
	"github.com/vyrodovalexey/avamlgw/internal/util"
)

// Config holds all configuration for the bridge.
type Config struct {
	// Log configures structured logging.
	Log observability.LogConfig `json:"log" yaml:"log"`

	// Auth configures the authentication bridge, including the static
	// endpoint descriptor table.
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Secrets configures the secret store provider.
	Secrets SecretsConfig `json:"secrets" yaml:"secrets"`

	// Resilience tunes the circuit breaker and retry policy.
	Resilience ResilienceConfig `json:"resilience" yaml:"resilience"`

	// Upstream configures the prediction service client.
	Upstream UpstreamConfig `json:"upstream" yaml:"upstream"`

	// Batch bounds batch fan-out.
	Batch BatchConfig `json:"batch" yaml:"batch"`
}

// AuthConfig is the file-facing shape of the authentication bridge
// configuration. ToBridge converts it for the auth package.
type AuthConfig struct {
	JWTSecret             string                             `json:"jwtSecret,omitempty" yaml:"jwtSecret,omitempty"`
	JWTAlgorithm          string                             `json:"jwtAlgorithm,omitempty" yaml:"jwtAlgorithm,omitempty"`
	TokenTTL              Duration                           `json:"tokenTTL,omitempty" yaml:"tokenTTL,omitempty"`
	APIKeys               map[string]auth.KeyAttributes      `json:"apiKeys,omitempty" yaml:"apiKeys,omitempty"`
	BasicUsers            map[string]auth.BasicUser          `json:"basicUsers,omitempty" yaml:"basicUsers,omitempty"`
	LegacyEncryptionKey   string                             `json:"legacyEncryptionKey,omitempty" yaml:"legacyEncryptionKey,omitempty"`
	Targets               map[string]auth.EndpointDescriptor `json:"targets,omitempty" yaml:"targets,omitempty"`
	DefaultTarget         string                             `json:"defaultTarget,omitempty" yaml:"defaultTarget,omitempty"`
	AddCorrelationHeaders bool                               `json:"addCorrelationHeaders,omitempty" yaml:"addCorrelationHeaders,omitempty"`
}

// ToBridge converts the file-facing configuration into the bridge's
// own config type.
func (a AuthConfig) ToBridge() auth.Config {
	return auth.Config{
		JWTSecret:             a.JWTSecret,
		JWTAlgorithm:          a.JWTAlgorithm,
		TokenTTL:              a.TokenTTL.Duration(),
		APIKeys:               a.APIKeys,
		BasicUsers:            a.BasicUsers,
		LegacyEncryptionKey:   a.LegacyEncryptionKey,
		Targets:               a.Targets,
		DefaultTarget:         a.DefaultTarget,
		AddCorrelationHeaders: a.AddCorrelationHeaders,
	}
}

// SecretsConfig selects and configures the secret store backend.
type SecretsConfig struct {
	// Provider is one of static, env, vault. Empty disables the store.
	Provider string `json:"provider" yaml:"provider"`

	// EnvPrefix overrides the env provider's variable prefix.
	EnvPrefix string `json:"envPrefix,omitempty" yaml:"envPrefix,omitempty"`

	// Static holds inline secrets for the static provider.
	Static map[string]string `json:"static,omitempty" yaml:"static,omitempty"`

	// VaultAddress is the Vault server URL.
	VaultAddress string `json:"vaultAddress,omitempty" yaml:"vaultAddress,omitempty"`

	// VaultToken authenticates to Vault.
	VaultToken string `json:"vaultToken,omitempty" yaml:"vaultToken,omitempty"`

	// VaultMount is the KV v2 mount path.
	VaultMount string `json:"vaultMount,omitempty" yaml:"vaultMount,omitempty"`
}

// ResilienceConfig tunes the circuit breaker and retry policy.
type ResilienceConfig struct {
	FailureThreshold int      `json:"failureThreshold" yaml:"failureThreshold"`
	RecoveryTimeout  Duration `json:"recoveryTimeout" yaml:"recoveryTimeout"`
	MaxAttempts      int      `json:"maxAttempts" yaml:"maxAttempts"`
	BaseDelay        Duration `json:"baseDelay" yaml:"baseDelay"`
	MaxDelay         Duration `json:"maxDelay" yaml:"maxDelay"`
	ExponentialBase  float64  `json:"exponentialBase" yaml:"exponentialBase"`
	Jitter           bool     `json:"jitter" yaml:"jitter"`
}

// UpstreamConfig configures the prediction service client.
type UpstreamConfig struct {
	Timeout   Duration `json:"timeout" yaml:"timeout"`
	UserAgent string   `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
}

// BatchConfig bounds batch fan-out.
type BatchConfig struct {
	MaxConcurrent int `json:"maxConcurrent" yaml:"maxConcurrent"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Log: observability.LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Auth: AuthConfig{
			TokenTTL: Duration(5 * time.Minute),
		},
		Resilience: ResilienceConfig{
			FailureThreshold: 5,
			RecoveryTimeout:  Duration(30 * time.Second),
			MaxAttempts:      3,
			BaseDelay:        Duration(time.Second),
			MaxDelay:         Duration(60 * time.Second),
			ExponentialBase:  2.0,
			Jitter:           true,
		},
		Upstream: UpstreamConfig{
			Timeout: Duration(30 * time.Second),
		},
		Batch: BatchConfig{
			MaxConcurrent: 10,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Resilience.FailureThreshold <= 0 {
		return fmt.Errorf("resilience.failureThreshold must be positive, got %d", c.Resilience.FailureThreshold)
	}
	if c.Resilience.RecoveryTimeout <= 0 {
		return fmt.Errorf("resilience.recoveryTimeout must be positive, got %s", c.Resilience.RecoveryTimeout.Duration())
	}
	if c.Resilience.MaxAttempts <= 0 {
		return fmt.Errorf("resilience.maxAttempts must be positive, got %d", c.Resilience.MaxAttempts)
	}
	if c.Resilience.BaseDelay <= 0 {
		return fmt.Errorf("resilience.baseDelay must be positive, got %s", c.Resilience.BaseDelay.Duration())
	}
	if c.Resilience.MaxDelay < c.Resilience.BaseDelay {
		return fmt.Errorf("resilience.maxDelay must be at least baseDelay")
	}
	if c.Resilience.ExponentialBase < 1 {
		return fmt.Errorf("resilience.exponentialBase must be at least 1, got %g", c.Resilience.ExponentialBase)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", c.Upstream.Timeout.Duration())
	}
	if c.Batch.MaxConcurrent <= 0 {
		return fmt.Errorf("batch.maxConcurrent must be positive, got %d", c.Batch.MaxConcurrent)
	}

	switch c.Secrets.Provider {
	case "", "static", "env":
	case "vault":
		if c.Secrets.VaultAddress == "" {
			return fmt.Errorf("secrets.vaultAddress is required for the vault provider")
		}
	default:
		return fmt.Errorf("unknown secrets provider %q", c.Secrets.Provider)
	}

	for id, target := range c.Auth.Targets {
		if err := util.ValidateURL(target.URL); err != nil {
			return fmt.Errorf("target %q: %w", id, err)
		}
	}
	if c.Auth.DefaultTarget != "" {
		if _, ok := c.Auth.Targets[c.Auth.DefaultTarget]; !ok {
			return fmt.Errorf("default target %q is not configured", c.Auth.DefaultTarget)
		}
	}

	return nil
}
