package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/vyrodovalexey/avamlgw/internal/observability"
)

// vaultValueKey is the key under which a secret's value is stored in the
// KV v2 data map.
const vaultValueKey = "value"

// VaultConfig holds configuration for the Vault secrets provider.
type VaultConfig struct {
	// Address is the Vault server address.
	Address string `json:"address" yaml:"address"`

	// Token is the Vault token used for authentication.
	Token string `json:"token" yaml:"token"`

	// Namespace is the Vault namespace (Enterprise only).
	Namespace string `json:"namespace" yaml:"namespace"`

	// MountPoint is the KV v2 secrets engine mount point.
	MountPoint string `json:"mountPoint" yaml:"mountPoint"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// VaultProvider reads secrets from a HashiCorp Vault KV v2 engine.
type VaultProvider struct {
	client     *vault.Client
	mountPoint string
	logger     observability.Logger
}

// NewVaultProvider creates a new Vault-backed secrets provider.
func NewVaultProvider(cfg *VaultConfig, logger observability.Logger) (*VaultProvider, error) {
	if cfg == nil || cfg.Address == "" {
		return nil, fmt.Errorf("vault address is required")
	}
	if logger == nil {
		logger = observability.NopLogger()
	}

	clientConfig := vault.DefaultConfig()
	clientConfig.Address = cfg.Address
	if cfg.Timeout > 0 {
		clientConfig.Timeout = cfg.Timeout
	}

	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	mountPoint := cfg.MountPoint
	if mountPoint == "" {
		mountPoint = "secret"
	}

	logger.Info("vault secrets provider initialized",
		observability.String("address", cfg.Address),
		observability.String("mountPoint", mountPoint))

	return &VaultProvider{
		client:     client,
		mountPoint: mountPoint,
		logger:     logger,
	}, nil
}

// GetSecret implements Provider.
func (p *VaultProvider) GetSecret(ctx context.Context, name string) (string, error) {
	secret, err := p.client.KVv2(p.mountPoint).Get(ctx, name)
	if err != nil {
		if errors.Is(err, vault.ErrSecretNotFound) {
			return "", ErrSecretNotFound
		}
		p.logger.Warn("vault secret read failed",
			observability.String("name", name),
			observability.Error(err))
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return "", ErrSecretNotFound
	}

	v, ok := secret.Data[vaultValueKey]
	if !ok {
		return "", ErrSecretNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("secret %q: %s is not a string", name, vaultValueKey)
	}

	return s, nil
}
