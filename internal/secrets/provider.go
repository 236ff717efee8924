// Package secrets provides read access to named secrets for the
// authentication bridge, with environment, static, and HashiCorp Vault
// backends.
//
// The bridge addresses secrets by naming convention:
//
//	api-key-<hash-prefix>     principal attributes for an API key
//	ml-endpoint-<target-id>   endpoint descriptor for a prediction target
//	azure-ml-key-<principal>  per-principal upstream credential
package secrets

import (
	"context"
	"errors"
)

// Common errors for secret providers.
var (
	// ErrSecretNotFound is returned when a secret is not found.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrProviderUnavailable is returned when the provider is temporarily unavailable.
	ErrProviderUnavailable = errors.New("secret provider unavailable")
)

// Provider reads named secrets.
type Provider interface {
	// GetSecret returns the value of the named secret.
	// Returns ErrSecretNotFound if the secret does not exist.
	GetSecret(ctx context.Context, name string) (string, error)
}

// StaticProvider is an in-memory Provider backed by a fixed map.
type StaticProvider struct {
	values map[string]string
}

// NewStaticProvider creates a provider over a fixed set of secrets.
func NewStaticProvider(values map[string]string) *StaticProvider {
	if values == nil {
		values = make(map[string]string)
	}
	return &StaticProvider{values: values}
}

// GetSecret implements Provider.
func (p *StaticProvider) GetSecret(ctx context.Context, name string) (string, error) {
	v, ok := p.values[name]
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}
