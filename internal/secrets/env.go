package secrets

import (
	"context"
	"os"
	"strings"
)

// DefaultEnvPrefix is the default prefix for environment variable secrets.
const DefaultEnvPrefix = "AVAMLGW_SECRET_"

// EnvProvider reads secrets from environment variables. The secret name
// "api-key-abc" maps to the variable "{PREFIX}API_KEY_ABC".
type EnvProvider struct {
	prefix string
}

// NewEnvProvider creates a new environment variable secrets provider.
func NewEnvProvider(prefix string) *EnvProvider {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return &EnvProvider{prefix: prefix}
}

// GetSecret implements Provider.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	key := p.prefix + envKey(name)
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", ErrSecretNotFound
	}
	return v, nil
}

// envKey normalizes a secret name into an environment variable suffix.
func envKey(name string) string {
	s := strings.ToUpper(name)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
