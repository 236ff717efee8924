package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/avamlgw/internal/secrets"
)

// keyHashPrefixLen is the length of the hash prefix used in secret store
// key names.
const keyHashPrefixLen = 16

// KeyAttributes are the principal attributes bound to one API key, as
// configured statically or stored as JSON under api-key-<hash-prefix>.
type KeyAttributes struct {
	PrincipalID string   `json:"principal_id" yaml:"principalId"`
	Username    string   `json:"username,omitempty" yaml:"username,omitempty"`
	Roles       []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// apiKeyValidator resolves API keys against a static table first and the
// secret store second.
type apiKeyValidator struct {
	static map[string]KeyAttributes
	store  secrets.Provider
	ttl    time.Duration
}

func newAPIKeyValidator(static map[string]KeyAttributes, store secrets.Provider, ttl time.Duration) *apiKeyValidator {
	if static == nil {
		static = make(map[string]KeyAttributes)
	}
	return &apiKeyValidator{static: static, store: store, ttl: ttl}
}

// keyHashPrefix returns the fixed-length hash prefix naming a key in the
// secret store.
func keyHashPrefix(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:keyHashPrefixLen]
}

func (v *apiKeyValidator) validate(ctx context.Context, key string) (*Principal, error) {
	if attrs, ok := v.static[key]; ok {
		return v.principal(attrs), nil
	}

	if v.store != nil {
		name := fmt.Sprintf("api-key-%s", keyHashPrefix(key))
		value, err := v.store.GetSecret(ctx, name)
		if err == nil {
			var attrs KeyAttributes
			if jsonErr := json.Unmarshal([]byte(value), &attrs); jsonErr != nil {
				return nil, fmt.Errorf("%w: stored key attributes undecodable", ErrCredentialMalformed)
			}
			return v.principal(attrs), nil
		}
		if !errors.Is(err, secrets.ErrSecretNotFound) {
			return nil, fmt.Errorf("%w: secret store lookup failed", ErrAuthenticationFailed)
		}
	}

	return nil, ErrCredentialUnknown
}

func (v *apiKeyValidator) principal(attrs KeyAttributes) *Principal {
	username := attrs.Username
	if username == "" {
		username = attrs.PrincipalID
	}
	roles := attrs.Roles
	if len(roles) == 0 {
		roles = defaultRoles
	}
	permissions := attrs.Permissions
	if len(permissions) == 0 {
		permissions = defaultPermissions
	}

	return &Principal{
		ID:          attrs.PrincipalID,
		Username:    username,
		Roles:       roles,
		Permissions: permissions,
		ExpiresAt:   time.Now().Add(v.ttl),
	}
}
