package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/avamlgw/internal/cache"
	"github.com/vyrodovalexey/avamlgw/internal/observability"
	"github.com/vyrodovalexey/avamlgw/internal/secrets"
)

// defaultTokenTTL bounds how long a validated principal is served from
// the cache before full re-validation.
const defaultTokenTTL = 5 * time.Minute

// defaultUpstreamSecretName is the secret consulted when neither the
// principal nor the endpoint descriptor carries upstream credential
// material.
const defaultUpstreamSecretName = "azure-ml-key-default"

// Config holds the static configuration of the bridge.
type Config struct {
	// JWTSecret is the shared key for bearer JWT verification.
	JWTSecret string `yaml:"jwtSecret" json:"jwtSecret"`

	// JWTAlgorithm is the expected signing algorithm. Defaults to HS256.
	JWTAlgorithm string `yaml:"jwtAlgorithm,omitempty" json:"jwtAlgorithm,omitempty"`

	// TokenTTL is how long validated principals are cached.
	TokenTTL time.Duration `yaml:"tokenTTL,omitempty" json:"tokenTTL,omitempty"`

	// APIKeys maps raw API keys to principal attributes.
	APIKeys map[string]KeyAttributes `yaml:"apiKeys,omitempty" json:"apiKeys,omitempty"`

	// BasicUsers is the basic-auth user table.
	BasicUsers map[string]BasicUser `yaml:"basicUsers,omitempty" json:"basicUsers,omitempty"`

	// LegacyEncryptionKey is the optional 32-byte symmetric key for sealed
	// legacy tokens, base64-encoded. Empty means tokens arrive in the clear.
	LegacyEncryptionKey string `yaml:"legacyEncryptionKey,omitempty" json:"legacyEncryptionKey,omitempty"`

	// Targets is the static endpoint descriptor table, keyed by target id.
	Targets map[string]EndpointDescriptor `yaml:"targets,omitempty" json:"targets,omitempty"`

	// DefaultTarget names the target used when callers omit one.
	DefaultTarget string `yaml:"defaultTarget,omitempty" json:"defaultTarget,omitempty"`

	// AddCorrelationHeaders enables the X-User-ID and X-Request-Time
	// headers on upstream calls.
	AddCorrelationHeaders bool `yaml:"addCorrelationHeaders,omitempty" json:"addCorrelationHeaders,omitempty"`
}

// Bridge validates credentials, caches principals, and resolves
// endpoint descriptors and upstream credentials.
type Bridge struct {
	config Config
	store  secrets.Provider
	logger observability.Logger

	principals *cache.Cache[*Principal]
	endpoints  *cache.Cache[*EndpointDescriptor]

	jwt    *jwtValidator
	apiKey *apiKeyValidator
	basic  *basicValidator
	legacy *legacyValidator
}

// NewBridge creates an authentication bridge. store may be nil, in which
// case only static configuration is consulted.
func NewBridge(config Config, store secrets.Provider, logger observability.Logger) (*Bridge, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = defaultTokenTTL
	}

	b := &Bridge{
		config:     config,
		store:      store,
		logger:     logger,
		principals: cache.New[*Principal]("principals", cache.WithDefaultTTL[*Principal](config.TokenTTL)),
		endpoints:  cache.New[*EndpointDescriptor]("endpoints"),
		apiKey:     newAPIKeyValidator(config.APIKeys, store, config.TokenTTL),
		basic:      newBasicValidator(config.BasicUsers, config.TokenTTL),
	}

	if config.JWTSecret != "" {
		jv, err := newJWTValidator(config.JWTSecret, config.JWTAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("failed to configure jwt validation: %w", err)
		}
		b.jwt = jv
	}

	var legacyKey []byte
	if config.LegacyEncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(config.LegacyEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode legacy encryption key: %w", err)
		}
		legacyKey = key
	}
	lv, err := newLegacyValidator(legacyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to configure legacy token validation: %w", err)
	}
	b.legacy = lv

	return b, nil
}

// credentialHash is the fixed-length cache key for a raw credential.
func credentialHash(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

// Validate authenticates one raw credential. An unexpired cache hit
// returns the cached principal without re-running scheme detection. Any
// failure returns a wrapped ErrAuthenticationFailed; the specific reason
// is logged here and never surfaced.
func (b *Bridge) Validate(ctx context.Context, credential string) (*Principal, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: empty credential", ErrCredentialMalformed)
	}

	key := credentialHash(credential)
	if principal, ok := b.principals.Get(key); ok {
		return principal, nil
	}

	scheme := DetectScheme(credential)
	value := credentialValue(credential, scheme)

	principal, err := b.validateScheme(ctx, scheme, value)
	if err != nil {
		recordValidation(scheme, false)
		b.logger.Debug("credential validation failed",
			observability.String("scheme", scheme.String()),
			observability.Error(err))
		return nil, err
	}

	recordValidation(scheme, true)
	b.principals.Set(key, principal, b.config.TokenTTL)

	b.logger.Debug("credential validated",
		observability.String("scheme", scheme.String()),
		observability.String("principal", principal.ID))

	return principal, nil
}

func (b *Bridge) validateScheme(ctx context.Context, scheme Scheme, value string) (*Principal, error) {
	switch scheme {
	case SchemeBearerJWT:
		if b.jwt == nil {
			return nil, fmt.Errorf("%w: jwt validation not configured", ErrAuthenticationFailed)
		}
		return b.jwt.validate(value)
	case SchemeAPIKey:
		return b.apiKey.validate(ctx, value)
	case SchemeBasic:
		return b.basic.validate(value)
	case SchemeLegacyToken:
		return b.legacy.validate(value)
	default:
		return nil, fmt.Errorf("%w: unrecognized scheme", ErrAuthenticationFailed)
	}
}

// ResolveEndpoint looks up the endpoint descriptor for a target. The
// order is cache, secret store, static configuration. An empty targetID
// resolves the configured default target.
func (b *Bridge) ResolveEndpoint(ctx context.Context, targetID string) (*EndpointDescriptor, error) {
	if targetID == "" {
		targetID = b.config.DefaultTarget
	}
	if targetID == "" {
		return nil, fmt.Errorf("%w: no target and no default configured", ErrUnknownTarget)
	}

	if desc, ok := b.endpoints.Get(targetID); ok {
		recordResolution("cache")
		return desc, nil
	}

	if desc, err := b.endpointFromStore(ctx, targetID); err == nil {
		recordResolution("secret_store")
		b.endpoints.Set(targetID, desc, -1)
		return desc, nil
	} else if !errors.Is(err, secrets.ErrSecretNotFound) {
		b.logger.Warn("endpoint secret lookup failed",
			observability.String("target", targetID),
			observability.Error(err))
	}

	if desc, ok := b.config.Targets[targetID]; ok {
		recordResolution("config")
		d := desc
		b.endpoints.Set(targetID, &d, -1)
		return &d, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, targetID)
}

func (b *Bridge) endpointFromStore(ctx context.Context, targetID string) (*EndpointDescriptor, error) {
	if b.store == nil {
		return nil, secrets.ErrSecretNotFound
	}

	value, err := b.store.GetSecret(ctx, fmt.Sprintf("ml-endpoint-%s", targetID))
	if err != nil {
		return nil, err
	}

	desc, err := decodeEndpoint(value)
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// UpstreamCredential resolves the credential material for one upstream
// call. Per-principal secrets win over the descriptor's material, which
// wins over the shared default secret.
func (b *Bridge) UpstreamCredential(ctx context.Context, principal *Principal, desc *EndpointDescriptor) (string, error) {
	if b.store != nil && principal != nil {
		name := fmt.Sprintf("azure-ml-key-%s", principal.ID)
		if value, err := b.store.GetSecret(ctx, name); err == nil {
			return value, nil
		} else if !errors.Is(err, secrets.ErrSecretNotFound) {
			b.logger.Warn("per-principal credential lookup failed",
				observability.String("principal", principal.ID),
				observability.Error(err))
		}
	}

	if desc != nil && desc.CredentialMaterial != "" {
		return desc.CredentialMaterial, nil
	}

	if b.store != nil {
		if value, err := b.store.GetSecret(ctx, defaultUpstreamSecretName); err == nil {
			return value, nil
		}
	}

	return "", errors.New("no upstream credential available")
}

// UpstreamHeaders builds the authorization and correlation headers for
// one upstream call.
func (b *Bridge) UpstreamHeaders(principal *Principal, material string) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + material,
	}

	if b.config.AddCorrelationHeaders && principal != nil {
		headers["X-User-ID"] = principal.ID
		headers["X-Request-Time"] = time.Now().UTC().Format(time.RFC3339)
	}

	return headers
}

// CacheStats exposes the principal cache counters.
func (b *Bridge) CacheStats() cache.Stats {
	return b.principals.Stats()
}
