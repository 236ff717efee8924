package auth

import "strings"

// Scheme identifies how a credential should be validated.
type Scheme int

// Credential schemes. SchemeAPIKey is the default for anything that does
// not match another scheme structurally.
const (
	SchemeAPIKey Scheme = iota
	SchemeBearerJWT
	SchemeBasic
	SchemeLegacyToken
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeAPIKey:
		return "api_key"
	case SchemeBearerJWT:
		return "bearer_jwt"
	case SchemeBasic:
		return "basic"
	case SchemeLegacyToken:
		return "legacy_token"
	default:
		return "unknown"
	}
}

// DetectScheme classifies a raw credential by structure alone. A Bearer
// value with exactly three dot-separated segments is a JWT; any other
// Bearer value is an API key. Unprefixed credentials default to API key.
func DetectScheme(credential string) Scheme {
	switch {
	case strings.HasPrefix(credential, "Bearer "):
		value := strings.TrimPrefix(credential, "Bearer ")
		if len(strings.Split(value, ".")) == 3 {
			return SchemeBearerJWT
		}
		return SchemeAPIKey
	case strings.HasPrefix(credential, "Basic "):
		return SchemeBasic
	case strings.HasPrefix(credential, "Legacy "):
		return SchemeLegacyToken
	default:
		return SchemeAPIKey
	}
}

// credentialValue strips the scheme prefix from a raw credential.
func credentialValue(credential string, scheme Scheme) string {
	switch scheme {
	case SchemeBearerJWT:
		return strings.TrimPrefix(credential, "Bearer ")
	case SchemeAPIKey:
		return strings.TrimPrefix(credential, "Bearer ")
	case SchemeBasic:
		return strings.TrimPrefix(credential, "Basic ")
	case SchemeLegacyToken:
		return strings.TrimPrefix(credential, "Legacy ")
	default:
		return credential
	}
}
