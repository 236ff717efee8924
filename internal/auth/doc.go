// Package auth implements the authentication bridge between legacy
// callers and the prediction service. It detects the credential scheme
// structurally, validates through the scheme-specific path, caches the
// resulting principal, and resolves upstream endpoint descriptors and
// credentials.
//
// Supported schemes:
//   - Bearer JWT (signature-verified, claim-derived principal)
//   - API key (static table, then secret store lookup)
//   - Basic (constant-time password comparison)
//   - Legacy token (optional symmetric decryption, 24h freshness window)
//
// Validation failures collapse to a wrapped ErrAuthenticationFailed at
// the bridge boundary; the distinction between failure modes is logged
// but never surfaced to callers.
package auth
