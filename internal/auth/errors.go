package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for bridge operations. The credential errors all wrap
// ErrAuthenticationFailed so callers can match the whole family with one
// errors.Is check.
var (
	// ErrAuthenticationFailed indicates that credential validation failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrCredentialExpired indicates a credential past its validity window.
	ErrCredentialExpired = fmt.Errorf("%w: credential expired", ErrAuthenticationFailed)

	// ErrCredentialMalformed indicates a credential that could not be parsed.
	ErrCredentialMalformed = fmt.Errorf("%w: credential malformed", ErrAuthenticationFailed)

	// ErrCredentialUnknown indicates a credential absent from every source.
	ErrCredentialUnknown = fmt.Errorf("%w: credential unknown", ErrAuthenticationFailed)

	// ErrBadPassword indicates a known user with a wrong password.
	ErrBadPassword = fmt.Errorf("%w: bad password", ErrAuthenticationFailed)

	// ErrUnknownTarget indicates a target id with no endpoint descriptor in
	// the cache, the secret store, or the static configuration.
	ErrUnknownTarget = errors.New("unknown prediction target")
)
