package auth

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
)

// legacyFreshnessWindow is how long a legacy token stays valid after the
// timestamp it carries.
const legacyFreshnessWindow = 24 * time.Hour

// secretboxNonceSize is the nonce length prepended to encrypted tokens.
const secretboxNonceSize = 24

// legacyValidator parses "userid:timestamp[:signature]" tokens issued by
// the legacy system, optionally sealed with a shared symmetric key.
type legacyValidator struct {
	key *[32]byte
	now func() time.Time
}

func newLegacyValidator(encryptionKey []byte) (*legacyValidator, error) {
	v := &legacyValidator{now: time.Now}

	if len(encryptionKey) > 0 {
		if len(encryptionKey) != 32 {
			return nil, fmt.Errorf("legacy encryption key must be 32 bytes, got %d", len(encryptionKey))
		}
		v.key = new([32]byte)
		copy(v.key[:], encryptionKey)
	}

	return v, nil
}

func (v *legacyValidator) validate(token string) (*Principal, error) {
	plaintext := token
	if v.key != nil {
		decrypted, err := v.decrypt(token)
		if err != nil {
			return nil, err
		}
		plaintext = decrypted
	}

	// userid:timestamp with an optional trailing signature segment.
	parts := strings.Split(plaintext, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return nil, fmt.Errorf("%w: bad legacy token shape", ErrCredentialMalformed)
	}

	issued, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad legacy timestamp", ErrCredentialMalformed)
	}

	issuedAt := time.Unix(issued, 0)
	expiry := issuedAt.Add(legacyFreshnessWindow)
	if v.now().After(expiry) {
		return nil, ErrCredentialExpired
	}

	return &Principal{
		ID:          parts[0],
		Username:    parts[0],
		Roles:       defaultRoles,
		Permissions: defaultPermissions,
		ExpiresAt:   expiry,
	}, nil
}

// decrypt opens a base64 secretbox envelope with the nonce prepended to
// the ciphertext.
func (v *legacyValidator) decrypt(token string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64", ErrCredentialMalformed)
	}
	if len(sealed) < secretboxNonceSize {
		return "", fmt.Errorf("%w: sealed token too short", ErrCredentialMalformed)
	}

	var nonce [secretboxNonceSize]byte
	copy(nonce[:], sealed[:secretboxNonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[secretboxNonceSize:], &nonce, v.key)
	if !ok {
		return "", fmt.Errorf("%w: decryption failed", ErrCredentialMalformed)
	}
	return string(plaintext), nil
}
