package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/nacl/secretbox"
)

func TestLegacyValidator_Fresh(t *testing.T) {
	t.Parallel()

	v, err := newLegacyValidator(nil)
	require.NoError(t, err)

	token := fmt.Sprintf("u1:%d", time.Now().Unix())
	principal, err := v.validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.ID)
	assert.Equal(t, defaultRoles, principal.Roles)
	assert.True(t, principal.ExpiresAt.After(time.Now()))
}

func TestLegacyValidator_WithSignatureSegment(t *testing.T) {
	t.Parallel()

	v, err := newLegacyValidator(nil)
	require.NoError(t, err)

	token := fmt.Sprintf("u1:%d:abc123", time.Now().Unix())
	principal, err := v.validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", principal.ID)
}

func TestLegacyValidator_Stale(t *testing.T) {
	t.Parallel()

	v, err := newLegacyValidator(nil)
	require.NoError(t, err)

	token := fmt.Sprintf("u1:%d", time.Now().Add(-25*time.Hour).Unix())
	_, err = v.validate(token)
	assert.ErrorIs(t, err, ErrCredentialExpired)
}

func TestLegacyValidator_Malformed(t *testing.T) {
	t.Parallel()

	v, err := newLegacyValidator(nil)
	require.NoError(t, err)

	for _, token := range []string{"", "u1", ":123", "u1:notatime", "a:b:c:d"} {
		_, err := v.validate(token)
		assert.ErrorIs(t, err, ErrCredentialMalformed, "token %q", token)
	}
}

func TestLegacyValidator_Encrypted(t *testing.T) {
	t.Parallel()

	var key [32]byte
	_, err := rand.Read(key[:])
	require.NoError(t, err)

	v, err := newLegacyValidator(key[:])
	require.NoError(t, err)

	var nonce [24]byte
	_, err = rand.Read(nonce[:])
	require.NoError(t, err)

	plaintext := fmt.Sprintf("u7:%d", time.Now().Unix())
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &key)
	token := base64.StdEncoding.EncodeToString(sealed)

	principal, err := v.validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u7", principal.ID)
}

func TestLegacyValidator_EncryptedTampered(t *testing.T) {
	t.Parallel()

	var key [32]byte
	_, err := rand.Read(key[:])
	require.NoError(t, err)

	v, err := newLegacyValidator(key[:])
	require.NoError(t, err)

	_, err = v.validate(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrCredentialMalformed)

	_, err = v.validate("not-base64!!!")
	assert.ErrorIs(t, err, ErrCredentialMalformed)
}

func TestNewLegacyValidator_BadKeyLength(t *testing.T) {
	t.Parallel()

	_, err := newLegacyValidator([]byte("too-short"))
	assert.Error(t, err)
}
