package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func encodeBasic(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

func TestBasicValidator_Plaintext(t *testing.T) {
	t.Parallel()

	v := newBasicValidator(map[string]BasicUser{
		"alice": {Password: "s3cret"},
	}, time.Minute)

	principal, err := v.validate(encodeBasic("alice", "s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "alice", principal.ID)

	_, err = v.validate(encodeBasic("alice", "wrong"))
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestBasicValidator_BcryptHash(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	v := newBasicValidator(map[string]BasicUser{
		"bob": {PasswordHash: string(hash)},
	}, time.Minute)

	principal, err := v.validate(encodeBasic("bob", "s3cret"))
	require.NoError(t, err)
	assert.Equal(t, "bob", principal.ID)

	_, err = v.validate(encodeBasic("bob", "wrong"))
	assert.ErrorIs(t, err, ErrBadPassword)
}

func TestBasicValidator_UnknownUser(t *testing.T) {
	t.Parallel()

	v := newBasicValidator(nil, time.Minute)
	_, err := v.validate(encodeBasic("ghost", "any"))
	assert.ErrorIs(t, err, ErrCredentialUnknown)
}

func TestBasicValidator_Malformed(t *testing.T) {
	t.Parallel()

	v := newBasicValidator(nil, time.Minute)

	_, err := v.validate("%%%not-base64%%%")
	assert.ErrorIs(t, err, ErrCredentialMalformed)

	noSeparator := base64.StdEncoding.EncodeToString([]byte("just-a-user"))
	_, err = v.validate(noSeparator)
	assert.ErrorIs(t, err, ErrCredentialMalformed)
}
