package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// BasicUser is one entry in the basic-auth user table. PasswordHash is a
// bcrypt hash and takes precedence; Password is a plaintext fallback
// compared in constant time.
type BasicUser struct {
	PasswordHash string   `json:"password_hash,omitempty" yaml:"passwordHash,omitempty"`
	Password     string   `json:"password,omitempty" yaml:"password,omitempty"`
	Roles        []string `json:"roles,omitempty" yaml:"roles,omitempty"`
	Permissions  []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// basicValidator validates base64 "user:pass" credentials against a
// static user table.
type basicValidator struct {
	users map[string]BasicUser
	ttl   time.Duration
}

func newBasicValidator(users map[string]BasicUser, ttl time.Duration) *basicValidator {
	if users == nil {
		users = make(map[string]BasicUser)
	}
	return &basicValidator{users: users, ttl: ttl}
}

func (v *basicValidator) validate(encoded string) (*Principal, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrCredentialMalformed)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found || username == "" {
		return nil, fmt.Errorf("%w: missing user separator", ErrCredentialMalformed)
	}

	user, ok := v.users[username]
	if !ok {
		return nil, ErrCredentialUnknown
	}

	if err := comparePassword(user, password); err != nil {
		return nil, err
	}

	roles := user.Roles
	if len(roles) == 0 {
		roles = defaultRoles
	}
	permissions := user.Permissions
	if len(permissions) == 0 {
		permissions = defaultPermissions
	}

	return &Principal{
		ID:          username,
		Username:    username,
		Roles:       roles,
		Permissions: permissions,
		ExpiresAt:   time.Now().Add(v.ttl),
	}, nil
}

// comparePassword checks the supplied password without leaking match
// position through timing. Plaintext entries go through a constant-time
// comparison; hashed entries go through bcrypt, which is constant-time
// by construction.
func comparePassword(user BasicUser, password string) error {
	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return ErrBadPassword
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) != 1 {
		return ErrBadPassword
	}
	return nil
}
