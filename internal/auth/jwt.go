package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// jwtValidator verifies bearer JWTs with a shared symmetric key and
// derives a principal from the token claims.
type jwtValidator struct {
	key       []byte
	algorithm jwa.SignatureAlgorithm
}

func newJWTValidator(secret, algorithm string) (*jwtValidator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	alg := jwa.HS256
	if algorithm != "" {
		var ok bool
		alg, ok = lookupAlgorithm(algorithm)
		if !ok {
			return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
		}
	}

	return &jwtValidator{key: []byte(secret), algorithm: alg}, nil
}

func lookupAlgorithm(name string) (jwa.SignatureAlgorithm, bool) {
	for _, alg := range jwa.SignatureAlgorithms() {
		if alg.String() == name {
			return alg, true
		}
	}
	return "", false
}

// validate parses and verifies one token. Expiry is checked by the
// parser; every other parse failure is a malformed credential.
func (v *jwtValidator) validate(token string) (*Principal, error) {
	parsed, err := jwt.Parse([]byte(token),
		jwt.WithKey(v.algorithm, v.key),
		jwt.WithValidate(true),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrCredentialExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrCredentialMalformed, err.Error())
	}

	subject := parsed.Subject()
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrCredentialMalformed)
	}

	username := subject
	if v, ok := parsed.Get("username"); ok {
		if s, ok := v.(string); ok && s != "" {
			username = s
		}
	}

	expiry := parsed.Expiration()
	if expiry.IsZero() {
		expiry = time.Now().Add(time.Hour)
	}

	return &Principal{
		ID:          subject,
		Username:    username,
		Roles:       claimStrings(parsed, "roles", defaultRoles),
		Permissions: claimStrings(parsed, "permissions", defaultPermissions),
		ExpiresAt:   expiry,
	}, nil
}

// claimStrings reads a string-list private claim, falling back to the
// given defaults when the claim is absent or empty.
func claimStrings(token jwt.Token, claim string, defaults []string) []string {
	raw, ok := token.Get(claim)
	if !ok {
		return defaults
	}

	values, ok := raw.([]interface{})
	if !ok {
		return defaults
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return defaults
	}
	return out
}
