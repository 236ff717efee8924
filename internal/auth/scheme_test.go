package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectScheme(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		credential string
		want       Scheme
	}{
		{"jwt", "Bearer aaa.bbb.ccc", SchemeBearerJWT},
		{"bearer api key", "Bearer k1", SchemeAPIKey},
		{"bearer with one dot", "Bearer aa.bb", SchemeAPIKey},
		{"bearer with three dots", "Bearer a.b.c.d", SchemeAPIKey},
		{"basic", "Basic dXNlcjpwYXNz", SchemeBasic},
		{"legacy", "Legacy u1:1700000000", SchemeLegacyToken},
		{"bare value defaults to api key", "some-raw-key", SchemeAPIKey},
		{"empty defaults to api key", "", SchemeAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectScheme(tt.credential))
		})
	}
}

func TestCredentialValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "aaa.bbb.ccc", credentialValue("Bearer aaa.bbb.ccc", SchemeBearerJWT))
	assert.Equal(t, "k1", credentialValue("Bearer k1", SchemeAPIKey))
	assert.Equal(t, "raw-key", credentialValue("raw-key", SchemeAPIKey))
	assert.Equal(t, "dXNlcjpwYXNz", credentialValue("Basic dXNlcjpwYXNz", SchemeBasic))
	assert.Equal(t, "u1:123", credentialValue("Legacy u1:123", SchemeLegacyToken))
}
