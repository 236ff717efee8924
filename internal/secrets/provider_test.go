package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticProvider_GetSecret(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(map[string]string{
		"api-key-abcdef": `{"id":"u1"}`,
	})
	ctx := context.Background()

	v, err := p.GetSecret(ctx, "api-key-abcdef")
	require.NoError(t, err)
	assert.Equal(t, `{"id":"u1"}`, v)

	_, err = p.GetSecret(ctx, "missing")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestStaticProvider_NilMap(t *testing.T) {
	t.Parallel()

	p := NewStaticProvider(nil)
	_, err := p.GetSecret(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestEnvProvider_GetSecret(t *testing.T) {
	t.Setenv("AVAMLGW_SECRET_ML_ENDPOINT_DEFAULT", `{"url":"https://ml.example.com/score"}`)

	p := NewEnvProvider("")
	ctx := context.Background()

	v, err := p.GetSecret(ctx, "ml-endpoint-default")
	require.NoError(t, err)
	assert.Contains(t, v, "ml.example.com")

	_, err = p.GetSecret(ctx, "ml-endpoint-other")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestEnvProvider_CustomPrefix(t *testing.T) {
	t.Setenv("CUSTOM_AZURE_ML_KEY_U1", "material")

	p := NewEnvProvider("CUSTOM_")
	v, err := p.GetSecret(context.Background(), "azure-ml-key-u1")
	require.NoError(t, err)
	assert.Equal(t, "material", v)
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "API_KEY_AB12", envKey("api-key-ab12"))
	assert.Equal(t, "A_B_C", envKey("a.b/c"))
}

func TestNewVaultProvider_RequiresAddress(t *testing.T) {
	t.Parallel()

	_, err := NewVaultProvider(nil, nil)
	assert.Error(t, err)

	_, err = NewVaultProvider(&VaultConfig{}, nil)
	assert.Error(t, err)
}
