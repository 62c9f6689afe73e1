package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	logger := slog.Default()

	t.Run("create Google provider successfully", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:        geocoding.ProviderTypeGoogle,
			Credentials: geocoding.Credentials{"api_key": "AIza-test-key"},
			Logger:      logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		_, ok := provider.(*geocoding.GoogleResolver)
		assert.True(t, ok, "expected provider to be *GoogleResolver")
	})

	t.Run("create Google provider without API key fails", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:        geocoding.ProviderTypeGoogle,
			Credentials: geocoding.Credentials{"api_key": ""},
			Logger:      logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.ErrorIs(t, err, geocoding.ErrMissingCredential)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})

	t.Run("create Here provider successfully", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:        geocoding.ProviderTypeHere,
			Credentials: geocoding.Credentials{"app_id": "id", "app_code": "code"},
			Logger:      logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.NoError(t, err)
		_, ok := provider.(*geocoding.HereResolver)
		assert.True(t, ok, "expected provider to be *HereResolver")
	})

	t.Run("create Here provider without app code fails", func(t *testing.T) {
		config := geocoding.ProviderConfig{
			Type:        geocoding.ProviderTypeHere,
			Credentials: geocoding.Credentials{"app_id": "id"},
			Logger:      logger,
		}

		provider, err := geocoding.NewProvider(config)

		require.ErrorIs(t, err, geocoding.ErrMissingCredential)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), "HERE_APP_CODE")
	})

	t.Run("create Nominatim provider without credentials", func(t *testing.T) {
		// Nominatim doesn't require an API key
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{Type: geocoding.ProviderTypeNominatim})

		require.NoError(t, err)
		_, ok := provider.(*geocoding.NominatimResolver)
		assert.True(t, ok, "expected provider to be *NominatimResolver")
	})

	t.Run("create Visicom provider", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:        geocoding.ProviderTypeVisicom,
			Credentials: geocoding.Credentials{"api_key": "key"},
		})

		require.NoError(t, err)
		_, ok := provider.(*geocoding.VisicomResolver)
		assert.True(t, ok, "expected provider to be *VisicomResolver")
	})

	t.Run("create mock provider", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{Type: geocoding.ProviderTypeMock})

		require.NoError(t, err)
		_, ok := provider.(*geocoding.StubResolver)
		assert.True(t, ok, "expected provider to be *StubResolver")
	})

	t.Run("unsupported provider type", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{Type: geocoding.ProviderType("unsupported")})

		require.ErrorIs(t, err, geocoding.ErrUnknownProvider)
		require.Nil(t, provider)
		assert.Contains(t, err.Error(), `"unsupported"`)
	})

	t.Run("empty provider type", func(t *testing.T) {
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{Type: geocoding.ProviderType("")})

		require.ErrorIs(t, err, geocoding.ErrUnknownProvider)
		require.Nil(t, provider)
	})
}

func TestCredentialsFor(t *testing.T) {
	env := map[string]string{
		"GOOGLE_API_KEY": "g-key",
		"HERE_APP_ID":    "here-id",
		"here_app_code":  "here-code",
		"HEREAFTER":      "unrelated",
		"PATH":           "/usr/bin",
	}

	assert.Equal(t, geocoding.Credentials{"api_key": "g-key"}, geocoding.CredentialsFor("Google", env))
	assert.Equal(t, geocoding.Credentials{"app_id": "here-id", "app_code": "here-code"}, geocoding.CredentialsFor("Here", env))
	assert.Empty(t, geocoding.CredentialsFor("Mock", env))

	value, ok := geocoding.CredentialsFor("google", env).Lookup("api_key")
	assert.True(t, ok)
	assert.Equal(t, "g-key", value)
}

func TestProviderType_Constants(t *testing.T) {
	assert.Equal(t, geocoding.ProviderTypeGoogle, geocoding.ParseProviderType(" Google "))
	assert.Equal(t, geocoding.ProviderTypeHere, geocoding.ParseProviderType("HERE"))
	assert.Equal(t, geocoding.ProviderTypeMock, geocoding.ParseProviderType("Mock"))
	assert.Equal(t, []geocoding.ProviderType{
		geocoding.ProviderTypeGoogle,
		geocoding.ProviderTypeHere,
		geocoding.ProviderTypeMock,
		geocoding.ProviderTypeNominatim,
		geocoding.ProviderTypeVisicom,
	}, geocoding.Providers())
}
