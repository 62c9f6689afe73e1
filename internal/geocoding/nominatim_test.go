package geocoding_test

import (
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimResolver_Resolve(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()

	t.Run("successful geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "1600 Amphitheatre Parkway, Mountain View, CA", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, geocoding.NominatimUserAgent, req.Header.Get("User-Agent"))

				return staticClient(http.StatusOK, `[{"lat":"37.4224764","lon":"-122.0842499"}]`).Do(req)
			},
		}

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "", "", logger)
		coords, err := resolver.Resolve(ctx, "1600 Amphitheatre Parkway, Mountain View, CA")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 37.4224764, coords.Latitude, 0.0001)
		assert.InEpsilon(t, -122.0842499, coords.Longitude, 0.0001)
	})

	t.Run("custom endpoint and user agent", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "osm.internal", req.URL.Host)
				assert.Equal(t, "compass-test/0.1", req.Header.Get("User-Agent"))

				return staticClient(http.StatusOK, `[]`).Do(req)
			},
		}

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "http://osm.internal/search", "compass-test/0.1", logger)
		coords, err := resolver.Resolve(ctx, "Kyiv")

		require.NoError(t, err)
		assert.Nil(t, coords)
	})

	t.Run("empty response is a single request without fallbacks", func(t *testing.T) {
		mockClient := staticClient(http.StatusOK, `[]`)

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "", "", logger)
		coords, err := resolver.Resolve(ctx, "с. Грабовець, вул. Польова, 12")

		require.NoError(t, err)
		require.Nil(t, coords)
		assert.Equal(t, 1, mockClient.calls)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := staticClient(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`)

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "", "", logger)
		coords, err := resolver.Resolve(ctx, "some address")

		require.ErrorIs(t, err, geocoding.ErrService)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := staticClient(http.StatusOK, `invalid json`)

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "", "", logger)
		coords, err := resolver.Resolve(ctx, "some address")

		require.ErrorIs(t, err, geocoding.ErrService)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := staticClient(http.StatusOK, `[{"lat":"invalid","lon":"-122.0842499"}]`)

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "", "", logger)
		coords, err := resolver.Resolve(ctx, "some address")

		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := staticClient(http.StatusOK, `[{"lat":"37.4224764","lon":"west"}]`)

		resolver := geocoding.NewNominatimResolverWithClient(mockClient, "", "", logger)
		coords, err := resolver.Resolve(ctx, "some address")

		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("blank address", func(t *testing.T) {
		resolver := geocoding.NewNominatimResolverWithClient(unreachableClient(t), "", "", logger)
		coords, err := resolver.Resolve(ctx, "  ")

		require.ErrorIs(t, err, geocoding.ErrValidation)
		require.Nil(t, coords)
	})
}
