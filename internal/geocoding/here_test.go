package geocoding_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHereResolver_Resolve(t *testing.T) {
	ctx := t.Context()
	logger := slog.Default()

	t.Run("successfull geocoding", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), geocoding.HereBaseURL)
				assert.Equal(t, "test-app-id", req.URL.Query().Get("app_id"))
				assert.Equal(t, "test-app-code", req.URL.Query().Get("app_code"))
				assert.Equal(t, postmatesHQ, req.URL.Query().Get("searchtext"))
				assert.Contains(t, req.URL.RawQuery, "searchtext=425+Market+St+%238")

				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewBufferString(readFixture(t, "here_geocoder.json"))),
				}, nil
			},
		}

		resolver := geocoding.NewHereResolverWithClient(mockClient, "test-app-id", "test-app-code", logger)
		coords, err := resolver.Resolve(ctx, postmatesHQ)

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, 37.7915599, coords.Latitude, 1e-9)
		assert.InEpsilon(t, -122.3985, coords.Longitude, 1e-9)
		assert.Equal(t, 1, mockClient.calls)
	})

	t.Run("no results", func(t *testing.T) {
		mockClient := staticClient(http.StatusOK, readFixture(t, "here_geocoder_no_results.json"))

		resolver := geocoding.NewHereResolverWithClient(mockClient, "id", "code", logger)
		coords, err := resolver.Resolve(ctx, postmatesHQ)

		require.NoError(t, err)
		assert.Nil(t, coords)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := staticClient(http.StatusUnauthorized, `{"error":"Unauthorized"}`)

		resolver := geocoding.NewHereResolverWithClient(mockClient, "id", "code", logger)
		coords, err := resolver.Resolve(ctx, postmatesHQ)

		require.ErrorIs(t, err, geocoding.ErrService)
		assert.Nil(t, coords)

		var statusErr *geocoding.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
		assert.Equal(t, 1, mockClient.calls)
	})

	t.Run("transport failure", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
		}

		resolver := geocoding.NewHereResolverWithClient(mockClient, "id", "code", logger)
		coords, err := resolver.Resolve(ctx, postmatesHQ)

		require.ErrorIs(t, err, geocoding.ErrService)
		assert.Nil(t, coords)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("malformed payload", func(t *testing.T) {
		mockClient := staticClient(http.StatusOK, `{"unexpected":true}`)

		resolver := geocoding.NewHereResolverWithClient(mockClient, "id", "code", logger)
		coords, err := resolver.Resolve(ctx, postmatesHQ)

		require.ErrorIs(t, err, geocoding.ErrService)
		require.ErrorIs(t, err, geocoding.ErrHereMalformedResponse)
		assert.Nil(t, coords)
	})

	t.Run("blank address", func(t *testing.T) {
		resolver := geocoding.NewHereResolverWithClient(unreachableClient(t), "id", "code", logger)
		coords, err := resolver.Resolve(ctx, "")

		require.ErrorIs(t, err, geocoding.ErrValidation)
		assert.Nil(t, coords)
	})
}
