package geocoding_test

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const postmatesHQ = "425 Market St #8, San Francisco, CA 94105"

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
	calls  int
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.doFunc(req)
}

// unreachableClient fails the test if any request is sent.
func unreachableClient(t *testing.T) *mockHTTPClient {
	t.Helper()
	return &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			t.Fatal("HTTP client should not be called")
			return nil, nil
		},
	}
}

// staticClient answers every request with the same status and body.
func staticClient(status int, body string) *mockHTTPClient {
	return &mockHTTPClient{
		doFunc: func(_ *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(body)),
			}, nil
		},
	}
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	payload, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(payload)
}
