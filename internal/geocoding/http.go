package geocoding

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// defaultTimeout bounds a single provider request when no timeout is configured.
const defaultTimeout = 10 * time.Second

// StatusError reports a non-200 answer from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &http.Client{Timeout: timeout}
}

// fetch performs exactly one GET request and returns the body of a 200 response.
func fetch(
	ctx context.Context,
	client HTTPClient,
	log *slog.Logger,
	provider string,
	reqURL string,
	header http.Header,
) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.ErrorContext(ctx, "Provider API error", "provider", provider, "status", resp.StatusCode, "body", string(body))
		return nil, &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.DebugContext(ctx, "Provider raw response", "provider", provider, "body", string(body))

	return body, nil
}
