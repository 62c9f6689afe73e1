package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/compass/internal/models"
)

// Nominatim defaults, used when the provider credentials do not override them.
const (
	NominatimBaseURL   = "https://nominatim.openstreetmap.org/search"
	NominatimUserAgent = "Compass-Geocoding-Service/1.0 (https://github.com/UnknownOlympus/compass)"
)

// NominatimResolver implements the Resolver interface using OpenStreetMap's Nominatim API.
// This is a free geocoding service with usage limits (1 request/second for fair use).
type NominatimResolver struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Nominatim API
	log     *slog.Logger // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// nominatimResponse represents one element of the JSON array returned by Nominatim.
type nominatimResponse struct {
	Lat string `json:"lat"` // Latitude as string
	Lon string `json:"lon"` // Longitude as string
}

// ErrNominatimInvalidCoords is wrapped when Nominatim returns unparsable coordinates.
var ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")

// NewNominatimResolver creates a Nominatim resolver. Empty baseURL or userAgent select the public defaults.
func NewNominatimResolver(baseURL, userAgent string, timeout time.Duration, log *slog.Logger) *NominatimResolver {
	return NewNominatimResolverWithClient(newHTTPClient(timeout), baseURL, userAgent, log)
}

// NewNominatimResolverWithClient creates a Nominatim resolver with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewNominatimResolverWithClient(client HTTPClient, baseURL, userAgent string, log *slog.Logger) *NominatimResolver {
	if baseURL == "" {
		baseURL = NominatimBaseURL
	}
	// User-Agent MUST include valid contact info per Nominatim usage policy:
	// https://operations.osmfoundation.org/policies/nominatim/
	if userAgent == "" {
		userAgent = NominatimUserAgent
	}

	return &NominatimResolver{
		client:    client,
		baseURL:   baseURL,
		log:       log,
		userAgent: userAgent,
	}
}

// Resolve converts an address to geographic coordinates using the Nominatim API.
// Only the top match is requested.
func (nr *NominatimResolver) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	nr.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	reqURL, err := url.Parse(nr.baseURL)
	if err != nil {
		return nil, NewServiceError("nominatim: failed to parse base URL", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")
	reqURL.RawQuery = query.Encode()

	header := http.Header{}
	header.Set("User-Agent", nr.userAgent)

	body, err := fetch(ctx, nr.client, nr.log, "nominatim", reqURL.String(), header)
	if err != nil {
		return nil, NewServiceError("nominatim: request failed", err)
	}

	coords, err := parseNominatimResponse(body)
	if err != nil {
		return nil, NewServiceError("nominatim: failed to parse response", err)
	}

	return coords, nil
}

// parseNominatimResponse reads the first element of the result array.
func parseNominatimResponse(payload []byte) (*models.Coordinates, error) {
	var results []nominatimResponse
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil //nolint:nilnil // no match is not an error
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, results[0].Lon)
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
