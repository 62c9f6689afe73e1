package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/compass/internal/models"
)

// VisicomBaseURL -- Visicom API base URL.
const VisicomBaseURL = "https://api.visicom.ua/data-api/5.0/uk/geocode.json"

// VisicomResolver implements geocoding using Visicom API.
type VisicomResolver struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the Visicom API
	apiKey  string       // API key with geocoding access
	log     *slog.Logger // Logger for logging operations
}

// Common errors for Visicom provider.
var (
	ErrVisicomInvalidCoords = errors.New("visicom API returned invalid coordinates")
	ErrVisicomUnauthorized  = errors.New("visicom API unauthorized (invalid API key)")
)

// Visicom API response (simplified for geocoding use-case).
type visicomResponse struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geo_centroid"`
}

// NewVisicomResolver creates a new Visicom resolver.
func NewVisicomResolver(apiKey string, timeout time.Duration, log *slog.Logger) *VisicomResolver {
	return NewVisicomResolverWithClient(newHTTPClient(timeout), apiKey, log)
}

// NewVisicomResolverWithClient allows injecting custom HTTP client.
func NewVisicomResolverWithClient(client HTTPClient, apiKey string, log *slog.Logger) *VisicomResolver {
	return &VisicomResolver{
		client:  client,
		baseURL: VisicomBaseURL,
		apiKey:  apiKey,
		log:     log,
	}
}

// Resolve converts address into geographic coordinates using Visicom API.
func (vr *VisicomResolver) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	vr.log.DebugContext(ctx, "Geocoding using Visicom", "address", address)

	reqURL, err := url.Parse(vr.baseURL)
	if err != nil {
		return nil, NewServiceError("visicom: failed to parse base URL", err)
	}

	query := reqURL.Query()
	query.Set("text", address)
	query.Set("limit", "1")
	query.Set("key", vr.apiKey)
	reqURL.RawQuery = query.Encode()

	header := http.Header{}
	header.Set("Accept", "application/json")

	body, err := fetch(ctx, vr.client, vr.log, "visicom", reqURL.String(), header)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			err = ErrVisicomUnauthorized
		}
		return nil, NewServiceError("visicom: request failed", err)
	}

	coords, err := parseVisicomResponse(body)
	if err != nil {
		return nil, NewServiceError("visicom: failed to parse response", err)
	}

	if coords != nil {
		vr.log.InfoContext(ctx, "Visicom found result", "address", address, "lat", coords.Latitude, "lon", coords.Longitude)
	}

	return coords, nil
}

// parseVisicomResponse reads the [lon, lat] centroid of the feature.
func parseVisicomResponse(payload []byte) (*models.Coordinates, error) {
	const coordsListLength = 2

	var result visicomResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode visicom response: %w", err)
	}

	coords := result.Geometry.Coordinates
	if len(coords) == 0 {
		return nil, nil //nolint:nilnil // no match is not an error
	}

	if len(coords) != coordsListLength {
		return nil, ErrVisicomInvalidCoords
	}

	return &models.Coordinates{Latitude: coords[1], Longitude: coords[0]}, nil
}
