package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/UnknownOlympus/compass/internal/models"
)

// HereBaseURL -- HERE Geocoder API base URL.
const HereBaseURL = "https://geocoder.cit.api.here.com/6.2/geocode.json"

// hereSearchResultsView is the _type of the view holding the search results.
const hereSearchResultsView = "SearchResultsViewType"

// HereResolver implements geocoding using the HERE Geocoder API.
type HereResolver struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the HERE API
	appID   string       // Application ID
	appCode string       // Application code
	log     *slog.Logger // Logger for logging operations
}

// ErrHereMalformedResponse is wrapped when the HERE payload misses a required field.
var ErrHereMalformedResponse = errors.New("here API returned malformed response")

type hereResponse struct {
	Response *struct {
		View []hereView `json:"View"`
	} `json:"Response"`
}

type hereView struct {
	Type   string `json:"_type"`
	ViewID int    `json:"ViewId"`
	Result []struct {
		Location struct {
			NavigationPosition []struct {
				Latitude  float64 `json:"Latitude"`
				Longitude float64 `json:"Longitude"`
			} `json:"NavigationPosition"`
		} `json:"Location"`
	} `json:"Result"`
}

// NewHereResolver creates a HERE resolver with its own HTTP client.
func NewHereResolver(appID, appCode string, timeout time.Duration, log *slog.Logger) *HereResolver {
	return NewHereResolverWithClient(newHTTPClient(timeout), appID, appCode, log)
}

// NewHereResolverWithClient allows injecting custom HTTP client.
func NewHereResolverWithClient(client HTTPClient, appID, appCode string, log *slog.Logger) *HereResolver {
	return &HereResolver{
		client:  client,
		baseURL: HereBaseURL,
		appID:   appID,
		appCode: appCode,
		log:     log,
	}
}

// Resolve converts address into geographic coordinates using the HERE API.
func (hr *HereResolver) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	hr.log.DebugContext(ctx, "Geocoding using HERE", "address", address)

	reqURL, err := url.Parse(hr.baseURL)
	if err != nil {
		return nil, NewServiceError("here: failed to parse base URL", err)
	}

	query := reqURL.Query()
	query.Set("app_id", hr.appID)
	query.Set("app_code", hr.appCode)
	query.Set("searchtext", address)
	reqURL.RawQuery = query.Encode()

	body, err := fetch(ctx, hr.client, hr.log, "here", reqURL.String(), nil)
	if err != nil {
		return nil, NewServiceError("here: request failed", err)
	}

	coords, err := parseHereResponse(body)
	if err != nil {
		return nil, NewServiceError("here: failed to parse response", err)
	}

	return coords, nil
}

// parseHereResponse extracts the first navigation position of the search results view.
// No views, no search results view or no results resolve to nil coordinates.
func parseHereResponse(payload []byte) (*models.Coordinates, error) {
	var data hereResponse
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to decode here response: %w", err)
	}

	if data.Response == nil {
		return nil, fmt.Errorf("%w: missing Response object", ErrHereMalformedResponse)
	}

	var results *hereView
	for i := range data.Response.View {
		view := &data.Response.View[i]
		if view.Type == hereSearchResultsView || view.ViewID == 0 {
			results = view
			break
		}
	}

	if results == nil || len(results.Result) == 0 {
		return nil, nil //nolint:nilnil // no match is not an error
	}

	positions := results.Result[0].Location.NavigationPosition
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: result without navigation position", ErrHereMalformedResponse)
	}

	return &models.Coordinates{Latitude: positions[0].Latitude, Longitude: positions[0].Longitude}, nil
}
