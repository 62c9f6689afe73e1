package geocoding

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/compass/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleResolver is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleResolver struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the part of *maps.Client used by GoogleResolver.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleResolver wraps an already configured Google Maps client.
func NewGoogleResolver(client GoogleAPIClient, log *slog.Logger) *GoogleResolver {
	return &GoogleResolver{client: client, log: log}
}

// Resolve geocodes the address with the Google Maps Geocoding API.
// The maps client reports ZERO_RESULTS as an empty result list, which resolves to nil coordinates.
func (gr *GoogleResolver) Resolve(ctx context.Context, address string) (*models.Coordinates, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	gr.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	results, err := gr.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return nil, NewServiceError("google: failed to geocode address", err)
	}

	return parseGoogleResults(results), nil
}

// parseGoogleResults takes the location of the first result.
func parseGoogleResults(results []maps.GeocodingResult) *models.Coordinates {
	if len(results) == 0 {
		return nil
	}
	location := results[0].Geometry.Location

	return &models.Coordinates{Latitude: location.Lat, Longitude: location.Lng}
}
