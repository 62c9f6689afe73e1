package geocoding

import (
	"context"

	"github.com/UnknownOlympus/compass/internal/models"
)

// StubCoordinates is the fixed location returned by StubResolver.
var StubCoordinates = models.Coordinates{Latitude: 37.7913035, Longitude: -122.3988535}

// StubResolver resolves every valid address to StubCoordinates without any network access.
// It backs offline and test configurations.
type StubResolver struct{}

// NewStubResolver creates a StubResolver.
func NewStubResolver() *StubResolver {
	return &StubResolver{}
}

// Resolve validates the address and returns a copy of StubCoordinates.
func (sr *StubResolver) Resolve(_ context.Context, address string) (*models.Coordinates, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}

	coords := StubCoordinates
	return &coords, nil
}
