package geocoding

import (
	"context"
	"net/http"
	"strings"

	"github.com/UnknownOlympus/compass/internal/models"
)

// Resolver turns an address into coordinates.
//
// Resolve returns (nil, nil) when the backend affirmatively reports no match for the address.
// A blank address fails with a validation *Error before any network activity; transport,
// status and payload problems fail with a service *Error.
type Resolver interface {
	Resolve(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ValidateAddress checks that the address is present and not blank.
// Addresses are free-form, so no other check is applied.
func ValidateAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return NewValidationError("An address is required to geocode")
	}

	return nil
}
