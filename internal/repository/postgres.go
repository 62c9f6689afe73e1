package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/compass/internal/models"
)

// FetchPendingAddresses retrieves stored addresses that still need coordinates.
// It returns addresses that have a NULL latitude, fewer than maxAttempts geocoding attempts,
// and a non-empty text. The results are ordered by creation date and limited to the specified count.
func (r *Repository) FetchPendingAddresses(ctx context.Context, limit, maxAttempts int) ([]models.PendingAddress, error) {
	var addresses []models.PendingAddress
	query := `
		SELECT address_id, address
		FROM public.addresses
		WHERE
			latitude IS NULL
			AND geocoding_attempts < $2
			AND address IS NOT NULL AND address <> ''
		ORDER BY created_at ASC, address_id ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit, maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending addresses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var address models.PendingAddress
		if errScan := rows.Scan(&address.ID, &address.Address); errScan != nil {
			return nil, fmt.Errorf("failed to scan pending address: %w", errScan)
		}
		r.log.DebugContext(ctx, "A pending address without coordinates has been received.",
			"ID", address.ID, "Address", address.Address)
		addresses = append(addresses, address)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return addresses, nil
}

// UpdateCoordinates stores the coordinates of an address and clears its last geocoding error.
func (r *Repository) UpdateCoordinates(ctx context.Context, addressID int, coords models.Coordinates) error {
	query := `
		UPDATE public.addresses
		SET
			latitude = $1,
			longitude = $2,
			geocoding_error = NULL
		WHERE
			address_id = $3;
	`

	_, err := r.db.Exec(ctx, query, coords.Latitude, coords.Longitude, addressID)
	if err != nil {
		return fmt.Errorf("failed to update address coordinates: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the geocoding attempt count of an address
// and records why the attempt produced no coordinates.
func (r *Repository) IncrementFailureCount(ctx context.Context, addressID int, errMsg string) error {
	query := `
		UPDATE public.addresses
		SET
			geocoding_attempts = geocoding_attempts + 1,
			geocoding_error = $1
		WHERE address_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, addressID)
	if err != nil {
		return fmt.Errorf("failed to update geocoding error and number of attempts: %w", err)
	}

	return nil
}
