package repository

import (
	"context"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS public.addresses (
		address_id         SERIAL PRIMARY KEY,
		address            TEXT NOT NULL,
		latitude           DOUBLE PRECISION,
		longitude          DOUBLE PRECISION,
		geocoding_attempts INTEGER NOT NULL DEFAULT 0,
		geocoding_error    TEXT,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// CreateSchema creates the addresses table when it does not exist yet.
func (r *Repository) CreateSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create addresses table: %w", err)
	}

	return nil
}
