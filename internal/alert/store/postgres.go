// Package store persists alert suppressions.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
)

// Postgres shares suppressions between every client of the API.
type Postgres struct {
	db *sql.DB
}

func New(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Has(ctx context.Context, key alert.Key) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM alert_suppressions WHERE period_label = $1 AND band = $2
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, string(key.Period), string(key.Band)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking alert suppression: %w", err)
	}

	return exists, nil
}

func (s *Postgres) Put(ctx context.Context, key alert.Key) error {
	query := `
		INSERT INTO alert_suppressions (period_label, band, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (period_label, band) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, string(key.Period), string(key.Band)); err != nil {
		return fmt.Errorf("saving alert suppression: %w", err)
	}

	return nil
}
