package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindMatch(ctx context.Context, rawStation string) (entry.Vendor, bool, error) {
	query := `
		SELECT vendor
		FROM vendor_mappings
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, updated_at DESC
		LIMIT 1
	`

	var vendor string

	err := s.db.QueryRowContext(ctx, query, rawStation).Scan(&vendor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("finding match: %w", err)
	}

	return entry.Vendor(vendor), true, nil
}

func (s *Store) SaveMapping(ctx context.Context, rawPattern string, vendor entry.Vendor) error {
	query := `
		INSERT INTO vendor_mappings (raw_pattern, vendor, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (raw_pattern) DO UPDATE SET vendor = EXCLUDED.vendor, updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query, rawPattern, string(vendor))
	if err != nil {
		return fmt.Errorf("saving mapping: %w", err)
	}

	return nil
}
