package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func New(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fuel_entries (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	vendor      TEXT NOT NULL CHECK (vendor IN ('primary', 'other')),
	amount      BIGINT NOT NULL CHECK (amount > 0),
	volume      BIGINT NOT NULL CHECK (volume > 0),
	odometer    BIGINT NOT NULL DEFAULT 0 CHECK (odometer >= 0),
	note        TEXT,
	timestamp   TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ,
	deleted_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS fuel_entries_timestamp_idx
	ON fuel_entries (timestamp) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS vendor_mappings (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	raw_pattern TEXT NOT NULL UNIQUE,
	vendor      TEXT NOT NULL CHECK (vendor IN ('primary', 'other')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS alert_suppressions (
	period_label TEXT NOT NULL,
	band         TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (period_label, band)
);
`

// Migrate creates the schema. It is safe to run repeatedly.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
