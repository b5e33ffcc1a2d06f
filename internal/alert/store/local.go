package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/MrJamesThe3rd/fuelctl/internal/alert"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS alert_suppressions (
	period_label TEXT NOT NULL,
	band         TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	PRIMARY KEY (period_label, band)
);
`

// Local keeps suppressions in a SQLite file on this device.
type Local struct {
	db *sql.DB
}

// OpenLocal opens or creates the state database at path.
func OpenLocal(path string) (*Local, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating state dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	if _, err := db.Exec(localSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating state schema: %w", err)
	}

	return &Local{db: db}, nil
}

func (l *Local) Close() error {
	return l.db.Close()
}

func (l *Local) Has(ctx context.Context, key alert.Key) (bool, error) {
	var n int

	err := l.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alert_suppressions WHERE period_label = ? AND band = ?",
		string(key.Period), string(key.Band),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking alert suppression: %w", err)
	}

	return n > 0, nil
}

func (l *Local) Put(ctx context.Context, key alert.Key) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO alert_suppressions (period_label, band, created_at) VALUES (?, ?, ?)",
		string(key.Period), string(key.Band), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving alert suppression: %w", err)
	}

	return nil
}
