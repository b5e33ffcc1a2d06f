package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEntry reads a fuel_entries row.
// Expected column order: id, vendor, amount, volume, odometer, note, timestamp, created_at, updated_at, deleted_at
func scanEntry(s scanner) (*entry.Entry, error) {
	var e entry.Entry

	var vendor string

	var note sql.NullString

	if err := s.Scan(
		&e.ID, &vendor, &e.Amount, &e.Volume, &e.Odometer, &note, &e.Timestamp,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	); err != nil {
		return nil, err
	}

	e.Vendor = entry.Vendor(vendor)
	e.Note = note.String

	return &e, nil
}

const selectEntryColumns = `
	e.id, e.vendor, e.amount, e.volume, e.odometer, e.note, e.timestamp,
	e.created_at, e.updated_at, e.deleted_at
`

const insertEntry = `
	INSERT INTO fuel_entries (vendor, amount, volume, odometer, note, timestamp, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

func nullableNote(note string) sql.NullString {
	return sql.NullString{String: note, Valid: note != ""}
}

func (s *Store) CreateEntry(ctx context.Context, e *entry.Entry) error {
	err := s.db.QueryRowContext(ctx, insertEntry,
		e.Vendor,
		e.Amount,
		e.Volume,
		e.Odometer,
		nullableNote(e.Note),
		e.Timestamp,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM fuel_entries e
		WHERE e.id = $1 AND e.deleted_at IS NULL`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entry.ErrNotFound
		}

		return nil, fmt.Errorf("getting entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListEntries(ctx context.Context, filter entry.ListFilter) ([]*entry.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM fuel_entries e
		WHERE e.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Vendor != nil {
		query += fmt.Sprintf(" AND e.vendor = $%d", argIdx)

		args = append(args, *filter.Vendor)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND e.timestamp >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND e.timestamp <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Order == entry.OrderDesc {
		query += " ORDER BY e.timestamp DESC, e.odometer DESC"
	} else {
		query += " ORDER BY e.timestamp ASC, e.odometer ASC"
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

func (s *Store) UpdateEntry(ctx context.Context, e *entry.Entry) error {
	query := `
		UPDATE fuel_entries
		SET vendor = $1, amount = $2, volume = $3, odometer = $4, note = $5, timestamp = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		e.Vendor,
		e.Amount,
		e.Volume,
		e.Odometer,
		nullableNote(e.Note),
		e.Timestamp,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}

	return requireAffected(res)
}

func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE fuel_entries
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return entry.ErrNotFound
	}

	return nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on the date range
// so two concurrent imports of the same file cannot both pass duplicate checks.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (entry.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []entry.CreateParams) ([]*entry.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date     string
		Amount   int64
		Volume   int64
		Odometer int64
	}

	minDate := params[0].Timestamp
	maxDate := params[0].Timestamp
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Timestamp.Before(minDate) {
			minDate = p.Timestamp
		}

		if p.Timestamp.After(maxDate) {
			maxDate = p.Timestamp
		}

		keySet[lookupKey{
			Date:     p.Timestamp.Format(time.DateOnly),
			Amount:   p.Amount,
			Volume:   p.Volume,
			Odometer: p.Odometer,
		}] = struct{}{}
	}

	// Widen to whole days: duplicates are matched on the calendar date.
	minDate = time.Date(minDate.Year(), minDate.Month(), minDate.Day(), 0, 0, 0, 0, minDate.Location())
	maxDate = time.Date(maxDate.Year(), maxDate.Month(), maxDate.Day(), 0, 0, 0, 0, maxDate.Location()).AddDate(0, 0, 1)

	query := `SELECT ` + selectEntryColumns + `
		FROM fuel_entries e
		WHERE e.deleted_at IS NULL AND e.timestamp >= $1 AND e.timestamp < $2
		ORDER BY e.timestamp ASC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*entry.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		k := lookupKey{
			Date:     e.Timestamp.In(minDate.Location()).Format(time.DateOnly),
			Amount:   e.Amount,
			Volume:   e.Volume,
			Odometer: e.Odometer,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*entry.Entry) error {
	for _, e := range entries {
		err := itx.tx.QueryRowContext(ctx, insertEntry,
			e.Vendor,
			e.Amount,
			e.Volume,
			e.Odometer,
			nullableNote(e.Note),
			e.Timestamp,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	return nil
}
