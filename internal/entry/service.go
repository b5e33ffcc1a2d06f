package entry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=entry
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id uuid.UUID) error

	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

// Order is the timestamp sort direction of a listing.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

type ListFilter struct {
	Vendor    *Vendor
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Order     Order
}

type CreateParams struct {
	Vendor    Vendor
	Amount    int64
	Volume    int64
	Odometer  int64
	Note      string
	Timestamp time.Time
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Entry, error) {
	e := s.fromParams(params)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

func (s *Service) Update(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	return s.repo.UpdateEntry(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteEntry(ctx, id)
}

// LastOdometer returns the odometer of the most recent entry, or false when
// there are no entries yet.
func (s *Service) LastOdometer(ctx context.Context) (int64, bool, error) {
	entries, err := s.repo.ListEntries(ctx, ListFilter{Limit: 1, Order: OrderDesc})
	if err != nil {
		return 0, false, fmt.Errorf("loading latest entry: %w", err)
	}

	if len(entries) == 0 {
		return 0, false, nil
	}

	return entries[0].Odometer, true, nil
}

// Latest returns the most recent entry strictly before t, or nil.
func (s *Service) Latest(ctx context.Context, before time.Time) (*Entry, error) {
	end := before.Add(-time.Nanosecond)

	entries, err := s.repo.ListEntries(ctx, ListFilter{EndDate: &end, Limit: 1, Order: OrderDesc})
	if err != nil {
		return nil, fmt.Errorf("loading entry before %s: %w", before.Format(time.RFC3339), err)
	}

	if len(entries) == 0 {
		return nil, nil
	}

	return entries[0], nil
}

type ImportResult struct {
	Imported  []*Entry
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Entry
}

type dupKey struct {
	Date     string
	Amount   int64
	Volume   int64
	Odometer int64
}

func keyOf(ts time.Time, amount, volume, odometer int64) dupKey {
	return dupKey{
		Date:     ts.Format(time.DateOnly),
		Amount:   amount,
		Volume:   volume,
		Odometer: odometer,
	}
}

// ImportBatch stores params unless some of them already exist. When
// duplicates are found nothing is written and the caller gets the split
// between new rows and conflicts so the user can decide.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	entries, err := s.validated(params)
	if err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	// Stored timestamps come back in the driver's location; compare calendar
	// dates where the file was read.
	loc := params[0].Timestamp.Location()

	lookup := make(map[dupKey]*Entry, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Timestamp.In(loc), d.Amount, d.Volume, d.Odometer)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Timestamp, p.Amount, p.Volume, p.Odometer)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return &ImportResult{Imported: entries}, nil
}

// CreateBatch stores params without duplicate detection, used once the user
// has resolved import conflicts.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams) ([]*Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	entries, err := s.validated(params)
	if err != nil {
		return nil, err
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	if err := itx.CreateEntries(ctx, entries); err != nil {
		return nil, fmt.Errorf("create entries: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return entries, nil
}

func (s *Service) fromParams(p CreateParams) *Entry {
	ts := p.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	return &Entry{
		Vendor:    p.Vendor,
		Amount:    p.Amount,
		Volume:    p.Volume,
		Odometer:  p.Odometer,
		Note:      p.Note,
		Timestamp: ts,
	}
}

func (s *Service) validated(params []CreateParams) ([]*Entry, error) {
	entries := make([]*Entry, len(params))
	for i, p := range params {
		e := s.fromParams(p)
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		entries[i] = e
	}

	return entries, nil
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Timestamp
	maxDate := params[0].Timestamp

	for _, p := range params[1:] {
		if p.Timestamp.Before(minDate) {
			minDate = p.Timestamp
		}

		if p.Timestamp.After(maxDate) {
			maxDate = p.Timestamp
		}
	}

	return minDate, maxDate
}
