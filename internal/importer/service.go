package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

// Classifier picks the vendor of a raw station name.
type Classifier interface {
	Classify(ctx context.Context, rawStation string) (entry.Vendor, error)
}

type Service struct {
	classifier Classifier
	parsers    map[Format]Importer
}

func NewService(classifier Classifier, parsers map[Format]Importer) *Service {
	return &Service{
		classifier: classifier,
		parsers:    parsers,
	}
}

// Import parses r and turns every row into entry params, classifying the
// vendor of rows that do not name one.
func (s *Service) Import(ctx context.Context, format Format, r io.Reader) ([]entry.CreateParams, error) {
	parser, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	rows, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	params := make([]entry.CreateParams, 0, len(rows))

	for _, row := range rows {
		vendor, err := s.vendorOf(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.Line, err)
		}

		params = append(params, entry.CreateParams{
			Vendor:    vendor,
			Amount:    row.Amount,
			Volume:    row.Volume,
			Odometer:  row.Odometer,
			Note:      noteOf(row),
			Timestamp: row.Timestamp,
		})
	}

	return params, nil
}

func (s *Service) vendorOf(ctx context.Context, row Row) (entry.Vendor, error) {
	if row.Vendor != "" {
		return entry.ParseVendor(row.Vendor)
	}

	return s.classifier.Classify(ctx, row.Station)
}

// noteOf keeps the station name, which has no column of its own.
func noteOf(row Row) string {
	switch {
	case row.Station == "":
		return row.Note
	case row.Note == "":
		return row.Station
	default:
		return row.Station + " - " + row.Note
	}
}
