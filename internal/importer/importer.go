package importer

import (
	"io"
	"time"
)

type Format string

const (
	// FormatSpreadsheet is a fuel log exported from a spreadsheet, in the
	// Brazilian or English column layout.
	FormatSpreadsheet Format = "spreadsheet"
)

// Row is one parsed purchase before its vendor is known.
type Row struct {
	Line      int
	Timestamp time.Time
	Station   string
	Amount    int64 // cents
	Volume    int64 // millilitres
	Odometer  int64 // km
	Note      string

	// Vendor is set when the file has an explicit vendor column.
	Vendor string
}

type Importer interface {
	Parse(r io.Reader) ([]Row, error)
}
