// Package fuelcsv reads fuel logs exported from spreadsheets.
package fuelcsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/fuelctl/internal/encoding"
	"github.com/MrJamesThe3rd/fuelctl/internal/importer"
)

var ErrUnknownLayout = errors.New("no matching fuel log layout found")

// Parser auto-detects the layout by matching column headers against known
// profiles, and the delimiter from the first line that has one.
type Parser struct {
	loc *time.Location
}

// NewParser returns a parser that reads dates without a zone in loc.
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}

	return &Parser{loc: loc}
}

func (p *Parser) Parse(r io.Reader) ([]importer.Row, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	comma, err := sniffDelimiter(br)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("%w: expected Data;Posto;Valor;Litros;KM or Date,Station,Amount,Volume,Odometer", ErrUnknownLayout)
	}

	return p.parseRows(profile, cols, rows[headerIdx+1:], lines[headerIdx+1:])
}

// sniffDelimiter peeks at the first non-empty line. Semicolons win since
// Brazilian exports use commas as decimal separators.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	for n := 64; ; n *= 2 {
		buf, err := br.Peek(n)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return 0, fmt.Errorf("peek: %w", err)
		}

		for line := range strings.Lines(string(buf)) {
			if strings.TrimSpace(line) == "" {
				continue
			}

			if !strings.HasSuffix(line, "\n") && err == nil {
				break
			}

			if strings.Contains(line, ";") {
				return ';', nil
			}

			return ',', nil
		}

		if err != nil {
			return ',', nil
		}
	}
}

type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return false
		}
	}

	return true
}

func (c colIndex) of(name string) int {
	if name == "" {
		return -1
	}

	idx, ok := c[strings.ToLower(name)]
	if !ok {
		return -1
	}

	return idx
}

// parseRows skips rows without a readable date (blank lines, totals,
// footers) and fails on rows that have a date but bad numbers. lines holds
// the file line of every row, for error messages.
func (p *Parser) parseRows(prof *Profile, cols colIndex, rows [][]string, lines []int) ([]importer.Row, error) {
	var (
		dateIdx     = cols.of(prof.DateCol)
		amountIdx   = cols.of(prof.AmountCol)
		volumeIdx   = cols.of(prof.VolumeCol)
		odometerIdx = cols.of(prof.OdometerCol)
		stationIdx  = cols.of(prof.StationCol)
		noteIdx     = cols.of(prof.NoteCol)
		vendorIdx   = cols.of(prof.VendorCol)
	)

	var out []importer.Row

	for i, row := range rows {
		rowNum := lines[i]

		ts, ok := p.parseDate(prof, cellValue(row, dateIdx))
		if !ok {
			continue
		}

		amount, err := parseNumber(prof, cellValue(row, amountIdx), 2)
		if err != nil {
			return nil, fmt.Errorf("row %d: amount: %w", rowNum, err)
		}

		volume, err := parseNumber(prof, cellValue(row, volumeIdx), 3)
		if err != nil {
			return nil, fmt.Errorf("row %d: volume: %w", rowNum, err)
		}

		odometer := int64(0)
		if s := cellValue(row, odometerIdx); s != "" {
			odometer, err = parseNumber(prof, s, 0)
			if err != nil {
				return nil, fmt.Errorf("row %d: odometer: %w", rowNum, err)
			}
		}

		out = append(out, importer.Row{
			Line:      rowNum,
			Timestamp: ts,
			Station:   cellValue(row, stationIdx),
			Amount:    amount,
			Volume:    volume,
			Odometer:  odometer,
			Note:      cellValue(row, noteIdx),
			Vendor:    cellValue(row, vendorIdx),
		})
	}

	return out, nil
}

func (p *Parser) parseDate(prof *Profile, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range prof.DateLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseNumber reads a number in the profile's notation and scales it by
// 10^shift, rounding to an integer.
func parseNumber(prof *Profile, s string, shift int32) (int64, error) {
	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if clean == "" {
		return 0, errors.New("empty value")
	}

	clean = strings.ReplaceAll(clean, prof.Thousands, "")
	clean = strings.ReplaceAll(clean, prof.Decimal, ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}

	return d.Shift(shift).Round(0).IntPart(), nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
