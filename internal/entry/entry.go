package entry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidEntry = errors.New("invalid entry")
)

// Vendor tags the station an entry was bought at. Only VendorPrimary counts
// against the budget.
type Vendor string

const (
	VendorPrimary Vendor = "primary"
	VendorOther   Vendor = "other"
)

func (v Vendor) Valid() bool {
	return v == VendorPrimary || v == VendorOther
}

// ParseVendor accepts the canonical tags case-insensitively.
func ParseVendor(s string) (Vendor, error) {
	v := Vendor(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: unknown vendor %q", ErrInvalidEntry, s)
	}

	return v, nil
}

// Entry is a single fuel purchase.
type Entry struct {
	ID        uuid.UUID
	Vendor    Vendor
	Amount    int64 // Amount in cents
	Volume    int64 // Volume in millilitres
	Odometer  int64 // Odometer reading in km
	Note      string
	Timestamp time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
}

// Liters returns the volume as litres.
func (e *Entry) Liters() float64 {
	return float64(e.Volume) / 1000.0
}

// Money returns the amount in currency units.
func (e *Entry) Money() float64 {
	return float64(e.Amount) / 100.0
}

// Validate enforces the invariants every stored entry satisfies.
func (e *Entry) Validate() error {
	if !e.Vendor.Valid() {
		return fmt.Errorf("%w: unknown vendor %q", ErrInvalidEntry, e.Vendor)
	}

	if e.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}

	if e.Volume <= 0 {
		return fmt.Errorf("%w: volume must be positive", ErrInvalidEntry)
	}

	if e.Odometer < 0 {
		return fmt.Errorf("%w: odometer cannot be negative", ErrInvalidEntry)
	}

	return nil
}

// ParseAmount converts a decimal money string ("150.00", "150,00",
// "1.234,56") into cents.
func ParseAmount(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

// ParseVolume converts a decimal litre string ("28.5", "28,500") into millilitres.
func ParseVolume(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}

	return d.Shift(3).Round(0).IntPart(), nil
}

// parseDecimal accepts both dot and comma decimal separators. When both are
// present the last one is the decimal separator and the other groups thousands.
func parseDecimal(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "R$")
	clean = strings.TrimSpace(clean)

	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")

	switch {
	case lastComma > lastDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case lastDot > lastComma && lastComma >= 0:
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %q: %w", s, err)
	}

	return d, nil
}
