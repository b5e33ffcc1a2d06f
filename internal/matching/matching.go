// Package matching maps raw station names, as printed on receipts and
// spreadsheets, to vendors.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/fuelctl/internal/entry"
)

var ErrEmptyPattern = errors.New("empty station pattern")

type Repository interface {
	FindMatch(ctx context.Context, rawStation string) (entry.Vendor, bool, error)
	SaveMapping(ctx context.Context, rawPattern string, vendor entry.Vendor) error
}

type Service struct {
	repo Repository

	// primaryName is matched as a substring when nothing was learned.
	primaryName string
}

func NewService(repo Repository, primaryName string) *Service {
	return &Service{repo: repo, primaryName: strings.ToLower(strings.TrimSpace(primaryName))}
}

// Suggest returns the learned vendor for rawStation. Returns false if no
// mapping matches.
func (s *Service) Suggest(ctx context.Context, rawStation string) (entry.Vendor, bool, error) {
	return s.repo.FindMatch(ctx, rawStation)
}

// Classify picks the vendor of rawStation: a learned mapping first, then the
// primary vendor name as a substring, else VendorOther.
func (s *Service) Classify(ctx context.Context, rawStation string) (entry.Vendor, error) {
	if strings.TrimSpace(rawStation) == "" {
		return entry.VendorOther, nil
	}

	v, ok, err := s.repo.FindMatch(ctx, rawStation)
	if err != nil {
		return "", fmt.Errorf("matching station %q: %w", rawStation, err)
	}

	if ok {
		return v, nil
	}

	if s.primaryName != "" && strings.Contains(strings.ToLower(rawStation), s.primaryName) {
		return entry.VendorPrimary, nil
	}

	return entry.VendorOther, nil
}

// Learn remembers that stations containing rawPattern belong to vendor.
func (s *Service) Learn(ctx context.Context, rawPattern string, vendor entry.Vendor) error {
	rawPattern = strings.TrimSpace(rawPattern)
	if rawPattern == "" {
		return ErrEmptyPattern
	}

	if !vendor.Valid() {
		return fmt.Errorf("%w: unknown vendor %q", entry.ErrInvalidEntry, vendor)
	}

	return s.repo.SaveMapping(ctx, rawPattern, vendor)
}
