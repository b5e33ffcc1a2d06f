// Package alert decides when a budget threshold crossing is shown to the
// user. Every (period, band) pair is surfaced at most once.
package alert

import (
	"fmt"
	"strings"
)

// Band is a severity level of budget usage.
type Band string

const (
	OK     Band = "OK"
	Warn70 Band = "WARN_70"
	Warn90 Band = "WARN_90"
	Over   Band = "OVER"
)

var bands = []Band{OK, Warn70, Warn90, Over}

// BandFor maps a percentage of the limit to its band. Lower bounds are
// inclusive.
func BandFor(percentUsed float64) Band {
	switch {
	case percentUsed >= 100:
		return Over
	case percentUsed >= 90:
		return Warn90
	case percentUsed >= 70:
		return Warn70
	default:
		return OK
	}
}

// ParseBand accepts the band names case-insensitively.
func ParseBand(s string) (Band, error) {
	b := Band(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range bands {
		if b == known {
			return b, nil
		}
	}

	return "", fmt.Errorf("unknown band %q", s)
}

// Alerting reports whether the band ever produces an alert.
func (b Band) Alerting() bool {
	return b == Warn70 || b == Warn90 || b == Over
}

func (b Band) String() string {
	return string(b)
}
