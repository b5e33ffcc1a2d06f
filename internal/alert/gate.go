package alert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MrJamesThe3rd/fuelctl/internal/period"
)

// Key identifies one suppression record.
type Key struct {
	Period period.Label
	Band   Band
}

// Store persists which keys were already surfaced. Put must be idempotent.
type Store interface {
	Has(ctx context.Context, key Key) (bool, error)
	Put(ctx context.Context, key Key) error
}

// Usage is the budget reading the gate evaluates.
type Usage struct {
	Period      period.Label
	Limit       int64
	PercentUsed float64
}

// Alert is what the user gets to see.
type Alert struct {
	Band        Band
	Period      period.Label
	PercentUsed float64
	Message     string
}

// Gate surfaces each (period, band) pair at most once. Calls for the same
// period are serialized.
type Gate struct {
	store  Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[period.Label]*sync.Mutex

	// OnFire, when set, is called after a band is recorded.
	OnFire func(Key)
}

func NewGate(store Store, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		store:  store,
		logger: logger.With("component", "alert_gate"),
		locks:  make(map[period.Label]*sync.Mutex),
	}
}

func (g *Gate) lock(label period.Label) func() {
	g.mu.Lock()

	l, ok := g.locks[label]
	if !ok {
		l = &sync.Mutex{}
		g.locks[label] = l
	}

	g.mu.Unlock()

	l.Lock()

	return l.Unlock
}

// ShouldAlert reports whether band has not been surfaced for label yet. OK
// never alerts.
func (g *Gate) ShouldAlert(ctx context.Context, label period.Label, band Band) (bool, error) {
	if !band.Alerting() {
		return false, nil
	}

	defer g.lock(label)()

	return g.shouldAlert(ctx, Key{Period: label, Band: band})
}

func (g *Gate) shouldAlert(ctx context.Context, key Key) (bool, error) {
	seen, err := g.store.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("checking suppression %s/%s: %w", key.Period, key.Band, err)
	}

	return !seen, nil
}

// MarkAlerted records that band was surfaced for label. OK is never recorded.
func (g *Gate) MarkAlerted(ctx context.Context, label period.Label, band Band) error {
	if !band.Alerting() {
		return nil
	}

	defer g.lock(label)()

	return g.markAlerted(ctx, Key{Period: label, Band: band})
}

func (g *Gate) markAlerted(ctx context.Context, key Key) error {
	if err := g.store.Put(ctx, key); err != nil {
		return fmt.Errorf("recording suppression %s/%s: %w", key.Period, key.Band, err)
	}

	g.logger.Info("budget alert recorded", "period", key.Period, "band", key.Band)

	if g.OnFire != nil {
		g.OnFire(key)
	}

	return nil
}

// Pending returns the alert the caller should display for u, or nil. It
// does not record anything; call MarkAlerted once the alert was shown.
func (g *Gate) Pending(ctx context.Context, u Usage) (*Alert, error) {
	band, ok := alertingBand(u)
	if !ok {
		return nil, nil
	}

	defer g.lock(u.Period)()

	should, err := g.shouldAlert(ctx, Key{Period: u.Period, Band: band})
	if err != nil || !should {
		return nil, err
	}

	return newAlert(u, band), nil
}

// Deliver is Pending followed by MarkAlerted, for callers that display the
// alert right away.
func (g *Gate) Deliver(ctx context.Context, u Usage) (*Alert, error) {
	band, ok := alertingBand(u)
	if !ok {
		return nil, nil
	}

	defer g.lock(u.Period)()

	key := Key{Period: u.Period, Band: band}

	should, err := g.shouldAlert(ctx, key)
	if err != nil || !should {
		return nil, err
	}

	if err := g.markAlerted(ctx, key); err != nil {
		return nil, err
	}

	return newAlert(u, band), nil
}

// alertingBand returns the band of u, false when it cannot alert. A disabled
// budget never alerts.
func alertingBand(u Usage) (Band, bool) {
	if u.Limit <= 0 {
		return OK, false
	}

	band := BandFor(u.PercentUsed)

	return band, band.Alerting()
}

func newAlert(u Usage, band Band) *Alert {
	return &Alert{
		Band:        band,
		Period:      u.Period,
		PercentUsed: u.PercentUsed,
		Message:     fmt.Sprintf("%s: %.2f%% of the %s vendor budget used", band, u.PercentUsed, u.Period),
	}
}
