// Package marketdata defines the price-series provider boundary the engine
// consumes bars through, with implementations backed by the Alpaca
// market-data API, a local bar store, and in-memory fixtures.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"quantlab/internal/domain"
)

// Provider supplies the ordered bar sequence for a symbol over a date range
// at a chosen interval. Implementations must return bars sorted by strictly
// increasing timestamp; gaps are tolerated, not interpolated.
type Provider interface {
	Bars(ctx context.Context, symbol string, interval domain.Interval, start, end time.Time) ([]domain.Bar, error)
}

// StaticProvider serves pre-loaded bars keyed by symbol. It is the fixture
// implementation used in tests and one-shot runs over externally supplied
// series.
type StaticProvider struct {
	bars map[string][]domain.Bar
}

// Compile-time interface check.
var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over the given per-symbol series.
func NewStaticProvider(bars map[string][]domain.Bar) *StaticProvider {
	return &StaticProvider{bars: bars}
}

// Bars returns the stored bars for symbol filtered to [start, end]. An
// unknown symbol is an error, mirroring a data fetch miss.
func (p *StaticProvider) Bars(_ context.Context, symbol string, _ domain.Interval, start, end time.Time) ([]domain.Bar, error) {
	series, ok := p.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("no bars for symbol %q", symbol)
	}

	var out []domain.Bar
	for _, b := range series {
		if !start.IsZero() && b.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && b.Timestamp.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
