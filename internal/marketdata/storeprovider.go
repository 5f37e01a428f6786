package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/store"
)

// Compile-time interface check.
var _ Provider = (*StoreProvider)(nil)

// StoreProvider serves bars from a local BarStore, optionally falling back
// to an upstream Provider on a cache miss and writing the fetched bars
// through to the store.
type StoreProvider struct {
	store    store.BarStore
	upstream Provider // nil for cache-only operation
	log      *slog.Logger
}

// NewStoreProvider creates a cache-first provider. upstream may be nil, in
// which case a cache miss is a miss.
func NewStoreProvider(s store.BarStore, upstream Provider) *StoreProvider {
	return &StoreProvider{
		store:    s,
		upstream: upstream,
		log:      slog.Default().With("provider", "store"),
	}
}

// Bars reads the range from the store and, when empty and an upstream is
// configured, fetches from upstream and writes through before returning.
func (p *StoreProvider) Bars(ctx context.Context, symbol string, interval domain.Interval, start, end time.Time) ([]domain.Bar, error) {
	bars, err := p.store.ReadBars(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("reading cached bars for %s: %w", symbol, err)
	}
	if len(bars) > 0 || p.upstream == nil {
		return bars, nil
	}

	p.log.Debug("cache miss, fetching upstream", "symbol", symbol, "interval", interval)
	fetched, err := p.upstream.Bars(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, err
	}
	if len(fetched) > 0 {
		if err := p.store.WriteBars(ctx, fetched, interval); err != nil {
			// A failed cache write is not fatal; the caller still gets bars.
			p.log.Warn("caching fetched bars failed", "symbol", symbol, "error", err)
		}
	}
	return fetched, nil
}
