// Package store provides local bar caches so repeated backtests over the
// same range do not refetch market data. Two backends are available: SQLite
// for a single-file cache and Parquet for a per-symbol columnar layout.
//
// Only input data is cached here; backtest results are never persisted.
package store

import (
	"context"
	"time"

	"quantlab/internal/domain"
)

// BarStore persists and retrieves OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars at the given interval, merging with
	// any bars already stored for the same (symbol, timestamp).
	WriteBars(ctx context.Context, bars []domain.Bar, interval domain.Interval) error

	// ReadBars returns bars for the symbol and interval within [start, end],
	// sorted by timestamp.
	ReadBars(ctx context.Context, symbol string, interval domain.Interval, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols stored at the given interval.
	ListSymbols(ctx context.Context, interval domain.Interval) ([]string, error)
}
