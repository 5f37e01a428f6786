package builtins

import "quantlab/internal/strategy"

// Compile-time interface check.
var _ strategy.Strategy = (*TrendFollowing)(nil)

// TrendFollowing holds a position while the 20-bar average sits above the
// 50-bar average with price confirming. It is a state classifier rather than
// an edge detector, so a simulation started mid-trend still participates.
type TrendFollowing struct{}

// NewTrendFollowing creates the trend-following strategy.
func NewTrendFollowing() *TrendFollowing {
	return &TrendFollowing{}
}

// Name returns "trend_following".
func (tf *TrendFollowing) Name() string { return "trend_following" }

// Evaluate returns EnterLong when price > SMA20 > SMA50, ExitLong when the
// averages have inverted, and Hold in between. Early in a series both
// averages degrade toward the full-history mean and the two sides disagree
// rarely, which keeps the strategy quiet until the averages separate.
func (tf *TrendFollowing) Evaluate(_ int, snap strategy.Snapshot) strategy.Signal {
	price := snap.Close()
	switch {
	case price > snap.SMA20 && snap.SMA20 > snap.SMA50:
		return strategy.EnterLong
	case snap.SMA20 < snap.SMA50:
		return strategy.ExitLong
	default:
		return strategy.Hold
	}
}
