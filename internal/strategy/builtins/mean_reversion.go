package builtins

import (
	"quantlab/internal/indicator"
	"quantlab/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MeanReversion)(nil)

// MeanReversion trades extremes of a 20-bar band around the rolling mean:
// it buys a close below mean - k*stddev and exits once price has reverted
// to the mean.
type MeanReversion struct {
	period int
	width  float64
}

// NewMeanReversion creates the mean-reversion strategy with a 20-bar window
// and a 2-standard-deviation band.
func NewMeanReversion() *MeanReversion {
	return &MeanReversion{period: 20, width: 2}
}

// Name returns "mean_reversion".
func (m *MeanReversion) Name() string { return "mean_reversion" }

// Evaluate returns EnterLong below the lower band, ExitLong at or above the
// rolling mean, and Hold inside the band. A flat series has zero band width
// and never triggers an entry.
func (m *MeanReversion) Evaluate(_ int, snap strategy.Snapshot) strategy.Signal {
	price := snap.Close()
	mean := snap.SMA20
	std := indicator.StdDev(snap.Closes, m.period)
	if std == 0 {
		return strategy.Hold
	}

	switch {
	case price < mean-m.width*std:
		return strategy.EnterLong
	case price >= mean:
		return strategy.ExitLong
	default:
		return strategy.Hold
	}
}
