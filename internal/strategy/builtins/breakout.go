package builtins

import (
	"quantlab/internal/indicator"
	"quantlab/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*Breakout)(nil)

// Breakout buys a close above the prior 20-bar high when volume confirms the
// expansion, and exits once price falls back under the 20-bar average.
type Breakout struct {
	lookback int
}

// NewBreakout creates the volatility-breakout strategy with a 20-bar
// lookback window.
func NewBreakout() *Breakout {
	return &Breakout{lookback: 20}
}

// Name returns "breakout".
func (b *Breakout) Name() string { return "breakout" }

// Evaluate returns EnterLong when the close clears the highest close of the
// previous lookback bars and the volume trend is surging or increasing,
// ExitLong when the close drops below SMA20, and Hold otherwise. Without a
// full lookback window of history there is no prior range to break, so the
// strategy holds.
func (b *Breakout) Evaluate(_ int, snap strategy.Snapshot) strategy.Signal {
	if len(snap.Closes) <= b.lookback {
		return strategy.Hold
	}

	price := snap.Close()
	prior := snap.Closes[len(snap.Closes)-1-b.lookback : len(snap.Closes)-1]
	high := prior[0]
	for _, c := range prior[1:] {
		if c > high {
			high = c
		}
	}

	volumeConfirms := snap.VolumeTrend == indicator.VolumeSurging ||
		snap.VolumeTrend == indicator.VolumeIncreasing

	switch {
	case price > high && volumeConfirms:
		return strategy.EnterLong
	case price < snap.SMA20:
		return strategy.ExitLong
	default:
		return strategy.Hold
	}
}
