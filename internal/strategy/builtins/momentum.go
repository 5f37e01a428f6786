package builtins

import "quantlab/internal/strategy"

// Compile-time interface check.
var _ strategy.Strategy = (*Momentum)(nil)

// Momentum buys sharp short-term dips that are not contradicted by RSI and
// sells sharp short-term rallies or overbought readings. The 2-bar window
// keeps it responsive at the front of a series, where RSI still sits at its
// neutral fallback.
type Momentum struct {
	dipPct  float64
	risePct float64
}

// NewMomentum creates the momentum strategy with its default thresholds: a
// 10% two-bar dip to enter, a 10% two-bar rise or RSI above 70 to exit.
func NewMomentum() *Momentum {
	return &Momentum{dipPct: 0.10, risePct: 0.10}
}

// Name returns "momentum".
func (m *Momentum) Name() string { return "momentum" }

// Evaluate returns EnterLong on a 2-bar drop of at least dipPct with RSI at
// or below neutral, ExitLong on a 2-bar rise of at least risePct or an
// overbought RSI, and Hold otherwise.
func (m *Momentum) Evaluate(_ int, snap strategy.Snapshot) strategy.Signal {
	move := change(snap.Closes, 2)
	switch {
	case move <= -m.dipPct && snap.RSI <= 50:
		return strategy.EnterLong
	case move >= m.risePct || snap.RSI >= 70:
		return strategy.ExitLong
	default:
		return strategy.Hold
	}
}
