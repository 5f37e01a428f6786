package builtins

import "quantlab/internal/strategy"

// Compile-time interface check.
var _ strategy.Strategy = (*Hybrid)(nil)

// Hybrid requires agreement from at least two of the other four built-in
// strategies before acting, trading frequency for conviction.
type Hybrid struct {
	voters []strategy.Strategy
	quorum int
}

// NewHybrid creates the hybrid strategy over the four other built-ins with a
// quorum of two.
func NewHybrid() *Hybrid {
	return &Hybrid{
		voters: []strategy.Strategy{
			NewMomentum(),
			NewMeanReversion(),
			NewTrendFollowing(),
			NewBreakout(),
		},
		quorum: 2,
	}
}

// Name returns "hybrid".
func (h *Hybrid) Name() string { return "hybrid" }

// Evaluate polls each underlying strategy and returns EnterLong or ExitLong
// only when the quorum agrees. Entry agreement is checked first so a split
// vote (two entries, two exits) errs toward being in the market.
func (h *Hybrid) Evaluate(i int, snap strategy.Snapshot) strategy.Signal {
	var enters, exits int
	for _, v := range h.voters {
		switch v.Evaluate(i, snap) {
		case strategy.EnterLong:
			enters++
		case strategy.ExitLong:
			exits++
		}
	}

	switch {
	case enters >= h.quorum:
		return strategy.EnterLong
	case exits >= h.quorum:
		return strategy.ExitLong
	default:
		return strategy.Hold
	}
}
