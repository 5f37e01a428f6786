// Package builtins provides the built-in strategy implementations that ship
// with the engine. Each strategy is a different combination of the indicator
// library's outputs; all of them work on degraded indicator values early in
// a series rather than refusing to evaluate.
package builtins

import "quantlab/internal/strategy"

// RegisterAll registers every built-in strategy in the given registry.
func RegisterAll(r *strategy.Registry) {
	r.Register(NewMomentum())
	r.Register(NewMeanReversion())
	r.Register(NewTrendFollowing())
	r.Register(NewBreakout())
	r.Register(NewHybrid())
}

// change returns the fractional change between the current close and the
// close lookback bars earlier, or 0 if not enough history exists.
func change(closes []float64, lookback int) float64 {
	if len(closes) <= lookback {
		return 0
	}
	prev := closes[len(closes)-1-lookback]
	if prev == 0 {
		return 0
	}
	return (closes[len(closes)-1] - prev) / prev
}
