// Package strategy defines the Strategy interface for signal generation and
// provides a Registry for managing the named strategy implementations.
//
// Strategies are advisory only: they map indicator snapshots to trading
// intents and never touch capital or position state. The trade simulator
// decides whether a signal is acted on.
package strategy

import (
	"sort"

	"quantlab/internal/indicator"
)

// Signal is the trading intent a strategy emits for one bar.
type Signal string

// Signals.
const (
	EnterLong Signal = "enter_long"
	ExitLong  Signal = "exit_long"
	Hold      Signal = "hold"
)

// Snapshot carries the indicator values computed for one bar. Strategies
// read from it and must not retain it across bars.
type Snapshot struct {
	// Closes and Volumes hold the series up to and including the current bar.
	Closes  []float64
	Volumes []float64

	RSI         float64
	SMA20       float64
	SMA50       float64
	EMA12       float64
	EMA26       float64
	MACD        indicator.MACDResult
	VolumeTrend indicator.VolumeTrend
	Pattern     indicator.Pattern
}

// NewSnapshot computes the full indicator snapshot for the bar at the end of
// the given close/volume history.
func NewSnapshot(closes, volumes []float64) Snapshot {
	return Snapshot{
		Closes:      closes,
		Volumes:     volumes,
		RSI:         indicator.RSI(closes, 14),
		SMA20:       indicator.SMA(closes, 20),
		SMA50:       indicator.SMA(closes, 50),
		EMA12:       indicator.EMA(closes, 12),
		EMA26:       indicator.EMA(closes, 26),
		MACD:        indicator.MACD(closes),
		VolumeTrend: indicator.ClassifyVolumeTrend(volumes),
		Pattern:     indicator.ClassifyPattern(closes),
	}
}

// Close returns the current bar's close.
func (s Snapshot) Close() float64 {
	if len(s.Closes) == 0 {
		return 0
	}
	return s.Closes[len(s.Closes)-1]
}

// Strategy is the interface all signal generators implement.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Evaluate inspects the indicator snapshot for bar i and returns a
	// trading intent. Implementations must be pure: same snapshot, same
	// signal.
	Evaluate(i int, snap Snapshot) Signal
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
