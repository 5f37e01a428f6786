// Package domain defines the shared data types for the backtesting engine:
// OHLCV bars, completed trades, equity curve points, and open positions.
package domain

import (
	"fmt"
	"math"
	"time"
)

// Interval is the fixed time span covered by one bar.
type Interval string

// Supported bar intervals.
const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// AnnualizationFactor returns the factor used to annualize per-bar return
// statistics for this interval (√252 daily, √52 weekly, √12 monthly).
func (iv Interval) AnnualizationFactor() float64 {
	switch iv {
	case IntervalWeek:
		return math.Sqrt(52)
	case IntervalMonth:
		return math.Sqrt(12)
	default:
		return math.Sqrt(252)
	}
}

// Valid reports whether iv is one of the supported intervals.
func (iv Interval) Valid() bool {
	switch iv {
	case IntervalDay, IntervalWeek, IntervalMonth:
		return true
	}
	return false
}

// Bar is a single OHLCV observation. Bars are immutable once loaded and are
// expected to arrive in strictly increasing timestamp order.
type Bar struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Validate checks the bar for missing or non-finite price fields. The
// simulator refuses to run on a bar that fails validation rather than let a
// NaN propagate silently through the equity curve.
func (b Bar) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"open", b.Open},
		{"high", b.High},
		{"low", b.Low},
		{"close", b.Close},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("bar %s at %s: %s is not finite", b.Symbol, b.Timestamp.Format(time.RFC3339), f.name)
		}
		if f.v <= 0 {
			return fmt.Errorf("bar %s at %s: %s = %v, want > 0", b.Symbol, b.Timestamp.Format(time.RFC3339), f.name, f.v)
		}
	}
	if b.Low > b.High {
		return fmt.Errorf("bar %s at %s: low %v > high %v", b.Symbol, b.Timestamp.Format(time.RFC3339), b.Low, b.High)
	}
	return nil
}

// TradeAction distinguishes the two legs of a round trip.
type TradeAction string

// Trade actions.
const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// ExitReason records which rule closed a position.
type ExitReason string

// Exit reasons, in the order the simulator evaluates them.
const (
	ReasonStopLoss     ExitReason = "stop_loss"
	ReasonTrailingStop ExitReason = "trailing_stop"
	ReasonTakeProfit   ExitReason = "take_profit"
	ReasonSignal       ExitReason = "signal"
	ReasonEndOfPeriod  ExitReason = "end_of_period"
)

// Trade is an immutable record of one executed order. A round trip produces
// two trades: a buy with no P/L, then a sell carrying the realized P/L and
// the reason the position was closed.
type Trade struct {
	Action     TradeAction `json:"action"`
	Price      float64     `json:"price"`
	Quantity   int64       `json:"quantity"`
	Timestamp  time.Time   `json:"timestamp"`
	ProfitLoss float64     `json:"profitLoss,omitempty"`
	Reason     ExitReason  `json:"reason,omitempty"`
}

// EquityPoint is the mark-to-market account value after processing one bar.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Position is the transient state held while the simulator is long. At most
// one position is open per simulation; the engine never pyramids.
type Position struct {
	EntryPrice float64
	EntryTime  time.Time
	Quantity   int64
	// PeakPrice is the highest high seen since entry, used to anchor the
	// trailing stop. It never falls.
	PeakPrice float64
}
