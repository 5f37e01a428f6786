// Package simulator implements the bar-by-bar trade simulation state
// machine: it replays a price series through a strategy, applies the risk
// rules (stop-loss, trailing stop, take-profit, position sizing), and emits
// a deterministic trade ledger and equity curve.
package simulator

import (
	"fmt"
	"math"

	"quantlab/internal/domain"
	"quantlab/internal/strategy"
)

// Config holds the risk-management parameters for one simulation. All
// percentages are positive decimals (0.03 = 3%). A zero StopLossPct,
// TakeProfitPct, or TrailingStopPct disables that exit rule.
type Config struct {
	StopLossPct     float64
	TakeProfitPct   float64
	TrailingStopPct float64
	PositionSizePct float64
	InitialCapital  float64
}

// Validate rejects configurations before any simulation runs.
func (c Config) Validate() error {
	if c.PositionSizePct <= 0 || c.PositionSizePct > 1 {
		return &InvalidConfigError{Field: "positionSizePct", Reason: fmt.Sprintf("%v outside (0, 1]", c.PositionSizePct)}
	}
	if c.InitialCapital <= 0 {
		return &InvalidConfigError{Field: "initialCapital", Reason: fmt.Sprintf("%v, want > 0", c.InitialCapital)}
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"stopLossPct", c.StopLossPct},
		{"takeProfitPct", c.TakeProfitPct},
		{"trailingStopPct", c.TrailingStopPct},
	} {
		if p.v < 0 || math.IsNaN(p.v) || p.v >= 1 {
			return &InvalidConfigError{Field: p.name, Reason: fmt.Sprintf("%v outside [0, 1)", p.v)}
		}
	}
	return nil
}

// Result is the raw output of one simulation run.
type Result struct {
	Trades []domain.Trade
	Equity []domain.EquityPoint
	// FinalValue is cash on hand after the last bar; any open position has
	// been force-closed by then.
	FinalValue float64
}

// Run replays bars through strat under the given risk configuration.
//
// Exit rules for an open position are evaluated once per bar in fixed
// priority order: stop-loss, trailing stop, take-profit, then signal exit.
// Stop-loss is checked before take-profit deliberately: when one bar's range
// spans both levels the pessimistic fill is taken so backtested performance
// is never overstated. Stop and take-profit fills happen at the trigger
// level; signal fills happen at the bar close. A position still open on the
// final bar is closed at that bar's close.
//
// Bars with missing or non-finite price fields abort the run with a
// DataIntegrityError. Series shorter than the indicator lookbacks still run,
// with the indicators degrading to their documented fallbacks.
func Run(bars []domain.Bar, strat strategy.Strategy, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Trades: []domain.Trade{},
		Equity: make([]domain.EquityPoint, 0, len(bars)),
	}

	cash := cfg.InitialCapital
	var pos *domain.Position

	closes := make([]float64, 0, len(bars))
	volumes := make([]float64, 0, len(bars))

	for i, bar := range bars {
		if err := bar.Validate(); err != nil {
			return nil, &DataIntegrityError{Symbol: bar.Symbol, BarIndex: i, Err: err}
		}

		closes = append(closes, bar.Close)
		volumes = append(volumes, float64(bar.Volume))
		snap := strategy.NewSnapshot(closes, volumes)
		sig := strat.Evaluate(i, snap)

		if pos != nil {
			// Track the highest price seen since entry before checking the
			// trailing stop for this bar.
			if bar.High > pos.PeakPrice {
				pos.PeakPrice = bar.High
			}

			stopPrice := pos.EntryPrice * (1 - cfg.StopLossPct)
			trailPrice := pos.PeakPrice * (1 - cfg.TrailingStopPct)
			takePrice := pos.EntryPrice * (1 + cfg.TakeProfitPct)

			switch {
			case cfg.StopLossPct > 0 && bar.Low <= stopPrice:
				cash = exit(res, &pos, cash, stopPrice, bar, domain.ReasonStopLoss)
			case cfg.TrailingStopPct > 0 && bar.Low <= trailPrice:
				cash = exit(res, &pos, cash, trailPrice, bar, domain.ReasonTrailingStop)
			case cfg.TakeProfitPct > 0 && bar.High >= takePrice:
				cash = exit(res, &pos, cash, takePrice, bar, domain.ReasonTakeProfit)
			case sig == strategy.ExitLong:
				cash = exit(res, &pos, cash, bar.Close, bar, domain.ReasonSignal)
			}
		} else if sig == strategy.EnterLong {
			qty := int64(math.Floor(cash * cfg.PositionSizePct / bar.Close))
			if qty > 0 {
				cost := float64(qty) * bar.Close
				cash -= cost
				pos = &domain.Position{
					EntryPrice: bar.Close,
					EntryTime:  bar.Timestamp,
					Quantity:   qty,
					PeakPrice:  bar.Close,
				}
				res.Trades = append(res.Trades, domain.Trade{
					Action:    domain.ActionBuy,
					Price:     bar.Close,
					Quantity:  qty,
					Timestamp: bar.Timestamp,
				})
			}
			// Sizing to zero shares is not an error; the position is skipped.
		}

		// Force-close on the final bar so no unrealized position is left
		// dangling in the ledger.
		if pos != nil && i == len(bars)-1 {
			cash = exit(res, &pos, cash, bar.Close, bar, domain.ReasonEndOfPeriod)
		}

		value := cash
		if pos != nil {
			value += float64(pos.Quantity) * bar.Close
		}
		res.Equity = append(res.Equity, domain.EquityPoint{
			Timestamp: bar.Timestamp,
			Value:     value,
		})
	}

	res.FinalValue = cash
	return res, nil
}

// exit closes the open position at price, records the sell, and returns the
// updated cash balance.
func exit(res *Result, pos **domain.Position, cash, price float64, bar domain.Bar, reason domain.ExitReason) float64 {
	p := *pos
	proceeds := float64(p.Quantity) * price
	pnl := float64(p.Quantity) * (price - p.EntryPrice)

	res.Trades = append(res.Trades, domain.Trade{
		Action:     domain.ActionSell,
		Price:      price,
		Quantity:   p.Quantity,
		Timestamp:  bar.Timestamp,
		ProfitLoss: pnl,
		Reason:     reason,
	})

	*pos = nil
	return cash + proceeds
}

// TradeReturns extracts the per-round-trip percentage returns from a ledger,
// in execution order. This is the empirical distribution the Monte Carlo
// resampler draws from.
func TradeReturns(trades []domain.Trade) []float64 {
	var returns []float64
	var entry float64
	for _, t := range trades {
		switch t.Action {
		case domain.ActionBuy:
			entry = t.Price
		case domain.ActionSell:
			if entry > 0 {
				returns = append(returns, (t.Price-entry)/entry)
			}
			entry = 0
		}
	}
	return returns
}
