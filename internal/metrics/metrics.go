// Package metrics reduces a trade ledger and equity curve into summary
// performance statistics.
package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"quantlab/internal/domain"
)

// ProfitFactorCap is reported when there are winning trades and no losing
// trades, instead of dividing by zero.
const ProfitFactorCap = 999

// Summary holds the statistics derived from one completed simulation.
type Summary struct {
	FinalValue     float64 `json:"finalValue"`
	TotalReturnPct float64 `json:"totalReturnPct"`
	TotalTrades    int     `json:"totalTrades"`
	WinningTrades  int     `json:"winningTrades"`
	LosingTrades   int     `json:"losingTrades"`
	WinRate        float64 `json:"winRate"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	ProfitFactor   float64 `json:"profitFactor"`
	AvgWin         float64 `json:"avgWin"`
	AvgLoss        float64 `json:"avgLoss"`
}

// ComputationError reports an unexpected NaN or Infinity surfacing in a
// derived statistic.
type ComputationError struct {
	Metric string
	Value  float64
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("computation: %s = %v", e.Metric, e.Value)
}

// Compute derives the full summary from a ledger and equity curve. A sell
// with ProfitLoss > 0 counts as a win, anything else as a loss. TotalTrades
// counts completed round trips (sells).
func Compute(trades []domain.Trade, equity []domain.EquityPoint, initialCapital float64, interval domain.Interval) (*Summary, error) {
	s := &Summary{FinalValue: initialCapital}
	if len(equity) > 0 {
		s.FinalValue = equity[len(equity)-1].Value
	}
	if initialCapital > 0 {
		s.TotalReturnPct = (s.FinalValue - initialCapital) / initialCapital * 100
	}

	var grossWin, grossLoss float64
	for _, t := range trades {
		if t.Action != domain.ActionSell {
			continue
		}
		s.TotalTrades++
		if t.ProfitLoss > 0 {
			s.WinningTrades++
			grossWin += t.ProfitLoss
		} else {
			s.LosingTrades++
			grossLoss += -t.ProfitLoss
		}
	}

	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	}
	if s.WinningTrades > 0 {
		s.AvgWin = grossWin / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = -grossLoss / float64(s.LosingTrades)
	}

	switch {
	case grossLoss > 0:
		s.ProfitFactor = grossWin / grossLoss
		if s.ProfitFactor > ProfitFactorCap {
			s.ProfitFactor = ProfitFactorCap
		}
	case grossWin > 0:
		s.ProfitFactor = ProfitFactorCap
	}

	s.MaxDrawdownPct = maxDrawdownPct(equity)
	s.SharpeRatio = sharpe(equity, interval)

	for _, m := range []struct {
		name string
		v    float64
	}{
		{"totalReturnPct", s.TotalReturnPct},
		{"maxDrawdownPct", s.MaxDrawdownPct},
		{"sharpeRatio", s.SharpeRatio},
		{"profitFactor", s.ProfitFactor},
	} {
		if math.IsNaN(m.v) || math.IsInf(m.v, 0) {
			return nil, &ComputationError{Metric: m.name, Value: m.v}
		}
	}
	return s, nil
}

// maxDrawdownPct walks the equity curve tracking the running peak and
// returns the deepest peak-to-trough decline as a percentage of the peak.
func maxDrawdownPct(equity []domain.EquityPoint) float64 {
	var peak, maxDD float64
	for _, pt := range equity {
		if pt.Value > peak {
			peak = pt.Value
		}
		if peak > 0 {
			if dd := (peak - pt.Value) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// sharpe computes the annualized Sharpe ratio over per-bar equity returns,
// 0 when the return volatility is 0.
func sharpe(equity []domain.EquityPoint, interval domain.Interval) float64 {
	if len(equity) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, (equity[i].Value-prev)/prev)
	}

	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}
	return mean / std * interval.AnnualizationFactor()
}
