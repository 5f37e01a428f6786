// Package indicator implements the numeric indicators used by the signal
// generators: RSI, moving averages, MACD, volume-trend and price-pattern
// classification. All functions are pure, operate on slices they never
// mutate, and degrade to documented defaults on short input instead of
// returning errors — partial history is expected at the start of any series.
package indicator

import "math"

// RSI computes the Wilder relative strength index over the trailing period
// closes. With fewer than period+1 closes it returns the neutral value 50.
// A series with no losses (avgLoss == 0) returns 100.
func RSI(closes []float64, period int) float64 {
	if period <= 0 {
		period = 14
	}
	if len(closes) < period+1 {
		return 50
	}

	var gains, losses float64
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMA computes an exponential moving average seeded with the simple average
// of the first period values. With fewer values than period it returns the
// last value unchanged.
func EMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		return values[len(values)-1]
	}

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	ema := seed / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		ema = (values[i]-ema)*k + ema
	}
	return ema
}

// SMA computes the arithmetic mean of the trailing period values, or of all
// available values if fewer exist.
func SMA(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		period = len(values)
	}

	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// StdDev computes the population standard deviation of the trailing period
// values, or of all available values if fewer exist.
func StdDev(values []float64, period int) float64 {
	if len(values) == 0 {
		return 0
	}
	if period <= 0 || len(values) < period {
		period = len(values)
	}

	window := values[len(values)-period:]
	mean := SMA(window, period)
	var sum2 float64
	for _, v := range window {
		d := v - mean
		sum2 += d * d
	}
	return math.Sqrt(sum2 / float64(period))
}

// MACDResult holds the three MACD components.
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
}

// MACD computes MACD(12, 26, 9) over the closes. The signal line is the EMA
// of a single-element MACD list, which collapses to the MACD value itself;
// MACDHistory keeps a rolling history and produces the textbook signal line.
func MACD(closes []float64) MACDResult {
	macd := EMA(closes, 12) - EMA(closes, 26)
	signal := EMA([]float64{macd}, 9)
	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}

// MACDHistory computes MACD(12, 26, 9) with a true signal line: the MACD
// value is computed at every bar and the signal is the 9-period EMA over
// that history.
func MACDHistory(closes []float64) MACDResult {
	history := make([]float64, 0, len(closes))
	for i := 1; i <= len(closes); i++ {
		history = append(history, EMA(closes[:i], 12)-EMA(closes[:i], 26))
	}
	if len(history) == 0 {
		return MACDResult{}
	}

	macd := history[len(history)-1]
	signal := EMA(history, 9)
	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}

// VolumeTrend classifies recent volume behaviour.
type VolumeTrend string

// Volume trend classes.
const (
	VolumeSurging      VolumeTrend = "surging"
	VolumeIncreasing   VolumeTrend = "increasing"
	VolumeDecreasing   VolumeTrend = "decreasing"
	VolumeNormal       VolumeTrend = "normal"
	VolumeInsufficient VolumeTrend = "insufficient_data"
)

// ClassifyVolumeTrend compares the mean of the last 5 volumes against the
// mean of the last 20. Fewer than 20 points yields VolumeInsufficient.
func ClassifyVolumeTrend(volumes []float64) VolumeTrend {
	if len(volumes) < 20 {
		return VolumeInsufficient
	}

	recent := SMA(volumes, 5)
	base := SMA(volumes, 20)
	if base == 0 {
		return VolumeNormal
	}

	ratio := recent / base
	switch {
	case ratio > 1.5:
		return VolumeSurging
	case ratio > 1.2:
		return VolumeIncreasing
	case ratio < 0.8:
		return VolumeDecreasing
	default:
		return VolumeNormal
	}
}

// Pattern classifies the shape of recent price action.
type Pattern string

// Price pattern classes.
const (
	PatternBullishTrend  Pattern = "bullish_trend"
	PatternBearishTrend  Pattern = "bearish_trend"
	PatternBreakout      Pattern = "breakout"
	PatternConsolidation Pattern = "consolidation"
	PatternNeutral       Pattern = "neutral"
)

// ClassifyPattern compares the current close against SMA20/SMA50 and the
// 20-bar percent change. A move above +5% is a breakout, an absolute move
// under 2% is consolidation, otherwise the SMA alignment decides trend.
func ClassifyPattern(closes []float64) Pattern {
	if len(closes) == 0 {
		return PatternNeutral
	}

	price := closes[len(closes)-1]
	sma20 := SMA(closes, 20)
	sma50 := SMA(closes, 50)

	change := 0.0
	if len(closes) > 20 {
		prev := closes[len(closes)-21]
		if prev != 0 {
			change = (price - prev) / prev
		}
	}

	switch {
	case price > sma20 && sma20 > sma50:
		return PatternBullishTrend
	case price < sma20 && sma20 < sma50:
		return PatternBearishTrend
	case change > 0.05:
		return PatternBreakout
	case change < 0.02 && change > -0.02:
		return PatternConsolidation
	default:
		return PatternNeutral
	}
}
