package indicator

import (
	"math"
	"testing"
)

func TestRSI_ShortInputNeutral(t *testing.T) {
	closes := []float64{100, 101, 102}
	if got := RSI(closes, 14); got != 50 {
		t.Errorf("RSI with %d closes = %v, want neutral 50", len(closes), got)
	}
}

func TestRSI_AllGains(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	if got := RSI(closes, 14); got != 100 {
		t.Errorf("RSI on monotonically rising closes = %v, want 100", got)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 - float64(i)
	}
	if got := RSI(closes, 14); got != 0 {
		t.Errorf("RSI on monotonically falling closes = %v, want 0", got)
	}
}

func TestRSI_Balanced(t *testing.T) {
	// Alternating +1/-1 changes: avgGain == avgLoss, so RSI must be 50.
	closes := make([]float64, 21)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	got := RSI(closes, 14)
	if math.Abs(got-50) > 1e-9 {
		t.Errorf("RSI on balanced gains/losses = %v, want 50", got)
	}
}

func TestEMA_ShortInputReturnsLast(t *testing.T) {
	values := []float64{10, 20, 30}
	if got := EMA(values, 5); got != 30 {
		t.Errorf("EMA with short input = %v, want last value 30", got)
	}
}

func TestEMA_ConstantSeries(t *testing.T) {
	values := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	if got := EMA(values, 4); got != 5 {
		t.Errorf("EMA of constant series = %v, want 5", got)
	}
}

func TestEMA_SeedIsSimpleAverage(t *testing.T) {
	// Exactly period values: EMA collapses to the SMA seed.
	values := []float64{1, 2, 3, 4}
	if got := EMA(values, 4); got != 2.5 {
		t.Errorf("EMA of exactly period values = %v, want seed 2.5", got)
	}
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if got := SMA(values, 3); got != 4 {
		t.Errorf("SMA(values, 3) = %v, want 4", got)
	}
	// Fewer values than period: mean of all available.
	if got := SMA(values, 10); got != 3 {
		t.Errorf("SMA(values, 10) = %v, want 3", got)
	}
	if got := SMA(nil, 3); got != 0 {
		t.Errorf("SMA(nil, 3) = %v, want 0", got)
	}
}

func TestMACD_SignalCollapses(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	res := MACD(closes)
	// The signal is the EMA of a one-element list, so it equals the MACD
	// value and the histogram is zero.
	if res.Signal != res.MACD {
		t.Errorf("Signal = %v, MACD = %v, want equal", res.Signal, res.MACD)
	}
	if res.Histogram != 0 {
		t.Errorf("Histogram = %v, want 0", res.Histogram)
	}
	if res.MACD <= 0 {
		t.Errorf("MACD on a rising series = %v, want > 0", res.MACD)
	}
}

func TestMACDHistory_SignalLags(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	res := MACDHistory(closes)
	// On a steadily rising series the MACD history is rising, so the smoothed
	// signal must lag below the latest MACD value.
	if res.Signal >= res.MACD {
		t.Errorf("Signal = %v, want below MACD %v on rising series", res.Signal, res.MACD)
	}
	if res.Histogram <= 0 {
		t.Errorf("Histogram = %v, want > 0 on rising series", res.Histogram)
	}
}

func TestClassifyVolumeTrend(t *testing.T) {
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 1000
	}

	cases := []struct {
		name    string
		volumes func() []float64
		want    VolumeTrend
	}{
		{"insufficient", func() []float64 { return flat[:10] }, VolumeInsufficient},
		{"normal", func() []float64 { return flat }, VolumeNormal},
		{"surging", func() []float64 {
			v := append([]float64{}, flat...)
			for i := 15; i < 20; i++ {
				v[i] = 3000
			}
			return v
		}, VolumeSurging},
		{"decreasing", func() []float64 {
			v := append([]float64{}, flat...)
			for i := 15; i < 20; i++ {
				v[i] = 200
			}
			return v
		}, VolumeDecreasing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyVolumeTrend(tc.volumes()); got != tc.want {
				t.Errorf("ClassifyVolumeTrend = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyPattern(t *testing.T) {
	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	falling := make([]float64, 60)
	for i := range falling {
		falling[i] = 200 - float64(i)
	}
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}

	if got := ClassifyPattern(rising); got != PatternBullishTrend {
		t.Errorf("ClassifyPattern(rising) = %q, want %q", got, PatternBullishTrend)
	}
	if got := ClassifyPattern(falling); got != PatternBearishTrend {
		t.Errorf("ClassifyPattern(falling) = %q, want %q", got, PatternBearishTrend)
	}
	if got := ClassifyPattern(flat); got != PatternConsolidation {
		t.Errorf("ClassifyPattern(flat) = %q, want %q", got, PatternConsolidation)
	}
	if got := ClassifyPattern(nil); got != PatternNeutral {
		t.Errorf("ClassifyPattern(nil) = %q, want %q", got, PatternNeutral)
	}
}
