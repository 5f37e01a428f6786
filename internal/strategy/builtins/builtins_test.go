package builtins

import (
	"testing"

	"quantlab/internal/strategy"
)

func snapFor(closes, volumes []float64) strategy.Snapshot {
	return strategy.NewSnapshot(closes, volumes)
}

func TestMomentum_EntersOnDip(t *testing.T) {
	// A two-bar slide of -10% with RSI at its neutral fallback.
	snap := snapFor([]float64{100, 95, 90}, []float64{1000, 1000, 1000})
	if got := NewMomentum().Evaluate(2, snap); got != strategy.EnterLong {
		t.Errorf("Evaluate on -10%% dip = %q, want %q", got, strategy.EnterLong)
	}
}

func TestMomentum_ExitsOnRally(t *testing.T) {
	snap := snapFor([]float64{100, 90, 81, 95}, []float64{1000, 1000, 1000, 1000})
	if got := NewMomentum().Evaluate(3, snap); got != strategy.ExitLong {
		t.Errorf("Evaluate on sharp rally = %q, want %q", got, strategy.ExitLong)
	}
}

func TestMomentum_HoldsOnDrift(t *testing.T) {
	snap := snapFor([]float64{100, 100.5, 101}, []float64{1000, 1000, 1000})
	if got := NewMomentum().Evaluate(2, snap); got != strategy.Hold {
		t.Errorf("Evaluate on quiet drift = %q, want %q", got, strategy.Hold)
	}
}

func TestMeanReversion_EntersBelowBand(t *testing.T) {
	// Twenty bars around 100 with a final collapse far below the band.
	closes := make([]float64, 21)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes[i] = 101
		} else {
			closes[i] = 99
		}
	}
	closes[20] = 80
	volumes := make([]float64, 21)
	for i := range volumes {
		volumes[i] = 1000
	}

	snap := snapFor(closes, volumes)
	if got := NewMeanReversion().Evaluate(20, snap); got != strategy.EnterLong {
		t.Errorf("Evaluate below lower band = %q, want %q", got, strategy.EnterLong)
	}
}

func TestMeanReversion_ExitsAtMean(t *testing.T) {
	closes := make([]float64, 21)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			closes[i] = 101
		} else {
			closes[i] = 99
		}
	}
	closes[20] = 105
	volumes := make([]float64, 21)

	snap := snapFor(closes, volumes)
	if got := NewMeanReversion().Evaluate(20, snap); got != strategy.ExitLong {
		t.Errorf("Evaluate above mean = %q, want %q", got, strategy.ExitLong)
	}
}

func TestMeanReversion_FlatSeriesHolds(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	snap := snapFor(closes, make([]float64, 30))
	if got := NewMeanReversion().Evaluate(29, snap); got != strategy.Hold {
		t.Errorf("Evaluate on zero-width band = %q, want %q", got, strategy.Hold)
	}
}

func TestTrendFollowing(t *testing.T) {
	rising := make([]float64, 60)
	falling := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 + float64(i)
		falling[i] = 200 - float64(i)
	}
	volumes := make([]float64, 60)

	tf := NewTrendFollowing()
	if got := tf.Evaluate(59, snapFor(rising, volumes)); got != strategy.EnterLong {
		t.Errorf("Evaluate(rising) = %q, want %q", got, strategy.EnterLong)
	}
	if got := tf.Evaluate(59, snapFor(falling, volumes)); got != strategy.ExitLong {
		t.Errorf("Evaluate(falling) = %q, want %q", got, strategy.ExitLong)
	}
}

func TestBreakout_EntersOnNewHighWithVolume(t *testing.T) {
	closes := make([]float64, 21)
	volumes := make([]float64, 21)
	for i := 0; i < 20; i++ {
		closes[i] = 100
		volumes[i] = 1000
	}
	closes[20] = 110
	// Surge the trailing volumes so the 5/20 ratio clears 1.5.
	for i := 16; i <= 20; i++ {
		volumes[i] = 4000
	}

	snap := snapFor(closes, volumes)
	if got := NewBreakout().Evaluate(20, snap); got != strategy.EnterLong {
		t.Errorf("Evaluate on confirmed breakout = %q, want %q", got, strategy.EnterLong)
	}
}

func TestBreakout_NoVolumeNoEntry(t *testing.T) {
	closes := make([]float64, 21)
	volumes := make([]float64, 21)
	for i := 0; i < 20; i++ {
		closes[i] = 100
		volumes[i] = 1000
	}
	closes[20] = 110
	volumes[20] = 1000

	snap := snapFor(closes, volumes)
	if got := NewBreakout().Evaluate(20, snap); got == strategy.EnterLong {
		t.Error("Evaluate entered a breakout without volume confirmation")
	}
}

func TestBreakout_ShortHistoryHolds(t *testing.T) {
	snap := snapFor([]float64{100, 110}, []float64{1000, 5000})
	if got := NewBreakout().Evaluate(1, snap); got != strategy.Hold {
		t.Errorf("Evaluate with short history = %q, want %q", got, strategy.Hold)
	}
}

func TestHybrid_RequiresQuorum(t *testing.T) {
	// The momentum dip scenario convinces only momentum, which is below the
	// two-strategy quorum.
	snap := snapFor([]float64{100, 95, 90}, []float64{1000, 1000, 1000})
	if got := NewHybrid().Evaluate(2, snap); got == strategy.EnterLong {
		t.Error("Evaluate entered on a single agreeing strategy")
	}
}

func TestHybrid_EntersWithAgreement(t *testing.T) {
	// A crash far below the 20-bar band is both a momentum dip and a
	// mean-reversion extreme: two votes, quorum met.
	closes := make([]float64, 23)
	volumes := make([]float64, 23)
	for i := 0; i < 22; i++ {
		if i%2 == 0 {
			closes[i] = 101
		} else {
			closes[i] = 99
		}
		volumes[i] = 1000
	}
	closes[22] = 80
	volumes[22] = 1000

	snap := snapFor(closes, volumes)
	if got := NewHybrid().Evaluate(22, snap); got != strategy.EnterLong {
		t.Errorf("Evaluate with two agreeing strategies = %q, want %q", got, strategy.EnterLong)
	}
}

func TestRegisterAll(t *testing.T) {
	r := strategy.NewRegistry()
	RegisterAll(r)

	want := []string{"breakout", "hybrid", "mean_reversion", "momentum", "trend_following"}
	got := r.List()
	if len(got) != len(want) {
		t.Fatalf("List() returned %d strategies, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
