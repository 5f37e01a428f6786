package strategy

import "testing"

// stubStrategy is a minimal Strategy implementation used in registry tests.
type stubStrategy struct {
	name string
}

func (s *stubStrategy) Name() string                      { return s.name }
func (s *stubStrategy) Evaluate(_ int, _ Snapshot) Signal { return Hold }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	s := &stubStrategy{name: "test-strategy"}

	r.Register(s)

	got, ok := r.Get("test-strategy")
	if !ok {
		t.Fatal("Get returned false for registered strategy")
	}
	if got.Name() != "test-strategy" {
		t.Errorf("Get returned strategy with Name() = %q, want %q", got.Name(), "test-strategy")
	}
}

func TestRegistryGet_NotFound(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get("nonexistent")
	if ok {
		t.Error("Get returned true for unregistered strategy")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubStrategy{name: "alpha"})
	r.Register(&stubStrategy{name: "beta"})

	names := r.List()
	if len(names) != 2 {
		t.Fatalf("List returned %d names, want 2", len(names))
	}
	// List returns sorted names.
	if names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("List returned %v, want [alpha beta]", names)
	}
}

func TestNewSnapshot(t *testing.T) {
	closes := []float64{100, 101, 102}
	volumes := []float64{1000, 1100, 1200}

	snap := NewSnapshot(closes, volumes)

	if snap.Close() != 102 {
		t.Errorf("Close() = %v, want 102", snap.Close())
	}
	// Three closes is below every indicator lookback: RSI falls back to
	// neutral and the SMAs collapse to the full-history mean.
	if snap.RSI != 50 {
		t.Errorf("RSI = %v, want neutral 50", snap.RSI)
	}
	if snap.SMA20 != 101 {
		t.Errorf("SMA20 = %v, want 101", snap.SMA20)
	}
}

func TestSnapshotClose_Empty(t *testing.T) {
	var snap Snapshot
	if snap.Close() != 0 {
		t.Errorf("Close() on empty snapshot = %v, want 0", snap.Close())
	}
}
