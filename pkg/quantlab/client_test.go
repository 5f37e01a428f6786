package quantlab

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/engine"
	"quantlab/internal/httpapi"
	"quantlab/internal/marketdata"
	"quantlab/internal/strategy"
	"quantlab/internal/strategy/builtins"
	"quantlab/internal/util"
)

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()

	closes := []float64{100, 95, 90, 99, 108}
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Symbol:    "AAPL",
			Timestamp: start.AddDate(0, 0, i),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		}
	}

	registry := strategy.NewRegistry()
	builtins.RegisterAll(registry)
	provider := marketdata.NewStaticProvider(map[string][]domain.Bar{"AAPL": bars})
	eng := engine.New(provider, registry)
	srv := httpapi.NewServer(eng, registry, util.NewLogger("error"))

	backend := httptest.NewServer(srv.Handler())
	t.Cleanup(backend.Close)
	return backend
}

func TestClientBacktest(t *testing.T) {
	backend := newTestBackend(t)
	c := NewClient(backend.URL)

	resp, err := c.Backtest(context.Background(), &Request{
		Mode:            ModeSingle,
		Symbol:          "AAPL",
		Strategies:      []string{"momentum"},
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital:  10000,
		TakeProfitPct:   0.08,
		PositionSizePct: 1.0,
	})
	if err != nil {
		t.Fatalf("Backtest() returned error: %v", err)
	}

	if resp.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	r := resp.Results[0]
	if r.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", r.TotalTrades)
	}
	if len(r.Trades) != 2 {
		t.Errorf("got %d fills, want buy and sell", len(r.Trades))
	}
	if resp.Best != "momentum" {
		t.Errorf("Best = %q, want %q", resp.Best, "momentum")
	}
}

func TestClientBacktestSurfacesServerError(t *testing.T) {
	backend := newTestBackend(t)
	c := NewClient(backend.URL)

	_, err := c.Backtest(context.Background(), &Request{
		Mode:            ModeSingle,
		Symbol:          "AAPL",
		Strategies:      []string{"momentum"},
		Start:           time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		InitialCapital:  10000,
		PositionSizePct: 2.0,
	})
	if err == nil {
		t.Fatal("Backtest() = nil error, want rejection for bad config")
	}
}

func TestClientStrategies(t *testing.T) {
	backend := newTestBackend(t)
	c := NewClient(backend.URL)

	names, err := c.Strategies(context.Background())
	if err != nil {
		t.Fatalf("Strategies() returned error: %v", err)
	}
	if len(names) != 5 {
		t.Errorf("got %d strategies, want 5: %v", len(names), names)
	}
}

func TestClientHealth(t *testing.T) {
	backend := newTestBackend(t)
	c := NewClient(backend.URL)

	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() returned error: %v", err)
	}
}
