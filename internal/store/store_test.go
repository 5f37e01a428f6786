package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"quantlab/internal/domain"
)

func sampleBars(symbol string, n int) []domain.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = domain.Bar{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    int64(1000 + i),
		}
	}
	return bars
}

func testBarStore(t *testing.T, s BarStore) {
	t.Helper()
	ctx := context.Background()

	bars := sampleBars("AAPL", 5)
	if err := s.WriteBars(ctx, bars, domain.IntervalDay); err != nil {
		t.Fatalf("WriteBars() returned error: %v", err)
	}

	start := bars[0].Timestamp
	end := bars[len(bars)-1].Timestamp
	got, err := s.ReadBars(ctx, "AAPL", domain.IntervalDay, start, end)
	if err != nil {
		t.Fatalf("ReadBars() returned error: %v", err)
	}
	if len(got) != len(bars) {
		t.Fatalf("ReadBars() returned %d bars, want %d", len(got), len(bars))
	}
	for i := range got {
		if !got[i].Timestamp.Equal(bars[i].Timestamp) {
			t.Errorf("bar[%d].Timestamp = %v, want %v", i, got[i].Timestamp, bars[i].Timestamp)
		}
		if got[i].Close != bars[i].Close {
			t.Errorf("bar[%d].Close = %v, want %v", i, got[i].Close, bars[i].Close)
		}
	}

	// Range filter excludes the outer bars.
	mid, err := s.ReadBars(ctx, "AAPL", domain.IntervalDay, bars[1].Timestamp, bars[3].Timestamp)
	if err != nil {
		t.Fatalf("ReadBars(mid range) returned error: %v", err)
	}
	if len(mid) != 3 {
		t.Errorf("ReadBars(mid range) returned %d bars, want 3", len(mid))
	}

	// Rewriting the same bars must not duplicate rows.
	if err := s.WriteBars(ctx, bars, domain.IntervalDay); err != nil {
		t.Fatalf("second WriteBars() returned error: %v", err)
	}
	again, err := s.ReadBars(ctx, "AAPL", domain.IntervalDay, start, end)
	if err != nil {
		t.Fatalf("ReadBars() after rewrite returned error: %v", err)
	}
	if len(again) != len(bars) {
		t.Errorf("ReadBars() after rewrite returned %d bars, want %d", len(again), len(bars))
	}

	// Interval is part of the key.
	weekly, err := s.ReadBars(ctx, "AAPL", domain.IntervalWeek, start, end)
	if err != nil {
		t.Fatalf("ReadBars(week) returned error: %v", err)
	}
	if len(weekly) != 0 {
		t.Errorf("ReadBars(week) returned %d bars, want 0", len(weekly))
	}

	symbols, err := s.ListSymbols(ctx, domain.IntervalDay)
	if err != nil {
		t.Fatalf("ListSymbols() returned error: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "AAPL" {
		t.Errorf("ListSymbols() = %v, want [AAPL]", symbols)
	}
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "bars.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() returned error: %v", err)
	}
	defer s.Close()

	testBarStore(t, s)
}

func TestParquetStore(t *testing.T) {
	testBarStore(t, NewParquetStore(t.TempDir()))
}

func TestParquetStore_ReadMissingFile(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	bars, err := s.ReadBars(context.Background(), "MISSING", domain.IntervalDay,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadBars() on empty store returned error: %v", err)
	}
	if len(bars) != 0 {
		t.Errorf("ReadBars() on empty store returned %d bars, want 0", len(bars))
	}
}
