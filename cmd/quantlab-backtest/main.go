package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"quantlab/internal/config"
	"quantlab/internal/domain"
	"quantlab/internal/engine"
	"quantlab/internal/marketdata"
	"quantlab/internal/store"
	"quantlab/internal/strategy"
	"quantlab/internal/strategy/builtins"
	"quantlab/internal/util"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("QUANTLAB_CONFIG"), "path to YAML config (optional)")
	mode := flag.String("mode", "single", "run mode: single, compare_strategies, compare_symbols")
	symbol := flag.String("symbol", "", "symbol (single / compare_strategies)")
	symbols := flag.String("symbols", "", "comma-separated symbols (compare_symbols)")
	strategies := flag.String("strategies", "", "comma-separated strategy names (empty = all)")
	startDate := flag.String("start", "", "start date YYYY-MM-DD")
	endDate := flag.String("end", "", "end date YYYY-MM-DD (default today)")
	interval := flag.String("interval", "day", "bar interval: day, week, month")
	capital := flag.Float64("capital", 0, "initial capital (default from config)")
	stopLoss := flag.Float64("stop-loss", 0, "stop loss fraction, e.g. 0.05")
	takeProfit := flag.Float64("take-profit", 0, "take profit fraction, e.g. 0.1")
	trailingStop := flag.Float64("trailing-stop", 0, "trailing stop fraction")
	sizePct := flag.Float64("size", 0, "position size fraction (default from config)")
	monteCarlo := flag.Bool("monte-carlo", false, "run Monte Carlo resampling on results")
	sims := flag.Int("sims", 0, "Monte Carlo simulation count (default from config)")
	asJSON := flag.Bool("json", false, "print the full response as JSON")
	list := flag.Bool("list", false, "list registered strategies and exit")
	flag.Parse()

	registry := strategy.NewRegistry()
	builtins.RegisterAll(registry)

	if *list {
		for _, name := range registry.List() {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	req, err := buildRequest(cfg, *mode, *symbol, *symbols, *strategies, *startDate, *endDate, *interval)
	if err != nil {
		log.Fatalf("invalid arguments: %v", err)
	}
	// Flags override config risk defaults only when given on the command
	// line, so `-stop-loss 0` still disables a configured stop.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyRiskFlags(req, set, *stopLoss, *takeProfit, *trailingStop, *capital, *sizePct)

	req.RunMonteCarlo = *monteCarlo
	if *sims > 0 {
		req.MonteCarloSims = *sims
	}

	provider, cleanup, err := newProvider(cfg)
	if err != nil {
		log.Fatalf("initializing provider: %v", err)
	}
	defer cleanup()

	eng := engine.New(provider, registry,
		engine.WithMaxWorkers(cfg.Engine.MaxWorkers),
		engine.WithMonteCarloWorkers(cfg.Engine.MonteCarloWorkers),
		engine.WithMonteCarloSims(cfg.Engine.MonteCarloSimulations),
		engine.WithLogger(logger),
	)

	resp, err := eng.Run(context.Background(), req)
	if err != nil {
		log.Fatalf("running backtest: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			log.Fatalf("encoding response: %v", err)
		}
		return
	}

	printResults(resp)
}

// applyRiskFlags copies the risk parameters whose flags were set onto the
// request, leaving the config-seeded defaults in place for the rest.
func applyRiskFlags(req *engine.Request, set map[string]bool, stopLoss, takeProfit, trailingStop, capital, sizePct float64) {
	if set["stop-loss"] {
		req.StopLossPct = stopLoss
	}
	if set["take-profit"] {
		req.TakeProfitPct = takeProfit
	}
	if set["trailing-stop"] {
		req.TrailingStopPct = trailingStop
	}
	if set["capital"] {
		req.InitialCapital = capital
	}
	if set["size"] {
		req.PositionSizePct = sizePct
	}
}

// buildRequest assembles the engine request from flags with config defaults.
func buildRequest(cfg *config.Config, mode, symbol, symbols, strategies, startDate, endDate, interval string) (*engine.Request, error) {
	req := &engine.Request{
		Mode:            engine.Mode(mode),
		Symbol:          strings.ToUpper(symbol),
		InitialCapital:  cfg.Risk.InitialCapital,
		StopLossPct:     cfg.Risk.StopLossPct,
		TakeProfitPct:   cfg.Risk.TakeProfitPct,
		TrailingStopPct: cfg.Risk.TrailingStopPct,
		PositionSizePct: cfg.Risk.PositionSizePct,
		MonteCarloSims:  cfg.Engine.MonteCarloSimulations,
	}
	req.Interval = domain.Interval(interval)

	if symbols != "" {
		for _, s := range strings.Split(symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Symbols = append(req.Symbols, strings.ToUpper(s))
			}
		}
	}
	if strategies != "" {
		for _, s := range strings.Split(strategies, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Strategies = append(req.Strategies, s)
			}
		}
	}

	if startDate == "" {
		return nil, fmt.Errorf("-start is required")
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing -start: %w", err)
	}
	req.Start = start

	req.End = time.Now().UTC().Truncate(24 * time.Hour)
	if endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("parsing -end: %w", err)
		}
		req.End = end
	}

	return req, nil
}

func newProvider(cfg *config.Config) (marketdata.Provider, func(), error) {
	var barStore store.BarStore
	cleanup := func() {}

	switch cfg.Storage.Backend {
	case "sqlite":
		s, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		barStore, cleanup = s, func() { s.Close() }
	case "", "parquet":
		barStore = store.NewParquetStore(cfg.Storage.DataDir)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	var upstream marketdata.Provider
	if cfg.Alpaca.APIKey != "" {
		upstream = marketdata.NewAlpacaProvider(cfg.Alpaca.APIKey, cfg.Alpaca.APISecret, cfg.Alpaca.DataURL, cfg.Alpaca.Feed)
	}

	return marketdata.NewStoreProvider(barStore, upstream), cleanup, nil
}

func printResults(resp *engine.Response) {
	fmt.Printf("Run %s\n\n", resp.RunID)
	fmt.Printf("%-10s %-16s %10s %8s %8s %10s %8s\n",
		"SYMBOL", "STRATEGY", "RETURN%", "TRADES", "WIN%", "MAXDD%", "SHARPE")

	for _, r := range resp.Results {
		if r.Error != "" {
			fmt.Printf("%-10s %-16s failed: %s\n", r.Symbol, r.Strategy, r.Error)
			continue
		}
		fmt.Printf("%-10s %-16s %10.2f %8d %8.1f %10.2f %8.2f\n",
			r.Symbol, r.Strategy, r.TotalReturnPct, r.TotalTrades, r.WinRate, r.MaxDrawdownPct, r.SharpeRatio)
	}

	if resp.Best != "" {
		fmt.Printf("\nBest: %s\n", resp.Best)
	}

	for key, mc := range resp.MonteCarlo {
		fmt.Printf("\nMonte Carlo %s (%d simulations)\n", key, len(mc.SimulatedReturns))
		fmt.Printf("  mean %.2f%%  p5 %.2f%%  median %.2f%%  p95 %.2f%%\n",
			mc.Mean, mc.Percentile5, mc.Median, mc.Percentile95)
		fmt.Printf("  P(profit) %.1f%%  P(>+10%%) %.1f%%  P(<-10%%) %.1f%%\n",
			mc.ProbabilityOfProfit, mc.ProbabilityOfGainAboveThreshold, mc.ProbabilityOfLossBelowThreshold)
	}
}
