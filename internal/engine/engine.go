// Package engine orchestrates backtest runs: it fans a request out across
// (symbol, strategy) pairs, drives the simulator and metrics for each pair
// concurrently, optionally resamples outcomes via Monte Carlo, and ranks
// the per-pair results.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"quantlab/internal/domain"
	"quantlab/internal/marketdata"
	"quantlab/internal/metrics"
	"quantlab/internal/montecarlo"
	"quantlab/internal/simulator"
	"quantlab/internal/strategy"
)

// Mode selects how the request is expanded into (symbol, strategy) pairs.
type Mode string

// Run modes.
const (
	ModeSingle            Mode = "single"
	ModeCompareStrategies Mode = "compare_strategies"
	ModeCompareSymbols    Mode = "compare_symbols"
)

// Request describes one backtest invocation.
type Request struct {
	Mode       Mode            `json:"mode"`
	Symbol     string          `json:"symbol,omitempty"`
	Symbols    []string        `json:"symbols,omitempty"`
	Strategies []string        `json:"strategies,omitempty"`
	Start      time.Time       `json:"startDate"`
	End        time.Time       `json:"endDate"`
	Interval   domain.Interval `json:"interval,omitempty"`

	InitialCapital  float64 `json:"initialCapital"`
	StopLossPct     float64 `json:"stopLossPct"`
	TakeProfitPct   float64 `json:"takeProfitPct"`
	TrailingStopPct float64 `json:"trailingStopPct"`
	PositionSizePct float64 `json:"positionSizePct"`

	RunMonteCarlo  bool `json:"runMonteCarlo"`
	MonteCarloSims int  `json:"monteCarloSimulations,omitempty"`
}

// BacktestResult aggregates everything derived from one (symbol, strategy)
// simulation. It is recomputed each run and never mutated after creation.
// A pair that failed carries its message in Error with zeroed statistics.
type BacktestResult struct {
	Symbol         string    `json:"symbol"`
	Strategy       string    `json:"strategy"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	InitialCapital float64   `json:"initialCapital"`

	metrics.Summary

	Trades      []domain.Trade       `json:"trades"`
	EquityCurve []domain.EquityPoint `json:"equityCurve"`

	Error string `json:"error,omitempty"`
}

// Key returns the stable composite identifier for this pair.
func (r *BacktestResult) Key() string {
	return r.Symbol + "/" + r.Strategy
}

// Response is the aggregate outcome of one orchestrated run.
type Response struct {
	RunID   string            `json:"runId"`
	Results []*BacktestResult `json:"results"`
	// Best names the winning strategy (single / compare_strategies) or
	// symbol (compare_symbols) by total return, ties broken by Sharpe.
	Best       string                        `json:"bestStrategyOrSymbol,omitempty"`
	MonteCarlo map[string]*montecarlo.Result `json:"monteCarlo,omitempty"`
}

// Engine wires the provider and strategy registry into an orchestrator.
type Engine struct {
	provider   marketdata.Provider
	registry   *strategy.Registry
	maxWorkers int
	mcWorkers  int
	mcSims     int
	log        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxWorkers bounds the number of (symbol, strategy) pairs simulated
// concurrently.
func WithMaxWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

// WithMonteCarloWorkers bounds the goroutines used per Monte Carlo
// resampling run.
func WithMonteCarloWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.mcWorkers = n
		}
	}
}

// WithMonteCarloSims sets the trial count used when a request does not
// specify one.
func WithMonteCarloSims(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.mcSims = n
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an Engine reading bars from provider and strategies from
// registry. Default worker bound is 4.
func New(provider marketdata.Provider, registry *strategy.Registry, opts ...Option) *Engine {
	e := &Engine{
		provider:   provider,
		registry:   registry,
		maxWorkers: 4,
		mcWorkers:  4,
		log:        slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pair is one unit of fan-out work.
type pair struct {
	symbol   string
	strategy string
}

// Run executes the request. Configuration problems are rejected up front;
// per-pair data or computation failures are attached to that pair's result
// and never abort the batch. On context timeout the pairs finished so far
// are still returned.
func (e *Engine) Run(ctx context.Context, req *Request) (*Response, error) {
	pairs, err := e.expand(req)
	if err != nil {
		return nil, err
	}

	cfg := simulator.Config{
		StopLossPct:     req.StopLossPct,
		TakeProfitPct:   req.TakeProfitPct,
		TrailingStopPct: req.TrailingStopPct,
		PositionSizePct: req.PositionSizePct,
		InitialCapital:  req.InitialCapital,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	interval := req.Interval
	if interval == "" {
		interval = domain.IntervalDay
	}

	runID := uuid.NewString()
	log := e.log.With("run", runID)
	log.Info("starting run", "mode", req.Mode, "pairs", len(pairs))
	start := time.Now()

	results := make([]*BacktestResult, len(pairs))

	jobs := make(chan int, len(pairs))
	for i := range pairs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	workers := min(e.maxWorkers, len(pairs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := pairs[i]
				if ctx.Err() != nil {
					results[i] = failedResult(p, req, fmt.Errorf("run aborted: %w", ctx.Err()))
					continue
				}
				results[i] = e.runPair(ctx, p, req, cfg, interval, log)
			}
		}()
	}
	wg.Wait()

	resp := &Response{
		RunID:   runID,
		Results: results,
		Best:    bestLabel(req.Mode, results),
	}

	if req.RunMonteCarlo {
		sims := req.MonteCarloSims
		if sims <= 0 {
			sims = e.mcSims
		}
		resp.MonteCarlo = e.resample(results, sims, log)
	}

	log.Info("run complete", "elapsed", time.Since(start).Round(time.Millisecond))
	return resp, nil
}

// expand validates the request shape and lists its (symbol, strategy) pairs.
func (e *Engine) expand(req *Request) ([]pair, error) {
	strategies := req.Strategies
	if len(strategies) == 0 {
		strategies = e.registry.List()
	}
	for _, name := range strategies {
		if _, ok := e.registry.Get(name); !ok {
			return nil, &simulator.InvalidConfigError{Field: "strategies", Reason: fmt.Sprintf("unknown strategy %q", name)}
		}
	}
	if req.Interval != "" && !req.Interval.Valid() {
		return nil, &simulator.InvalidConfigError{Field: "interval", Reason: fmt.Sprintf("%q not one of day, week, month", req.Interval)}
	}

	switch req.Mode {
	case ModeSingle:
		if req.Symbol == "" {
			return nil, &simulator.InvalidConfigError{Field: "symbol", Reason: "required in single mode"}
		}
		if len(strategies) != 1 {
			return nil, &simulator.InvalidConfigError{Field: "strategies", Reason: "single mode takes exactly one strategy"}
		}
		return []pair{{symbol: req.Symbol, strategy: strategies[0]}}, nil

	case ModeCompareStrategies:
		if req.Symbol == "" {
			return nil, &simulator.InvalidConfigError{Field: "symbol", Reason: "required in compare_strategies mode"}
		}
		pairs := make([]pair, 0, len(strategies))
		for _, name := range strategies {
			pairs = append(pairs, pair{symbol: req.Symbol, strategy: name})
		}
		return pairs, nil

	case ModeCompareSymbols:
		if len(req.Symbols) == 0 {
			return nil, &simulator.InvalidConfigError{Field: "symbols", Reason: "required in compare_symbols mode"}
		}
		if len(strategies) != 1 {
			return nil, &simulator.InvalidConfigError{Field: "strategies", Reason: "compare_symbols mode takes exactly one strategy"}
		}
		pairs := make([]pair, 0, len(req.Symbols))
		for _, sym := range req.Symbols {
			pairs = append(pairs, pair{symbol: sym, strategy: strategies[0]})
		}
		return pairs, nil

	default:
		return nil, &simulator.InvalidConfigError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", req.Mode)}
	}
}

// runPair executes one simulation end to end. All failures are converted to
// a flagged result.
func (e *Engine) runPair(ctx context.Context, p pair, req *Request, cfg simulator.Config, interval domain.Interval, log *slog.Logger) *BacktestResult {
	strat, _ := e.registry.Get(p.strategy)

	bars, err := e.provider.Bars(ctx, p.symbol, interval, req.Start, req.End)
	if err != nil {
		log.Warn("pair failed fetching bars", "symbol", p.symbol, "strategy", p.strategy, "error", err)
		return failedResult(p, req, fmt.Errorf("fetching bars: %w", err))
	}

	sim, err := simulator.Run(bars, strat, cfg)
	if err != nil {
		log.Warn("pair failed simulating", "symbol", p.symbol, "strategy", p.strategy, "error", err)
		return failedResult(p, req, err)
	}

	summary, err := metrics.Compute(sim.Trades, sim.Equity, cfg.InitialCapital, interval)
	if err != nil {
		log.Warn("pair failed computing metrics", "symbol", p.symbol, "strategy", p.strategy, "error", err)
		return failedResult(p, req, err)
	}

	return &BacktestResult{
		Symbol:         p.symbol,
		Strategy:       p.strategy,
		StartDate:      req.Start,
		EndDate:        req.End,
		InitialCapital: cfg.InitialCapital,
		Summary:        *summary,
		Trades:         sim.Trades,
		EquityCurve:    sim.Equity,
	}
}

// resample runs Monte Carlo over every successful pair that produced trades.
func (e *Engine) resample(results []*BacktestResult, sims int, log *slog.Logger) map[string]*montecarlo.Result {
	out := make(map[string]*montecarlo.Result)
	resampler := montecarlo.New(montecarlo.WithWorkers(e.mcWorkers))

	for _, r := range results {
		if r.Error != "" {
			continue
		}
		mc, err := resampler.Run(simulator.TradeReturns(r.Trades), sims)
		if err != nil {
			// No trades to resample; reported as unavailable by omission.
			log.Debug("monte carlo skipped", "pair", r.Key(), "reason", err)
			continue
		}
		out[r.Key()] = mc
	}
	return out
}

// bestLabel picks the reporting label of the top result: highest total
// return, ties broken by higher Sharpe ratio. Failed pairs never win.
func bestLabel(mode Mode, results []*BacktestResult) string {
	var best *BacktestResult
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		if best == nil ||
			r.TotalReturnPct > best.TotalReturnPct ||
			(r.TotalReturnPct == best.TotalReturnPct && r.SharpeRatio > best.SharpeRatio) {
			best = r
		}
	}
	if best == nil {
		return ""
	}
	if mode == ModeCompareSymbols {
		return best.Symbol
	}
	return best.Strategy
}

// failedResult builds the flagged placeholder for a pair that could not be
// analyzed.
func failedResult(p pair, req *Request, err error) *BacktestResult {
	return &BacktestResult{
		Symbol:         p.symbol,
		Strategy:       p.strategy,
		StartDate:      req.Start,
		EndDate:        req.End,
		InitialCapital: req.InitialCapital,
		Error:          err.Error(),
	}
}
