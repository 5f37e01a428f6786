// Package quantlab provides a Go client for the quantlab-server API.
package quantlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Run modes accepted by the server.
const (
	ModeSingle            = "single"
	ModeCompareStrategies = "compare_strategies"
	ModeCompareSymbols    = "compare_symbols"
)

// Request describes one backtest invocation.
type Request struct {
	Mode       string    `json:"mode"`
	Symbol     string    `json:"symbol,omitempty"`
	Symbols    []string  `json:"symbols,omitempty"`
	Strategies []string  `json:"strategies,omitempty"`
	Start      time.Time `json:"startDate"`
	End        time.Time `json:"endDate"`
	Interval   string    `json:"interval,omitempty"`

	InitialCapital  float64 `json:"initialCapital"`
	StopLossPct     float64 `json:"stopLossPct"`
	TakeProfitPct   float64 `json:"takeProfitPct"`
	TrailingStopPct float64 `json:"trailingStopPct"`
	PositionSizePct float64 `json:"positionSizePct"`

	RunMonteCarlo  bool `json:"runMonteCarlo"`
	MonteCarloSims int  `json:"monteCarloSimulations,omitempty"`
}

// Trade is one executed fill.
type Trade struct {
	Action     string    `json:"action"`
	Price      float64   `json:"price"`
	Quantity   int64     `json:"quantity"`
	Timestamp  time.Time `json:"timestamp"`
	ProfitLoss float64   `json:"profitLoss,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// EquityPoint is the portfolio value at one bar.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// BacktestResult holds everything derived from one (symbol, strategy) pair.
// A failed pair carries its message in Error with zeroed statistics.
type BacktestResult struct {
	Symbol         string    `json:"symbol"`
	Strategy       string    `json:"strategy"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	InitialCapital float64   `json:"initialCapital"`

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

	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equityCurve"`

	Error string `json:"error,omitempty"`
}

// MonteCarloResult summarizes the bootstrap return distribution for one pair.
type MonteCarloResult struct {
	Percentile5  float64 `json:"percentile5"`
	Percentile25 float64 `json:"percentile25"`
	Median       float64 `json:"median"`
	Percentile75 float64 `json:"percentile75"`
	Percentile95 float64 `json:"percentile95"`
	Mean         float64 `json:"mean"`
	WorstCase    float64 `json:"worstCase"`
	BestCase     float64 `json:"bestCase"`

	ProbabilityOfProfit             float64 `json:"probabilityOfProfit"`
	ProbabilityOfGainAboveThreshold float64 `json:"probabilityOfGainAboveThreshold"`
	ProbabilityOfLossBelowThreshold float64 `json:"probabilityOfLossBelowThreshold"`

	SimulatedReturns []float64 `json:"simulatedReturns"`
}

// Response is the aggregate outcome of one run.
type Response struct {
	RunID      string                      `json:"runId"`
	Results    []BacktestResult            `json:"results"`
	Best       string                      `json:"bestStrategyOrSymbol,omitempty"`
	MonteCarlo map[string]MonteCarloResult `json:"monteCarlo,omitempty"`
}

// Client calls the quantlab-server REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Backtest submits a run request and returns the full response.
func (c *Client) Backtest(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/backtest", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var resp Response
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Strategies lists the strategy names registered on the server.
func (c *Client) Strategies(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/strategies", nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Strategies []string `json:"strategies"`
	}
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return resp.Strategies, nil
}

// Health checks server liveness.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	return c.do(httpReq, nil)
}

// do executes the request and decodes a JSON body into out when non-nil.
// Non-2xx statuses become errors carrying the server's message.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", req.Method, req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
