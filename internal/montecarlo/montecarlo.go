// Package montecarlo estimates the distribution of possible strategy
// outcomes by bootstrap-resampling the realized per-trade returns of a
// completed backtest.
package montecarlo

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// DefaultSimulations is the trial count used when the caller does not
// specify one.
const DefaultSimulations = 1000

// Gain/loss thresholds for the tail probabilities, as total-return percent.
const (
	gainThresholdPct = 10
	lossThresholdPct = -10
)

// ErrNoTrades is returned when the source backtest produced no completed
// trades; resampling an empty distribution is reported as unavailable
// rather than a divide-by-zero.
var ErrNoTrades = errors.New("montecarlo: no trade returns to resample")

// Result summarizes the simulated total-return distribution. Percentiles are
// nearest-rank over the sorted trials; probabilities are trial fractions in
// [0, 100].
type Result struct {
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

// Resampler runs bootstrap trials over a list of per-trade fractional
// returns. Trials are independent, so they fan out across workers, each
// with its own deterministic rand source derived from the seed.
type Resampler struct {
	seed    int64
	workers int
}

// Option configures a Resampler.
type Option func(*Resampler)

// WithSeed fixes the seed used to derive per-worker rand sources, making
// the whole run reproducible.
func WithSeed(seed int64) Option {
	return func(r *Resampler) { r.seed = seed }
}

// WithWorkers bounds the number of concurrent trial workers.
func WithWorkers(n int) Option {
	return func(r *Resampler) {
		if n > 0 {
			r.workers = n
		}
	}
}

// New creates a Resampler. Without options it seeds from the global rand
// source and uses 4 workers.
func New(opts ...Option) *Resampler {
	r := &Resampler{
		seed:    rand.Int63(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run draws len(tradeReturns) returns with replacement per trial, compounds
// them against the same starting capital, and repeats for n trials
// (DefaultSimulations when n <= 0).
func (r *Resampler) Run(tradeReturns []float64, n int) (*Result, error) {
	if len(tradeReturns) == 0 {
		return nil, ErrNoTrades
	}
	if n <= 0 {
		n = DefaultSimulations
	}

	simulated := make([]float64, n)

	workers := r.workers
	if workers > n {
		workers = n
	}

	// Slice the trials into contiguous chunks, one rand source per worker so
	// no RNG state is shared.
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int, rng *rand.Rand) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				simulated[i] = trial(tradeReturns, rng)
			}
		}(lo, hi, rand.New(rand.NewSource(r.seed+int64(w))))
	}
	wg.Wait()

	sort.Float64s(simulated)

	var profitable, above, below int
	for _, ret := range simulated {
		if ret > 0 {
			profitable++
		}
		if ret > gainThresholdPct {
			above++
		}
		if ret < lossThresholdPct {
			below++
		}
	}

	return &Result{
		Percentile5:  percentile(simulated, 5),
		Percentile25: percentile(simulated, 25),
		Median:       percentile(simulated, 50),
		Percentile75: percentile(simulated, 75),
		Percentile95: percentile(simulated, 95),
		Mean:         stat.Mean(simulated, nil),
		WorstCase:    simulated[0],
		BestCase:     simulated[len(simulated)-1],

		ProbabilityOfProfit:             float64(profitable) / float64(n) * 100,
		ProbabilityOfGainAboveThreshold: float64(above) / float64(n) * 100,
		ProbabilityOfLossBelowThreshold: float64(below) / float64(n) * 100,

		SimulatedReturns: simulated,
	}, nil
}

// trial compounds one bootstrap draw sequence and returns the total return
// as a percentage.
func trial(returns []float64, rng *rand.Rand) float64 {
	value := 1.0
	for range returns {
		value *= 1 + returns[rng.Intn(len(returns))]
	}
	return (value - 1) * 100
}

// percentile returns the nearest-rank p-th percentile of sorted values:
// the ceil(p/100*n)-th order statistic.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
