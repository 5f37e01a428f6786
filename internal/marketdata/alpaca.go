package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"quantlab/internal/domain"
	"quantlab/internal/util"
)

// Compile-time interface check.
var _ Provider = (*AlpacaProvider)(nil)

// alpacaRateLimitPerMin matches the free-tier request budget of the Alpaca
// data API.
const alpacaRateLimitPerMin = 200

// AlpacaProvider fetches historical bars from the Alpaca market-data API.
type AlpacaProvider struct {
	client  *marketdata.Client
	feed    marketdata.Feed
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewAlpacaProvider creates a provider using the given Alpaca credentials.
// dataURL overrides the API endpoint when non-empty; feed defaults to "iex",
// the feed available on free-tier keys.
func NewAlpacaProvider(apiKey, apiSecret, dataURL, feed string) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if feed == "" {
		feed = "iex"
	}

	return &AlpacaProvider{
		client:  marketdata.NewClient(opts),
		feed:    marketdata.Feed(feed),
		limiter: util.NewRateLimiter(alpacaRateLimitPerMin),
		log:     slog.Default().With("provider", "alpaca"),
	}
}

// Bars fetches bars for the symbol over [start, end], retrying transient
// API failures with backoff.
func (p *AlpacaProvider) Bars(ctx context.Context, symbol string, interval domain.Interval, start, end time.Time) ([]domain.Bar, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := marketdata.GetBarsRequest{
		TimeFrame: timeFrame(interval),
		Start:     start,
		End:       end,
		Feed:      p.feed,
	}

	var alpacaBars []marketdata.Bar
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		var fetchErr error
		alpacaBars, fetchErr = p.client.GetBars(symbol, req)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Symbol:    strings.ToUpper(symbol),
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })

	p.log.Debug("fetched bars", "symbol", symbol, "interval", interval, "count", len(bars))
	return bars, nil
}

func timeFrame(interval domain.Interval) marketdata.TimeFrame {
	switch interval {
	case domain.IntervalWeek:
		return marketdata.OneWeek
	case domain.IntervalMonth:
		return marketdata.OneMonth
	default:
		return marketdata.OneDay
	}
}
