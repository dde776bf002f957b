package gateway

import (
	"time"

	"fplot/internal/model"
)

// Gateway defines the interface for fetching market data. Implementations
// own their timeout policy; the engine never retries a failed fetch.
type Gateway interface {
	// FetchPriceSeries returns adjusted-close history for the tickers since
	// the given start (nil means full history) at the given interval.
	FetchPriceSeries(tickers []string, since *time.Time, interval string) (*model.PriceSeries, error)
	// FetchOptionChain returns the full chain snapshot for one ticker.
	FetchOptionChain(ticker string) (*model.OptionChain, error)
	// FetchSpotPrice returns the latest traded price for one ticker.
	FetchSpotPrice(ticker string) (float64, error)
	Name() string
}

// WithBenchmark ensures a comparison reference: a single requested ticker
// other than the benchmark implies the benchmark is added to the set.
func WithBenchmark(tickers []string, benchmark string) []string {
	if len(tickers) != 1 || tickers[0] == benchmark {
		return tickers
	}
	return append([]string{tickers[0]}, benchmark)
}
