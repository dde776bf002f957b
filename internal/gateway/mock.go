package gateway

import (
	"sort"
	"time"

	"fplot/internal/model"
)

// MockGateway returns controllable fixed data for development and testing.
type MockGateway struct {
	Series   *model.PriceSeries
	Chain    *model.OptionChain
	Spot     float64
	Err      error
	SpotErr  error
	Fetches  int // FetchPriceSeries call count
	ChainGet int // FetchOptionChain call count
}

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) FetchPriceSeries(tickers []string, since *time.Time, interval string) (*model.PriceSeries, error) {
	m.Fetches++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Series, nil
}

func (m *MockGateway) FetchOptionChain(ticker string) (*model.OptionChain, error) {
	m.ChainGet++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Chain, nil
}

func (m *MockGateway) FetchSpotPrice(ticker string) (float64, error) {
	if m.SpotErr != nil {
		return 0, m.SpotErr
	}
	return m.Spot, nil
}

// MockSeries builds an aligned series from equal-length columns; handy for
// tests that need a valid shared date index.
func MockSeries(start time.Time, step time.Duration, cols map[string][]float64) *model.PriceSeries {
	var tickers []string
	n := 0
	for t, vals := range cols {
		tickers = append(tickers, t)
		if len(vals) > n {
			n = len(vals)
		}
	}
	sort.Strings(tickers)
	series := model.NewPriceSeries(tickers)
	for i := 0; i < n; i++ {
		series.Dates = append(series.Dates, start.Add(time.Duration(i)*step))
	}
	for t, vals := range cols {
		col := make([]model.Value, n)
		for i, v := range vals {
			if v > 0 {
				col[i] = model.Value{Price: v, Valid: true}
			}
		}
		series.Columns[t] = col
	}
	return series
}
