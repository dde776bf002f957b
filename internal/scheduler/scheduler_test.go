package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fplot/internal/gateway"
	"fplot/internal/model"
	"fplot/internal/options"
	"fplot/internal/recorder"
	"fplot/internal/report"
)

type captureRecorder struct {
	runs  []*recorder.PriceRun
	scans []*recorder.OptionsScan
}

func (c *captureRecorder) RecordPriceRun(r *recorder.PriceRun) error {
	c.runs = append(c.runs, r)
	return nil
}

func (c *captureRecorder) RecordOptionsScan(s *recorder.OptionsScan) error {
	c.scans = append(c.scans, s)
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func TestPrefetchPrices_RecordsRequestedWindow(t *testing.T) {
	n := 2 * 365
	cols := map[string][]float64{"AAPL": make([]float64, n), "SPY": make([]float64, n)}
	for i := 0; i < n; i++ {
		cols["AAPL"][i] = 100 + float64(i)*0.1
		cols["SPY"][i] = 300 + float64(i)*0.05
	}
	series := gateway.MockSeries(time.Now().UTC().AddDate(-2, 0, 0), 24*time.Hour, cols)

	gw := &gateway.MockGateway{Series: series}
	gen := report.NewGenerator(gw, nil, "SPY")
	rec := &captureRecorder{}
	s := NewScheduler(context.Background(), gen, nil, rec, []string{"AAPL"}, "1d")

	s.prefetchPrices()

	require.Len(t, rec.runs, 1)
	// The recorded expression must be the one the generate call was given.
	assert.Equal(t, prefetchWindow, rec.runs[0].SinceExpr)
	assert.Equal(t, []string{"AAPL", "SPY"}, rec.runs[0].Tickers)
	assert.Positive(t, rec.runs[0].SpanDays)
}

func TestPrefetchOptions_RecordsScan(t *testing.T) {
	expiry := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")
	chain := &model.OptionChain{
		Ticker:      "AAPL",
		ExpiryDates: []string{expiry},
		Calls: map[string][]model.ContractQuote{
			expiry: {{Strike: 110, LastPrice: 5, Volume: 100, ImpliedVol: 0.35}},
		},
		Puts:      map[string][]model.ContractQuote{expiry: {}},
		Spot:      model.SomeMetric(100),
		FetchedAt: time.Now().UTC(),
	}
	gw := &gateway.MockGateway{Chain: chain}
	svc := options.NewService(gw, nil)
	rec := &captureRecorder{}
	s := NewScheduler(context.Background(), nil, svc, rec, []string{"AAPL"}, "1d")

	s.prefetchOptions()

	require.Len(t, rec.scans, 1)
	assert.Equal(t, "call", rec.scans[0].Kind)
	assert.Equal(t, 1, rec.scans[0].Contracts)
	assert.Positive(t, rec.scans[0].BestReturn)
}
