package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fplot/internal/cache"
	"fplot/internal/dates"
	"fplot/internal/gateway"
	"fplot/internal/model"
)

var (
	frozen = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	start  = frozen.AddDate(-2, 0, 0)
)

func frozenGenerator(gw gateway.Gateway, c *cache.FileCache) *Generator {
	g := NewGenerator(gw, c, "SPY")
	g.Resolver = &dates.Resolver{Now: func() time.Time { return frozen }}
	return g
}

func twoYearSeries() *model.PriceSeries {
	n := 2 * 365
	cols := map[string][]float64{"AAPL": make([]float64, n), "SPY": make([]float64, n)}
	for i := 0; i < n; i++ {
		cols["AAPL"][i] = 100 + float64(i)*0.1
		cols["SPY"][i] = 300 + float64(i)*0.05
	}
	return gateway.MockSeries(start, 24*time.Hour, cols)
}

func TestGenerate_FullPipeline(t *testing.T) {
	gw := &gateway.MockGateway{Series: twoYearSeries()}
	g := frozenGenerator(gw, nil)

	rep, err := g.Generate([]string{"aapl"}, "2y", "1d")
	require.NoError(t, err)
	require.False(t, rep.Empty())

	// Benchmark implicitly added for a single requested ticker.
	assert.Equal(t, []string{"AAPL", "SPY"}, rep.Tickers)

	require.NotNil(t, rep.Normalized)
	assert.InDelta(t, 100, rep.Normalized.Columns["AAPL"][0].Price, 1e-9)
	require.Len(t, rep.AUC, 2)
	require.Len(t, rep.CAGR, 2, "two-year window must produce a CAGR table")
	require.NotNil(t, rep.Rolling1y, "two-year span passes the 1.5y rolling guard")
	assert.Nil(t, rep.Rolling3y, "two-year span fails the 3.5y rolling guard")
}

func TestGenerate_CagrWithheldUnderOneYear(t *testing.T) {
	n := 300
	cols := map[string][]float64{"AAPL": make([]float64, n), "SPY": make([]float64, n)}
	for i := 0; i < n; i++ {
		cols["AAPL"][i] = 100 + float64(i)
		cols["SPY"][i] = 300 + float64(i)
	}
	gw := &gateway.MockGateway{Series: gateway.MockSeries(frozen.AddDate(0, 0, -n), 24*time.Hour, cols)}
	g := frozenGenerator(gw, nil)

	rep, err := g.Generate([]string{"AAPL", "SPY"}, "10m", "1d")
	require.NoError(t, err)
	assert.Nil(t, rep.CAGR)
	assert.Nil(t, rep.Rolling1y)
	assert.NotNil(t, rep.AUC, "AUC has no minimum-span requirement")
}

func TestGenerate_InvalidDateExpression(t *testing.T) {
	g := frozenGenerator(&gateway.MockGateway{Series: twoYearSeries()}, nil)
	_, err := g.Generate([]string{"AAPL"}, "last 5 xyz", "1d")
	assert.ErrorIs(t, err, dates.ErrInvalidExpression)
}

func TestGenerate_FetchErrorMeansEmptyNotError(t *testing.T) {
	g := frozenGenerator(&gateway.MockGateway{Err: errors.New("provider down")}, nil)
	rep, err := g.Generate([]string{"AAPL"}, "1y", "1d")
	require.NoError(t, err)
	assert.True(t, rep.Empty())
}

func TestGenerate_DropsIncompleteLastRow(t *testing.T) {
	series := twoYearSeries()
	// Knock out the final AAPL observation: the whole row must go.
	col := series.Columns["AAPL"]
	col[len(col)-1] = model.Value{}
	rows := series.Len()

	g := frozenGenerator(&gateway.MockGateway{Series: series}, nil)
	rep, err := g.Generate([]string{"AAPL", "SPY"}, "2y", "1d")
	require.NoError(t, err)
	assert.Equal(t, rows-1, rep.Raw.Len())
}

func TestGenerate_ServesFromCache(t *testing.T) {
	gw := &gateway.MockGateway{Series: twoYearSeries()}
	c := cache.New(t.TempDir(), 24*time.Hour)
	g := frozenGenerator(gw, c)

	_, err := g.Generate([]string{"AAPL"}, "2y", "1d")
	require.NoError(t, err)
	require.Equal(t, 1, gw.Fetches)

	rep, err := g.Generate([]string{"AAPL"}, "2y", "1d")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.Fetches, "second run must hit the price cache")
	assert.False(t, rep.Empty())
}

func TestGenerate_IntervalAliasNormalized(t *testing.T) {
	gw := &gateway.MockGateway{Series: twoYearSeries()}
	g := frozenGenerator(gw, nil)

	rep, err := g.Generate([]string{"AAPL"}, "2y", "1w")
	require.NoError(t, err)
	assert.Equal(t, "1wk", rep.Interval)
}

func TestWithBenchmark(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "SPY"}, gateway.WithBenchmark([]string{"AAPL"}, "SPY"))
	assert.Equal(t, []string{"SPY"}, gateway.WithBenchmark([]string{"SPY"}, "SPY"))
	assert.Equal(t, []string{"AAPL", "TSLA"}, gateway.WithBenchmark([]string{"AAPL", "TSLA"}, "SPY"))
}
