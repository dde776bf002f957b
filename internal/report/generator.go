// Package report orchestrates the price pipeline: resolve the window,
// fetch the series through the cache, clean partial rows, then derive
// normalized prices, drawdowns, AUC, CAGR, and rolling median CAGR.
package report

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"fplot/internal/analytics"
	"fplot/internal/cache"
	"fplot/internal/dates"
	"fplot/internal/gateway"
	"fplot/internal/model"
)

// NormalizedBase is the shared starting value every ticker is rescaled to.
const NormalizedBase = 100.0

// Rolling-CAGR span guards, in days. Shorter spans produce degenerate
// small-sample medians and the table is withheld.
const (
	minRolling1ySpanDays = 548  // 1.5 years
	minRolling3ySpanDays = 1278 // 3.5 years
)

// PriceReport is the full analytics output for one ticker set and window.
// Nil tables mean "withheld", not "all zeros".
type PriceReport struct {
	Tickers    []string
	Since      *time.Time // nil means full history
	Interval   string
	Raw        *model.PriceSeries
	Normalized *model.PriceSeries
	Drawdowns  *model.PriceSeries
	AUC        []model.AucRecord
	CAGR       []model.CagrRecord // nil when the window spans under a year
	Rolling1y  []model.CagrRecord // nil when the span is under 1.5 years
	Rolling3y  []model.CagrRecord // nil when the span is under 3.5 years
	SpanDays   int
}

// Empty reports whether the fetch produced no usable data.
func (r *PriceReport) Empty() bool {
	return r.Raw == nil || r.Raw.Len() == 0
}

// Generator builds PriceReports. The cache is optional; without it every
// call goes to the gateway.
type Generator struct {
	Gateway   gateway.Gateway
	Cache     *cache.FileCache
	Benchmark string
	Resolver  *dates.Resolver
}

// NewGenerator creates a Generator with the default date resolver.
func NewGenerator(gw gateway.Gateway, c *cache.FileCache, benchmark string) *Generator {
	return &Generator{Gateway: gw, Cache: c, Benchmark: benchmark, Resolver: dates.NewResolver()}
}

// Generate resolves sinceExpr, fetches the (benchmark-expanded) ticker
// set, and runs the full pipeline. A malformed date expression is the only
// user-facing error; an empty fetch yields an Empty report, not an error.
func (g *Generator) Generate(tickers []string, sinceExpr, interval string) (*PriceReport, error) {
	since, err := g.Resolver.Resolve(sinceExpr)
	if err != nil {
		return nil, err
	}
	interval = gateway.NormalizeInterval(interval)
	tickers = gateway.WithBenchmark(normalizeTickers(tickers), g.Benchmark)

	series := g.fetchSeries(tickers, since, interval)
	report := &PriceReport{Tickers: tickers, Since: since, Interval: interval, Raw: series}
	if report.Empty() {
		return report, nil
	}

	// Partial rows at either end corrupt normalization and CAGR endpoints.
	series = analytics.DropIncompleteLastRow(series)
	series = analytics.TrimLeadingIncompleteRows(series)
	report.Raw = series
	if series.Len() == 0 {
		return report, nil
	}
	report.SpanDays = series.SpanDays()

	normalized, err := analytics.Normalize(series, NormalizedBase)
	if err != nil {
		return nil, fmt.Errorf("normalize %v: %w", tickers, err)
	}
	report.Normalized = normalized
	report.Drawdowns = analytics.Drawdowns(normalized)
	report.AUC = analytics.AreaUnderCurve(report.Drawdowns)
	report.CAGR = analytics.CAGR(normalized)

	if report.SpanDays >= minRolling1ySpanDays {
		report.Rolling1y = analytics.RollingMedianCAGR(series, 1)
	}
	if report.SpanDays >= minRolling3ySpanDays {
		report.Rolling3y = analytics.RollingMedianCAGR(series, 3)
	}
	return report, nil
}

// fetchSeries consults the price cache before going to the gateway. Any
// fetch error degrades to "no data"; retry policy belongs to the caller.
func (g *Generator) fetchSeries(tickers []string, since *time.Time, interval string) *model.PriceSeries {
	key := priceCacheKey(tickers, since, interval)

	if g.Cache != nil {
		if raw, ok := g.Cache.Get(key); ok {
			var series model.PriceSeries
			if err := json.Unmarshal(raw, &series); err == nil && series.Len() > 0 {
				return &series
			}
		}
	}

	series, err := g.Gateway.FetchPriceSeries(tickers, since, interval)
	if err != nil {
		log.Printf("[WARN] fetch price series %v: %v", tickers, err)
		return nil
	}
	if series != nil && series.Len() > 0 && g.Cache != nil {
		g.Cache.Put(key, series)
	}
	return series
}

func priceCacheKey(tickers []string, since *time.Time, interval string) string {
	start := "max"
	if since != nil {
		start = since.Format("2006-01-02")
	}
	return fmt.Sprintf("prices_%s_%s_%s", strings.Join(tickers, "-"), interval, start)
}

func normalizeTickers(tickers []string) []string {
	out := make([]string, 0, len(tickers))
	seen := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
