package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"fplot/internal/model"
)

// YahooGateway implements Gateway using the Yahoo Finance public API.
type YahooGateway struct {
	Client    *http.Client
	Limiter   *rate.Limiter
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooGateway creates a new Yahoo Finance gateway.
func NewYahooGateway(proxyURL string) *YahooGateway {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &YahooGateway{
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Limiter: rate.NewLimiter(rate.Limit(5), 5),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

func (g *YahooGateway) Name() string { return "yahoo" }

func (g *YahooGateway) yahooSymbol(symbol string) string {
	if mapped, ok := g.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []interface{} `json:"close"`
				} `json:"quote"`
				Adjclose []struct {
					Adjclose []interface{} `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooOptions is the response structure from the Yahoo Finance options API.
type yahooOptions struct {
	OptionChain struct {
		Result []struct {
			Quote struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []yahooContract `json:"calls"`
				Puts           []yahooContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

type yahooContract struct {
	Strike            float64  `json:"strike"`
	LastPrice         float64  `json:"lastPrice"`
	Volume            *float64 `json:"volume"`
	ImpliedVolatility float64  `json:"impliedVolatility"`
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (g *YahooGateway) getJSON(u string, out interface{}) error {
	if err := g.Limiter.Wait(context.Background()); err != nil {
		return fmt.Errorf("yahoo rate limit: %w", err)
	}

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

type pricePoint struct {
	date  time.Time
	price float64
}

// fetchAdjClose returns adjusted-close points for one symbol, aligned to
// calendar dates (UTC) so series from different exchanges share an index.
func (g *YahooGateway) fetchAdjClose(symbol string, since *time.Time, interval string) ([]pricePoint, error) {
	base := fmt.Sprintf("https://query1.finance.yahoo.com/v8/finance/chart/%s", url.PathEscape(g.yahooSymbol(symbol)))
	params := url.Values{}
	params.Set("interval", interval)
	params.Set("includeAdjustedClose", "true")
	if since != nil {
		params.Set("period1", fmt.Sprintf("%d", since.Unix()))
		params.Set("period2", fmt.Sprintf("%d", time.Now().Unix()))
	} else {
		params.Set("range", "max")
	}

	var chart yahooChart
	if err := g.getJSON(base+"?"+params.Encode(), &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	var closes []interface{}
	if len(result.Indicators.Adjclose) > 0 {
		closes = result.Indicators.Adjclose[0].Adjclose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	points := make([]pricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) {
			break
		}
		p, ok := toFloat(closes[i])
		if !ok || p == 0 {
			continue // skip null bars (holidays etc.)
		}
		t := time.Unix(ts, 0).UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		points = append(points, pricePoint{date: day, price: p})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].date.Before(points[j].date) })
	return points, nil
}

// FetchPriceSeries fetches each ticker's history and merges the columns on
// a shared, strictly increasing date index. A ticker with no quote for a
// given date gets an invalid cell, never a partial fill.
func (g *YahooGateway) FetchPriceSeries(tickers []string, since *time.Time, interval string) (*model.PriceSeries, error) {
	interval = NormalizeInterval(interval)

	byTicker := make(map[string][]pricePoint, len(tickers))
	dateSet := make(map[time.Time]struct{})
	for _, t := range tickers {
		points, err := g.fetchAdjClose(t, since, interval)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", t, err)
		}
		byTicker[t] = points
		for _, p := range points {
			dateSet[p.date] = struct{}{}
		}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	series := model.NewPriceSeries(tickers)
	series.Dates = dates
	for _, t := range tickers {
		prices := make(map[time.Time]float64, len(byTicker[t]))
		for _, p := range byTicker[t] {
			prices[p.date] = p.price
		}
		col := make([]model.Value, len(dates))
		for i, d := range dates {
			if price, ok := prices[d]; ok {
				col[i] = model.Value{Price: price, Valid: true}
			}
		}
		series.Columns[t] = col
	}
	return series, nil
}

// FetchOptionChain fetches expiry dates and the per-expiry call/put records
// for one ticker. Expiries that fail to fetch are skipped, not fatal.
func (g *YahooGateway) FetchOptionChain(ticker string) (*model.OptionChain, error) {
	base := fmt.Sprintf("https://query2.finance.yahoo.com/v7/finance/options/%s", url.PathEscape(g.yahooSymbol(ticker)))

	var first yahooOptions
	if err := g.getJSON(base, &first); err != nil {
		return nil, err
	}
	if first.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", first.OptionChain.Error.Description)
	}
	if len(first.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no option chain for %s", ticker)
	}

	result := first.OptionChain.Result[0]
	chain := &model.OptionChain{
		Ticker:    ticker,
		Calls:     make(map[string][]model.ContractQuote),
		Puts:      make(map[string][]model.ContractQuote),
		FetchedAt: time.Now(),
	}
	if result.Quote.RegularMarketPrice > 0 {
		chain.Spot = model.SomeMetric(result.Quote.RegularMarketPrice)
	}

	for _, unix := range result.ExpirationDates {
		expiry := time.Unix(unix, 0).UTC().Format("2006-01-02")

		var page yahooOptions
		if err := g.getJSON(base+"?"+url.Values{"date": {fmt.Sprintf("%d", unix)}}.Encode(), &page); err != nil {
			log.Printf("[WARN] options expiry %s for %s: %v", expiry, ticker, err)
			continue
		}
		if len(page.OptionChain.Result) == 0 || len(page.OptionChain.Result[0].Options) == 0 {
			continue
		}
		opts := page.OptionChain.Result[0].Options[0]
		chain.ExpiryDates = append(chain.ExpiryDates, expiry)
		chain.Calls[expiry] = convertContracts(opts.Calls)
		chain.Puts[expiry] = convertContracts(opts.Puts)
	}
	return chain, nil
}

func convertContracts(raw []yahooContract) []model.ContractQuote {
	out := make([]model.ContractQuote, 0, len(raw))
	for _, c := range raw {
		q := model.ContractQuote{
			Strike:     c.Strike,
			LastPrice:  c.LastPrice,
			ImpliedVol: c.ImpliedVolatility,
		}
		if c.Volume != nil {
			q.Volume = *c.Volume
		}
		out = append(out, q)
	}
	return out
}

// FetchSpotPrice returns the most recent close for the symbol.
func (g *YahooGateway) FetchSpotPrice(ticker string) (float64, error) {
	since := time.Now().AddDate(0, 0, -7)
	points, err := g.fetchAdjClose(ticker, &since, "1d")
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("yahoo: no price data for %s", ticker)
	}
	return points[len(points)-1].price, nil
}
