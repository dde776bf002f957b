package options

import (
	"encoding/json"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"fplot/internal/cache"
	"fplot/internal/gateway"
	"fplot/internal/model"
)

// spotFallback stands in for the spot price when the lookup itself fails,
// keeping the listing partially useful instead of aborting it.
const spotFallback = 100.0

// defaultMaxExpiryDays bounds listings when the max-expiry expression is
// absent or unparseable (six months).
const defaultMaxExpiryDays = 180

// SortKey selects the listing order.
type SortKey string

const (
	SortByStrike SortKey = "strike"
	SortByDTE    SortKey = "dte"
	SortByVolume SortKey = "volume" // descending
)

// ListParams controls contract filtering and ordering.
type ListParams struct {
	Kind      model.ContractKind
	SortBy    SortKey
	MaxExpiry string // time span expression, e.g. "3m", "6m", "1y"
	MinDTE    int    // minimum days to expiry; negative means unset
	ShowAll   bool   // ignore the expiry window entirely
}

// Service fetches option chains through the cache and projects them into
// ranked, displayable contract rows. It is synchronous: each call blocks
// on at most one network fetch and one cache file.
type Service struct {
	Gateway    gateway.Gateway
	Cache      *cache.FileCache // nil disables caching
	RiskFree   float64
	Volatility float64 // fallback when a contract carries no implied vol

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// NewService creates a Service with default rate and volatility assumptions.
func NewService(gw gateway.Gateway, c *cache.FileCache) *Service {
	return &Service{
		Gateway:    gw,
		Cache:      c,
		RiskFree:   DefaultRiskFreeRate,
		Volatility: DefaultVolatility,
		Now:        time.Now,
	}
}

// FetchChain returns the chain for ticker, consulting the cache first.
// A fetch-layer error or an empty expiry list yields nil: callers report
// "no options found", never an error.
func (s *Service) FetchChain(ticker string) *model.OptionChain {
	key := strings.ToUpper(ticker) + "_options"

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(key); ok {
			var chain model.OptionChain
			if err := json.Unmarshal(raw, &chain); err == nil && len(chain.ExpiryDates) > 0 {
				return &chain
			}
			// Corrupt or foreign-format entry: fall through to a fresh fetch.
		}
	}

	chain, err := s.Gateway.FetchOptionChain(ticker)
	if err != nil {
		log.Printf("[WARN] fetch option chain for %s: %v", ticker, err)
		return nil
	}
	if chain == nil || len(chain.ExpiryDates) == 0 {
		return nil
	}
	if s.Cache != nil {
		s.Cache.Put(key, chain)
	}
	return chain
}

// DaysToExpiry returns whole days from now until the expiry date,
// rounding down. Malformed dates count as 0.
func (s *Service) DaysToExpiry(expiry string) int {
	t, err := time.Parse("2006-01-02", expiry)
	if err != nil {
		return 0
	}
	return int(math.Floor(t.Sub(s.Now()).Hours() / 24))
}

// FilterExpiries keeps expiries within [0, maxDays] days from now, and at
// least minDays out when minDays is non-negative. Malformed expiry dates
// are skipped, not fatal. showAll bypasses the window entirely.
func (s *Service) FilterExpiries(expiries []string, maxDays, minDays int, showAll bool) []string {
	if showAll {
		return expiries
	}
	var kept []string
	for _, expiry := range expiries {
		if _, err := time.Parse("2006-01-02", expiry); err != nil {
			continue
		}
		dte := s.DaysToExpiry(expiry)
		if dte < 0 || dte > maxDays {
			continue
		}
		if minDays >= 0 && dte < minDays {
			continue
		}
		kept = append(kept, expiry)
	}
	return kept
}

// ListContracts produces the ranked, displayable projection of a ticker's
// contracts of one kind. Stale contracts (negative days to expiry) are
// excluded. An empty result means no options were found.
func (s *Service) ListContracts(ticker string, p ListParams) []model.ContractRow {
	chain := s.FetchChain(ticker)
	if chain == nil {
		return nil
	}

	spot := spotFallback
	if chain.Spot.Valid {
		spot = chain.Spot.Value
	} else if v, err := s.Gateway.FetchSpotPrice(ticker); err == nil && v > 0 {
		spot = v
	} else if err != nil {
		log.Printf("[WARN] spot price for %s unavailable, using fallback: %v", ticker, err)
	}

	maxDays := ParseTimeSpan(p.MaxExpiry)
	expiries := s.FilterExpiries(chain.ExpiryDates, maxDays, p.MinDTE, p.ShowAll)

	upper := strings.ToUpper(ticker)
	var rows []model.ContractRow
	for _, expiry := range expiries {
		dte := s.DaysToExpiry(expiry)
		if dte < 0 {
			continue // stale snapshot data
		}
		for _, q := range chain.Quotes(p.Kind, expiry) {
			rows = append(rows, s.buildRow(upper, expiry, dte, spot, p.Kind, q))
		}
	}

	sortRows(rows, p.SortBy)
	return rows
}

func (s *Service) buildRow(ticker, expiry string, dte int, spot float64, kind model.ContractKind, q model.ContractQuote) model.ContractRow {
	row := model.ContractRow{
		Ticker:    ticker,
		Strike:    q.Strike,
		Expiry:    expiry,
		Kind:      kind,
		DTE:       dte,
		LastPrice: q.LastPrice,
		Volume:    q.Volume,
	}

	if q.LastPrice > 0 {
		if kind == model.KindPut {
			row.Return = model.SomeMetric(PutAnnualizedReturn(spot, q.LastPrice, dte))
		} else {
			row.Return = model.SomeMetric(BreakevenCAGR(spot, q.Strike, q.LastPrice, dte))
		}
	}

	sigma := q.ImpliedVol
	if sigma <= 0 {
		sigma = s.Volatility
	}
	if spot > 0 && q.Strike > 0 && dte > 0 {
		delta := BlackScholesDelta(spot, q.Strike, float64(dte)/365.0, s.RiskFree, sigma, kind)
		row.Delta = model.SomeMetric(delta)
		row.Leverage = ImpliedLeverage(delta, spot, q.LastPrice)
		if row.Return.Valid {
			row.Efficiency = Efficiency(row.Leverage, row.Return.Value)
		}
	}
	return row
}

func sortRows(rows []model.ContractRow, key SortKey) {
	switch key {
	case SortByDTE:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].DTE < rows[j].DTE })
	case SortByVolume:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Volume > rows[j].Volume })
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Strike < rows[j].Strike })
	}
}

var spanRe = regexp.MustCompile(`^(\d+)([mdwy])$`)

// ParseTimeSpan converts expressions like "3m", "2w", "30d", "1y" to days.
// Absent or unparseable expressions yield the six-month default.
func ParseTimeSpan(expr string) int {
	m := spanRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(expr)))
	if m == nil {
		return defaultMaxExpiryDays
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return n
	case "w":
		return n * 7
	case "m":
		return n * 30
	default: // y
		return n * 365
	}
}
