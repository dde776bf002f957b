package model

import "time"

// Value is a single observation in a price column. Valid is false when the
// provider had no quote for that ticker on that date.
type Value struct {
	Price float64 `json:"price"`
	Valid bool    `json:"valid"`
}

// PriceSeries holds multi-ticker price data aligned on a shared,
// strictly increasing date index. One column per ticker; every column
// has exactly len(Dates) entries.
type PriceSeries struct {
	Dates   []time.Time        `json:"dates"`
	Tickers []string           `json:"tickers"`
	Columns map[string][]Value `json:"columns"`
}

// NewPriceSeries creates an empty series for the given tickers.
func NewPriceSeries(tickers []string) *PriceSeries {
	cols := make(map[string][]Value, len(tickers))
	for _, t := range tickers {
		cols[t] = nil
	}
	return &PriceSeries{Tickers: tickers, Columns: cols}
}

// Len returns the number of rows in the date index.
func (s *PriceSeries) Len() int { return len(s.Dates) }

// SpanDays returns the number of calendar days between the first and last row.
func (s *PriceSeries) SpanDays() int {
	if s.Len() < 2 {
		return 0
	}
	return int(s.Dates[s.Len()-1].Sub(s.Dates[0]).Hours() / 24)
}

// Slice returns a view of rows [i, j). Columns share backing arrays with
// the receiver; callers must not mutate the result.
func (s *PriceSeries) Slice(i, j int) *PriceSeries {
	out := &PriceSeries{
		Dates:   s.Dates[i:j],
		Tickers: s.Tickers,
		Columns: make(map[string][]Value, len(s.Tickers)),
	}
	for _, t := range s.Tickers {
		out.Columns[t] = s.Columns[t][i:j]
	}
	return out
}

// AucRecord is the drawdown area-under-curve for one ticker.
type AucRecord struct {
	Ticker string  `json:"ticker"`
	AUC    float64 `json:"auc"`
}

// CagrRecord is the compound annual growth rate for one ticker.
type CagrRecord struct {
	Ticker string  `json:"ticker"`
	CAGR   float64 `json:"cagr"`
}
