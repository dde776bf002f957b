package model

import "time"

// ContractKind distinguishes calls from puts.
type ContractKind int

const (
	KindCall ContractKind = iota
	KindPut
)

// Letter returns the single-letter suffix used in contract listings.
func (k ContractKind) Letter() string {
	if k == KindPut {
		return "P"
	}
	return "C"
}

func (k ContractKind) String() string {
	if k == KindPut {
		return "put"
	}
	return "call"
}

// ContractQuote is one raw contract record as returned by the data provider.
// Volume is zero when the provider reported none.
type ContractQuote struct {
	Strike     float64 `json:"strike"`
	LastPrice  float64 `json:"lastPrice"`
	Volume     float64 `json:"volume"`
	ImpliedVol float64 `json:"impliedVol"`
}

// OptionChain is a full chain snapshot for one ticker. A fresh fetch fully
// replaces any previously cached chain; chains are never merged.
type OptionChain struct {
	Ticker      string                     `json:"ticker"`
	ExpiryDates []string                   `json:"expiryDates"` // "YYYY-MM-DD"
	Calls       map[string][]ContractQuote `json:"calls"`       // keyed by expiry date
	Puts        map[string][]ContractQuote `json:"puts"`
	Spot        Metric                     `json:"spot"`
	FetchedAt   time.Time                  `json:"fetchedAt"`
}

// Quotes returns the contract records of the given kind for one expiry.
func (c *OptionChain) Quotes(kind ContractKind, expiry string) []ContractQuote {
	if kind == KindPut {
		return c.Puts[expiry]
	}
	return c.Calls[expiry]
}

// ContractRow is the displayable projection of one contract, immutable
// after construction. Return is the breakeven CAGR for calls and the
// annualized return for puts; it is absent when the contract never traded.
type ContractRow struct {
	Ticker     string
	Strike     float64
	Expiry     string
	Kind       ContractKind
	DTE        int
	LastPrice  float64
	Volume     float64
	Return     Metric
	Delta      Metric
	Leverage   Metric
	Efficiency Metric
}
