package recorder

import "fplot/internal/model"

// PriceRun records one completed price-analytics run.
type PriceRun struct {
	Tickers   []string
	SinceExpr string
	Interval  string
	SpanDays  int
	AUC       []model.AucRecord
	CAGR      []model.CagrRecord
}

// OptionsScan records one options listing.
type OptionsScan struct {
	Ticker     string
	Kind       string
	Contracts  int
	BestReturn float64
}

// Recorder persists historical runs for later review.
type Recorder interface {
	RecordPriceRun(run *PriceRun) error
	RecordOptionsScan(scan *OptionsScan) error
	Close() error
}
