// Package analytics computes comparable risk/return metrics over
// multi-ticker price series: normalization, drawdowns, drawdown
// area-under-curve, CAGR, and rolling median CAGR.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"fplot/internal/model"
)

// daysPerYear converts a calendar-day span into years for annualization.
const daysPerYear = 365.25

// minCagrSpanDays is the shortest window CAGR is defined over. Shorter
// windows produce degenerate annualized figures and are withheld entirely.
const minCagrSpanDays = 365

// DropIncompleteLastRow removes the final row when any ticker is missing
// there. A ticker delisted or trading on a different exchange calendar
// leaves a partial last row that corrupts drawdown and CAGR endpoints;
// the row is dropped whole, never partially filled.
func DropIncompleteLastRow(s *model.PriceSeries) *model.PriceSeries {
	n := s.Len()
	if n == 0 {
		return s
	}
	for _, t := range s.Tickers {
		if !s.Columns[t][n-1].Valid {
			return s.Slice(0, n-1)
		}
	}
	return s
}

// TrimLeadingIncompleteRows drops rows from the front until every ticker
// has a value, so normalization has a complete first row to scale by.
// Tickers with shorter histories otherwise poison every comparison.
func TrimLeadingIncompleteRows(s *model.PriceSeries) *model.PriceSeries {
	n := s.Len()
	for i := 0; i < n; i++ {
		complete := true
		for _, t := range s.Tickers {
			if !s.Columns[t][i].Valid {
				complete = false
				break
			}
		}
		if complete {
			return s.Slice(i, n)
		}
	}
	return s.Slice(n, n)
}

// Normalize rescales every column so its first value equals base.
// It fails when the first row is zero or missing for any column; the
// caller must have already dropped invalid leading/trailing rows.
func Normalize(s *model.PriceSeries, base float64) (*model.PriceSeries, error) {
	if s.Len() == 0 {
		return nil, errors.New("normalize: empty series")
	}
	out := model.NewPriceSeries(s.Tickers)
	out.Dates = s.Dates
	for _, t := range s.Tickers {
		col := s.Columns[t]
		first := col[0]
		if !first.Valid || first.Price == 0 {
			return nil, fmt.Errorf("normalize: %s has no usable first value", t)
		}
		scaled := make([]model.Value, len(col))
		for i, v := range col {
			if v.Valid {
				scaled[i] = model.Value{Price: v.Price / first.Price * base, Valid: true}
			}
		}
		out.Columns[t] = scaled
	}
	return out, nil
}

// Drawdowns computes value/runningmax - 1 per column. Every result is <= 0,
// and exactly 0 at each running-maximum point. Cells before a column's
// first valid value stay invalid.
func Drawdowns(s *model.PriceSeries) *model.PriceSeries {
	out := model.NewPriceSeries(s.Tickers)
	out.Dates = s.Dates
	for _, t := range s.Tickers {
		col := s.Columns[t]
		dd := make([]model.Value, len(col))
		runMax := math.Inf(-1)
		for i, v := range col {
			if !v.Valid {
				continue
			}
			if v.Price > runMax {
				runMax = v.Price
			}
			dd[i] = model.Value{Price: v.Price/runMax - 1, Valid: true}
		}
		out.Columns[t] = dd
	}
	return out
}

// AreaUnderCurve integrates |drawdown| per ticker with the trapezoidal rule
// over integer positions of that ticker's non-missing rows. A ticker with
// fewer than two valid points scores 0. Records are sorted by AUC
// descending: the largest historical loss area ranks first.
func AreaUnderCurve(dd *model.PriceSeries) []model.AucRecord {
	records := make([]model.AucRecord, 0, len(dd.Tickers))
	for _, t := range dd.Tickers {
		var ys []float64
		for _, v := range dd.Columns[t] {
			if v.Valid {
				ys = append(ys, math.Abs(v.Price))
			}
		}
		auc := 0.0
		for i := 1; i < len(ys); i++ {
			auc += (ys[i-1] + ys[i]) / 2
		}
		records = append(records, model.AucRecord{Ticker: t, AUC: auc})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].AUC > records[j].AUC })
	return records
}

// CAGR computes (end/start)^(1/years) - 1 per ticker using the first and
// last observed values. The whole table is withheld (nil) when the series
// spans under a year; a ticker without a positive start value is absent
// from the table rather than reported as zero.
func CAGR(s *model.PriceSeries) []model.CagrRecord {
	if s.SpanDays() < minCagrSpanDays {
		return nil
	}
	years := float64(s.SpanDays()) / daysPerYear

	records := make([]model.CagrRecord, 0, len(s.Tickers))
	for _, t := range s.Tickers {
		col := s.Columns[t]
		start, end := col[0], col[len(col)-1]
		if !start.Valid || !end.Valid || start.Price <= 0 {
			continue
		}
		cagr := math.Pow(end.Price/start.Price, 1/years) - 1
		records = append(records, model.CagrRecord{Ticker: t, CAGR: cagr})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].CAGR > records[j].CAGR })
	return records
}

// RollingMedianCAGR computes, per ticker, the median CAGR over every
// trailing window of windowYears length stepped across the series. The
// caller is responsible for the minimum-span guard that keeps the sample
// from being degenerate.
func RollingMedianCAGR(s *model.PriceSeries, windowYears int) []model.CagrRecord {
	samples := make(map[string][]float64, len(s.Tickers))

	start := 0
	for end := 0; end < s.Len(); end++ {
		target := s.Dates[end].AddDate(-windowYears, 0, 0)
		if target.Before(s.Dates[0]) {
			continue
		}
		for start < end && s.Dates[start].Before(target) {
			start++
		}
		if start == end {
			continue
		}
		days := s.Dates[end].Sub(s.Dates[start]).Hours() / 24
		if days <= 0 {
			continue
		}
		years := days / daysPerYear
		for _, t := range s.Tickers {
			a, b := s.Columns[t][start], s.Columns[t][end]
			if !a.Valid || !b.Valid || a.Price <= 0 {
				continue
			}
			samples[t] = append(samples[t], math.Pow(b.Price/a.Price, 1/years)-1)
		}
	}

	records := make([]model.CagrRecord, 0, len(samples))
	for _, t := range s.Tickers {
		vals := samples[t]
		if len(vals) == 0 {
			continue
		}
		records = append(records, model.CagrRecord{Ticker: t, CAGR: median(vals)})
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].CAGR > records[j].CAGR })
	return records
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
