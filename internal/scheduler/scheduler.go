// Package scheduler pre-warms the price and options caches for a
// configured ticker set so interactive lookups hit fresh cache entries
// instead of the network.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"fplot/internal/model"
	"fplot/internal/options"
	"fplot/internal/recorder"
	"fplot/internal/report"
)

// prefetchWindow is the request expression used for scheduled price runs.
const prefetchWindow = "1y"

// Scheduler manages the prefetch cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Generator *report.Generator
	Options   *options.Service
	Recorder  recorder.Recorder
	Tickers   []string
	Interval  string
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, gen *report.Generator, opts *options.Service, rec recorder.Recorder, tickers []string, interval string) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Generator: gen,
		Options:   opts,
		Recorder:  rec,
		Tickers:   tickers,
		Interval:  interval,
		Ctx:       ctx,
	}
}

// RegisterAll registers the price and options prefetch tasks.
func (s *Scheduler) RegisterAll(pricesCron, optionsCron string) error {
	if _, err := s.Cron.AddFunc(pricesCron, s.prefetchPrices); err != nil {
		return fmt.Errorf("register prices task: %w", err)
	}
	if _, err := s.Cron.AddFunc(optionsCron, s.prefetchOptions); err != nil {
		return fmt.Errorf("register options task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes both prefetch tasks immediately (manual trigger).
func (s *Scheduler) RunNow() {
	s.prefetchPrices()
	s.prefetchOptions()
}

func (s *Scheduler) prefetchPrices() {
	log.Println("[INFO] prefetching price series")
	for _, ticker := range s.Tickers {
		if s.Ctx.Err() != nil {
			return
		}
		rep, err := s.Generator.Generate([]string{ticker}, prefetchWindow, s.Interval)
		if err != nil {
			log.Printf("[ERROR] prefetch prices for %s: %v", ticker, err)
			continue
		}
		if rep.Empty() {
			log.Printf("[WARN] no price data for %s", ticker)
			continue
		}
		if err := s.Recorder.RecordPriceRun(&recorder.PriceRun{
			Tickers:   rep.Tickers,
			SinceExpr: prefetchWindow,
			Interval:  rep.Interval,
			SpanDays:  rep.SpanDays,
			AUC:       rep.AUC,
			CAGR:      rep.CAGR,
		}); err != nil {
			log.Printf("[WARN] record price run for %s: %v", ticker, err)
		}
	}
}

func (s *Scheduler) prefetchOptions() {
	log.Println("[INFO] prefetching option chains")
	for _, ticker := range s.Tickers {
		if s.Ctx.Err() != nil {
			return
		}
		rows := s.Options.ListContracts(ticker, options.ListParams{
			Kind:   model.KindCall,
			MinDTE: -1,
		})
		if rows == nil {
			log.Printf("[WARN] no options found for %s", ticker)
			continue
		}
		best := 0.0
		for _, r := range rows {
			if r.Return.Valid && r.Return.Value > best {
				best = r.Return.Value
			}
		}
		if err := s.Recorder.RecordOptionsScan(&recorder.OptionsScan{
			Ticker:     ticker,
			Kind:       model.KindCall.String(),
			Contracts:  len(rows),
			BestReturn: best,
		}); err != nil {
			log.Printf("[WARN] record options scan for %s: %v", ticker, err)
		}
	}
}
