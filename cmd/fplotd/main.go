package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fplot/internal/cache"
	"fplot/internal/config"
	"fplot/internal/gateway"
	"fplot/internal/options"
	"fplot/internal/recorder"
	"fplot/internal/report"
	"fplot/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] fplotd starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("FPLOT_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	if len(cfg.Prefetch.Tickers) == 0 {
		log.Fatalf("[FATAL] prefetch.tickers is empty; nothing to do")
	}

	gw := gateway.NewYahooGateway(cfg.Proxy)
	log.Printf("[INFO] data source: %s", gw.Name())

	// Caches
	priceCache := cache.New(cfg.Cache.Dir, cfg.PriceTTL())
	optCache := cache.New(cfg.Cache.Dir, cfg.OptionsTTL())

	// Engine components
	gen := report.NewGenerator(gw, priceCache, cfg.Market.Benchmark)
	svc := options.NewService(gw, optCache)
	svc.RiskFree = cfg.Options.RiskFreeRate
	svc.Volatility = cfg.Options.Volatility

	// Recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, gen, svc, rec, cfg.Prefetch.Tickers, cfg.Market.Interval)
	if err := sched.RegisterAll(cfg.Prefetch.PricesCron, cfg.Prefetch.OptionsCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, prefetching now")
		go sched.RunNow()
	}

	log.Println("[INFO] fplotd is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] fplotd stopped")
}
