package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"fplot/internal/cache"
	"fplot/internal/config"
	"fplot/internal/dates"
	"fplot/internal/gateway"
	"fplot/internal/model"
	"fplot/internal/options"
	"fplot/internal/recorder"
	"fplot/internal/report"
)

const version = "0.3.0"

func main() {
	var (
		since    = flag.String("since", "", "start of the window (e.g. 3m, 1y, ytd, max, 2023-01-02); default 1 year")
		interval = flag.String("interval", "1d", "bar interval (1d, 1wk, 1mo; aliases like 1w/3m accepted)")
		call     = flag.Bool("call", false, "list call option contracts for the ticker")
		put      = flag.Bool("put", false, "list put option contracts for the ticker")
		maxExp   = flag.String("max", "6m", "maximum expiry window for option listings (e.g. 3m, 6m, 1y)")
		all      = flag.Bool("all", false, "show all available expiries (overrides -max)")
		sortBy   = flag.String("sort", "strike", "option listing order: strike, dte, or volume")
		minDTE   = flag.Int("min-dte", -1, "minimum days to expiry for option listings")
		calc     = flag.Bool("calc", false, "calculator mode: derive metrics from manual broker data")
		spot     = flag.Float64("s", 0, "calculator: spot price")
		strike   = flag.Float64("k", 0, "calculator: strike price")
		premium  = flag.Float64("p", 0, "calculator: option price")
		dte      = flag.Int("d", 0, "calculator: days to expiry")
		iv       = flag.Float64("iv", 0, "calculator: implied volatility (e.g. 0.35)")
		delta    = flag.Float64("delta", 0, "calculator: broker-provided delta")
		debug    = flag.Bool("debug", false, "enable debug logging")
		showVer  = flag.Bool("version", false, "show version and exit")
	)
	flag.Parse()

	log.SetFlags(0)
	if *debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	if *showVer {
		fmt.Printf("fplot %s\n", version)
		return
	}

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

	kind := model.KindCall
	if *put {
		kind = model.KindPut
	}

	if *calc {
		runCalculator(cfg, kind, *call, *put, *spot, *strike, *premium, *dte, *iv, *delta)
		return
	}

	if flag.NArg() < 1 {
		fmt.Println("Error: missing TICKER argument. Provide a ticker symbol or a comma separated list.")
		os.Exit(1)
	}
	tickers := strings.Split(flag.Arg(0), ",")

	gw := gateway.NewYahooGateway(cfg.Proxy)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		if sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath); err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	if *call || *put {
		optCache := cache.New(cfg.Cache.Dir, cfg.OptionsTTL())
		svc := options.NewService(gw, optCache)
		svc.RiskFree = cfg.Options.RiskFreeRate
		svc.Volatility = cfg.Options.Volatility

		listOptions(svc, rec, tickers[0], options.ListParams{
			Kind:      kind,
			SortBy:    options.SortKey(*sortBy),
			MaxExpiry: *maxExp,
			MinDTE:    *minDTE,
			ShowAll:   *all,
		})
		return
	}

	priceCache := cache.New(cfg.Cache.Dir, cfg.PriceTTL())
	gen := report.NewGenerator(gw, priceCache, cfg.Market.Benchmark)
	runPriceReport(gen, rec, tickers, *since, *interval)
}

func listOptions(svc *options.Service, rec recorder.Recorder, ticker string, params options.ListParams) {
	rows := svc.ListContracts(ticker, params)
	if len(rows) == 0 {
		fmt.Printf("No %s options found for %s\n", params.Kind, strings.ToUpper(ticker))
		return
	}
	best := 0.0
	for _, row := range rows {
		if row.Return.Valid && row.Return.Value > best {
			best = row.Return.Value
		}
		fmt.Println(options.FormatContract(row))
	}
	if err := rec.RecordOptionsScan(&recorder.OptionsScan{
		Ticker:     strings.ToUpper(ticker),
		Kind:       params.Kind.String(),
		Contracts:  len(rows),
		BestReturn: best,
	}); err != nil {
		log.Printf("[WARN] record options scan: %v", err)
	}
}

func runPriceReport(gen *report.Generator, rec recorder.Recorder, tickers []string, since, interval string) {
	rep, err := gen.Generate(tickers, since, interval)
	if errors.Is(err, dates.ErrInvalidExpression) {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("[FATAL] generate report: %v", err)
	}
	if rep.Empty() {
		fmt.Printf("No data found for the given tickers (%s).\n", strings.Join(tickers, ","))
		return
	}

	window := "full history"
	if rep.Since != nil {
		window = "since " + rep.Since.Format("2006-01-02")
	}
	fmt.Printf("Analysis for %s, %s, interval %s\n", strings.Join(rep.Tickers, ", "), window, rep.Interval)

	fmt.Println("\n=== Drawdown Area Under Curve Analysis ===")
	for _, r := range rep.AUC {
		fmt.Printf("%-8s %10.2f\n", r.Ticker, r.AUC)
	}
	fmt.Println("Higher values indicate greater drawdowns over time.")

	if rep.Rolling1y != nil {
		fmt.Println("\n=== Rolling Median 1 yr Return ===")
		for _, r := range rep.Rolling1y {
			fmt.Printf("%-8s %9.2f%%\n", r.Ticker, r.CAGR*100)
		}
	}
	if rep.Rolling3y != nil {
		fmt.Println("\n=== Rolling Median 3 yr Return ===")
		for _, r := range rep.Rolling3y {
			fmt.Printf("%-8s %9.2f%%\n", r.Ticker, r.CAGR*100)
		}
	}

	if rep.CAGR != nil {
		fmt.Println("\n=== Compound Annual Growth Rate (CAGR) ===")
		for _, r := range rep.CAGR {
			fmt.Printf("%-8s %9.2f%%\n", r.Ticker, r.CAGR*100)
		}
		fmt.Println("CAGR represents annualized return over the period.")
	}

	if err := rec.RecordPriceRun(&recorder.PriceRun{
		Tickers:   rep.Tickers,
		SinceExpr: since,
		Interval:  rep.Interval,
		SpanDays:  rep.SpanDays,
		AUC:       rep.AUC,
		CAGR:      rep.CAGR,
	}); err != nil {
		log.Printf("[WARN] record price run: %v", err)
	}
}

func runCalculator(cfg *config.Config, kind model.ContractKind, isCall, isPut bool, spot, strike, premium float64, dte int, iv, delta float64) {
	if spot == 0 || strike == 0 || premium == 0 || dte == 0 {
		fmt.Println("Error: calculator mode requires -s, -k, -p, and -d")
		fmt.Println("Example: fplot -calc -s 100 -k 110 -p 5.25 -d 35 -call -iv 0.35")
		os.Exit(1)
	}
	if isCall == isPut {
		fmt.Println("Error: specify exactly one of -call or -put")
		os.Exit(1)
	}

	in := options.CalcInput{
		Spot: spot, Strike: strike, Premium: premium, DTE: dte,
		Kind:     kind,
		RiskFree: cfg.Options.RiskFreeRate,
	}
	if iv != 0 {
		in.ImpliedVol = model.SomeMetric(iv)
	}
	if delta != 0 {
		in.Delta = model.SomeMetric(delta)
	}

	res, err := options.Calculate(in)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	deltaSource := "provided by broker"
	if !res.DeltaFromBroker {
		deltaSource = fmt.Sprintf("calculated (IV=%.1f%%)", iv*100)
	}

	fmt.Printf("\nSpot Price        $%.2f\n", spot)
	fmt.Printf("Strike Price      $%.2f\n", strike)
	fmt.Printf("Option Price      $%.2f\n", premium)
	fmt.Printf("Days to Expiry    %d days\n", dte)
	fmt.Printf("Option Type       %s\n\n", strings.ToUpper(kind.String()))

	fmt.Printf("Strike vs Spot    %+.2f%%\n", res.StrikeVsSpotPct)
	fmt.Printf("%-17s %.2f%%\n", res.ReturnLabel, res.Return*100)
	fmt.Printf("Delta             %+.4f (%s)\n", res.Delta.Value, deltaSource)
	if res.Leverage.Valid {
		fmt.Printf("Leverage (Ω)      %.2fx\n", res.Leverage.Value)
		fmt.Printf("\nA 1%% move in the stock moves the option ~%.1f%%\n", res.Leverage.Value)
	} else {
		fmt.Println("Leverage (Ω)      N/A")
	}
	if res.Efficiency.Valid {
		fmt.Printf("Efficiency        %.0f (%s)\n", res.Efficiency.Value, res.Band)
	} else {
		fmt.Println("Efficiency        N/A")
	}
}
