package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/analysis"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/config"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/dataset"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/report"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/scheduler"
	"github.com/TommasoBelluzzo/HistoricalVolatility/internal/volatility"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] HistoricalVolatility starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	var fetcher dataset.Fetcher
	if cfg.DataSource.XLSXPath != "" {
		fetcher = dataset.NewWorkbookFetcher(cfg.DataSource.XLSXPath, cfg.DataSource.Sheet)
	} else {
		fetcher = dataset.NewYahooFetcher(cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init bar store
	var store *dataset.Store
	if cfg.Cache.SQLitePath != "" {
		s, err := dataset.OpenStore(cfg.Cache.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init bar store failed, continuing without: %v", err)
		} else {
			store = s
			defer s.Close()
		}
	}

	loader := dataset.NewLoader(fetcher, dataset.NewCache(cfg.Cache.Capacity), store)

	run := func() error { return runAnalysis(cfg, loader) }

	if cfg.Schedule.WatchCron == "" {
		if err := run(); err != nil {
			log.Fatalf("[FATAL] analysis: %v", err)
		}
		return
	}

	// Watch mode: run once now, then on schedule until interrupted.
	if err := run(); err != nil {
		log.Printf("[ERROR] initial analysis: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx)
	if err := sched.Register(cfg.Schedule.WatchCron, run); err != nil {
		log.Fatalf("[FATAL] register watch job: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Println("[INFO] watch mode active. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
}

func runAnalysis(cfg *config.Config, loader *dataset.Loader) error {
	series, err := loader.Load(cfg.Symbol, cfg.DataSource.Days)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Symbol, err)
	}
	log.Printf("[INFO] loaded %d observations for %s", series.Len(), series.Symbol)

	estimators, err := selectedEstimators(cfg.Analysis.Estimators)
	if err != nil {
		return err
	}

	cmp, err := analysis.Compare(series, cfg.Analysis.Bandwidth, estimators)
	if err != nil {
		return fmt.Errorf("comparison: %w", err)
	}
	fmt.Println(report.FormatComparison(cmp))

	coneEstimator, err := volatility.ParseEstimator(cfg.Analysis.ConeEstimator)
	if err != nil {
		return err
	}
	cone, err := analysis.Cone(series, coneEstimator, cfg.Analysis.ConeBandwidths, cfg.Analysis.Quantiles)
	if err != nil {
		return fmt.Errorf("cone: %w", err)
	}
	fmt.Println(report.FormatCone(cone))

	dist, err := analysis.Distribution(series, coneEstimator, cfg.Analysis.Bandwidth, cfg.Analysis.Bins)
	if err != nil {
		return fmt.Errorf("distribution: %w", err)
	}
	fmt.Println(report.FormatDistribution(dist))

	if cfg.Report.XLSXPath != "" {
		if err := report.WriteWorkbook(cfg.Report.XLSXPath, cmp, cone, dist); err != nil {
			return fmt.Errorf("export workbook: %w", err)
		}
		log.Printf("[INFO] report written to %s", cfg.Report.XLSXPath)
	}
	return nil
}

func selectedEstimators(codes []string) ([]volatility.Estimator, error) {
	if len(codes) == 0 {
		return volatility.Estimators(), nil
	}
	out := make([]volatility.Estimator, 0, len(codes))
	for _, code := range codes {
		est, err := volatility.ParseEstimator(code)
		if err != nil {
			return nil, err
		}
		out = append(out, est)
	}
	return out, nil
}
