package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"case-scraper/pkg/config"
	"case-scraper/pkg/crawler"
	"case-scraper/pkg/fetch"
	"case-scraper/pkg/metrics"
	"case-scraper/pkg/progress"
	"case-scraper/pkg/record"
	"case-scraper/pkg/storage"
	"case-scraper/pkg/utils"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl the configured year range, skipping completed years and months",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, opts, flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newResumeCmd(opts *rootOptions) *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Continue from the first incomplete year in the range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, opts, flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func runCrawl(cmd *cobra.Command, opts *rootOptions, flags *crawlFlags, resume bool) error {
	cfg, logger, err := opts.setup(cmd, func(c *config.AppConfig) { flags.apply(cmd, c) })
	if err != nil {
		return err
	}
	startMonth := ""
	if flags.startMonth != "" {
		if startMonth, err = config.ValidateMonth(flags.startMonth); err != nil {
			return err
		}
	}

	log := logger.WithField("run_id", uuid.NewString())
	out := opts.stdout

	tracker, err := openTracker(cfg)
	if err != nil {
		return err
	}

	runOpts := crawler.RunOptions{StartYear: cfg.StartYear, EndYear: cfg.EndYear}
	if resume {
		year, month, ok := tracker.ResumePoint(cfg.StartYear, cfg.EndYear)
		if !ok {
			fmt.Fprintln(out, "All years already completed!")
			return nil
		}
		if startMonth == "" {
			startMonth = month
		}
		runOpts.StartYear = year
		fmt.Fprintf(out, "Resuming from %s %d\n", titleCase(startMonth), year)
	} else {
		startMonth = cfg.EffectiveStartMonth(cfg.StartYear, startMonth)
	}
	runOpts.StartMonth = startMonth
	if startMonth == "" {
		startMonth = "january"
	}

	fmt.Fprintln(out, "\n=== Batch Scraping Configuration ===")
	fmt.Fprintf(out, "Years: %d to %d\n", runOpts.StartYear, runOpts.EndYear)
	fmt.Fprintf(out, "Starting from: %s %d\n", titleCase(startMonth), runOpts.StartYear)
	fmt.Fprintf(out, "Output directory: %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "Progress file: %s\n", cfg.ProgressFile)
	fmt.Fprintf(out, "Delay per request: %s\n", cfg.DelayPerRequest)
	fmt.Fprintf(out, "\nPress Ctrl+C to stop at any time; resume later with '%s resume'.\n\n", ProgramName)

	ctx, stop := withSignals(cmd.Context(), log)
	defer stop()

	m := startMetrics(cfg.MetricsAddr, log)
	if m != nil {
		defer m.shutdown()
	}

	var ledger storage.Ledger
	if cfg.LedgerDir != "" {
		bl, err := storage.NewBadgerLedger(cfg.LedgerDir, log)
		if err != nil {
			log.Warnf("Attempt ledger unavailable, continuing without it: %v", err)
		} else {
			ledger = bl
			gcCtx, stopGC := context.WithCancel(ctx)
			defer bl.Close()
			defer stopGC()
			go bl.RunGC(gcCtx, 10*time.Minute)
		}
	}

	client := fetch.NewClient(cfg.HTTPClientSettings, log)
	pacer := fetch.NewPacer(cfg.DelayPerRequest, log)
	var robots *fetch.RobotsGate
	if cfg.RespectRobots {
		robots = fetch.NewRobotsGate(client, pacer, cfg.UserAgent, log)
	}
	fetcher := fetch.NewHTTPFetcher(client, pacer, robots, cfg.UserAgent, log)

	store := record.NewStore(cfg.OutputDir, log)
	builder := record.NewBuilder(cfg.ExtractionVersion, nil)
	driver := crawler.NewDriver(cfg.BaseURL, fetcher, builder, store, log,
		&crawler.DriverOptions{Ledger: ledger, Metrics: m.collectors()})
	controller := crawler.NewController(tracker, driver, store, m.collectors(), log)

	summary, err := controller.Run(ctx, runOpts)
	if err != nil {
		if errors.Is(err, utils.ErrInterrupted) {
			log.Warn("Crawl interrupted")
			fmt.Fprintln(out, "\n\nInterrupted by user. Progress saved.")
			fmt.Fprintf(out, "Resume with: %s resume --start-year %d --end-year %d\n", ProgramName, cfg.StartYear, cfg.EndYear)
			return nil
		}
		entry := log.WithField("error_type", utils.CategorizeError(err))
		if utils.IsFatal(err) {
			entry.Errorf("Crawl stopped on a storage failure: %v", err)
			fmt.Fprintf(out, "\nCrawl stopped: %v\n", err)
			fmt.Fprintf(out, "Progress is saved up to the last completed month. Fix the cause, then run: %s resume --start-year %d --end-year %d\n",
				ProgramName, cfg.StartYear, cfg.EndYear)
		} else {
			entry.Errorf("Crawl stopped: %v", err)
		}
		return err
	}

	printSummary(out, cfg, summary, tracker)
	return nil
}

func printSummary(out io.Writer, cfg *config.AppConfig, summary crawler.Summary, tracker *progress.Tracker) {
	for _, y := range summary.Years {
		line := fmt.Sprintf("  Year %d completed: %d total cases", y.Year, y.Cases)
		if len(y.FailedMonths) > 0 {
			line += fmt.Sprintf(" (listing unavailable: %s)", strings.Join(y.FailedMonths, ", "))
		}
		fmt.Fprintln(out, line)
	}
	if len(summary.SkippedYears) > 0 {
		fmt.Fprintf(out, "  Skipped %d already completed years\n", len(summary.SkippedYears))
	}

	fmt.Fprintln(out, "\n=== Batch Scraping Complete ===")
	fmt.Fprintf(out, "Total cases scraped: %d\n", tracker.State().TotalCasesScraped)
	fmt.Fprintln(out, "\nRun validation:")
	fmt.Fprintf(out, "  %s validate --directory %s --start-year %d --end-year %d\n", ProgramName, cfg.OutputDir, cfg.StartYear, cfg.EndYear)
}

// metricsServer exposes the run's collectors on /metrics
type metricsServer struct {
	m   *metrics.Metrics
	srv *http.Server
	log *logrus.Entry
}

// startMetrics returns nil when addr is empty
func startMetrics(addr string, log *logrus.Entry) *metricsServer {
	if addr == "" {
		return nil
	}
	m := metrics.New()
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	ms := &metricsServer{
		m:   m,
		srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		log: log.WithField("component", "metrics"),
	}

	go func() {
		ms.log.Infof("Serving metrics on http://%s/metrics", addr)
		if err := ms.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ms.log.Errorf("Metrics server failed: %v", err)
		}
	}()
	return ms
}

// collectors is nil-safe so callers can pass it straight to components
func (ms *metricsServer) collectors() *metrics.Metrics {
	if ms == nil {
		return nil
	}
	return ms.m
}

func (ms *metricsServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ms.srv.Shutdown(ctx); err != nil {
		ms.log.Warnf("Metrics server shutdown: %v", err)
	}
}

func titleCase(month string) string {
	if month == "" {
		return month
	}
	return strings.ToUpper(month[:1]) + month[1:]
}
