package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"case-scraper/pkg/config"
	applog "case-scraper/pkg/log"
	"case-scraper/pkg/progress"
)

// crawlFlags override the matching config file values when set
type crawlFlags struct {
	startYear    int
	endYear      int
	startMonth   string
	outputDir    string
	progressFile string
	delay        time.Duration
}

func (f *crawlFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.startYear, "start-year", 0, "First year to crawl (default from config, 1901)")
	cmd.Flags().IntVar(&f.endYear, "end-year", 0, "Last year to crawl, inclusive (default from config, 1995)")
	cmd.Flags().StringVar(&f.startMonth, "start-month", "", "Month to begin at in the start year")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Root directory for case records")
	cmd.Flags().StringVar(&f.progressFile, "progress-file", "", "Progress tracking file")
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "Pause before every request (e.g. 2s)")
}

func (f *crawlFlags) apply(cmd *cobra.Command, cfg *config.AppConfig) {
	if cmd.Flags().Changed("start-year") {
		cfg.StartYear = f.startYear
	}
	if cmd.Flags().Changed("end-year") {
		cfg.EndYear = f.endYear
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if cmd.Flags().Changed("progress-file") {
		cfg.ProgressFile = f.progressFile
	}
	if cmd.Flags().Changed("delay") {
		cfg.DelayPerRequest = f.delay
	}
}

// setup builds the logger and the effective config. override, when non-nil,
// applies flag values before validation.
func (o *rootOptions) setup(cmd *cobra.Command, override func(*config.AppConfig)) (*config.AppConfig, *logrus.Logger, error) {
	logger, err := applog.New(o.stderr, o.logLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", o.logLevel, err)
	}

	cfg, found, err := config.Load(o.configPath)
	if err != nil {
		return nil, logger, err
	}
	if !found {
		if cmd.Flags().Changed("config") {
			return nil, logger, fmt.Errorf("config file '%s' not found", o.configPath)
		}
		logger.Debugf("No config file at %s, using defaults", o.configPath)
	} else {
		logger.Debugf("Loaded configuration from %s", o.configPath)
	}

	if override != nil {
		override(cfg)
	}
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		return nil, logger, err
	}
	return cfg, logger, nil
}

func openTracker(cfg *config.AppConfig) (*progress.Tracker, error) {
	return progress.NewTracker(progress.NewFileStore(cfg.ProgressFile))
}

// withSignals cancels the returned context on SIGINT/SIGTERM. A second signal forces exit.
func withSignals(parent context.Context, log *logrus.Entry) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			log.Warnf("Received signal: %v. Stopping after the current request...", sig)
			cancel()
		case <-ctx.Done():
			return
		}

		select {
		case sig := <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(1)
		case <-time.After(2 * time.Minute):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(1)
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		close(done)
		cancel()
	}
}

func dirExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("directory %s does not exist", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
