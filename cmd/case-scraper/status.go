package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"case-scraper/pkg/config"
	"case-scraper/pkg/models"
	"case-scraper/pkg/progress"
	"case-scraper/pkg/storage"
	"case-scraper/pkg/utils"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	flags := &crawlFlags{}
	var showResume, showFailures bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show crawl progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd, func(c *config.AppConfig) { flags.apply(cmd, c) })
			if err != nil {
				return err
			}
			tracker, err := openTracker(cfg)
			if err != nil {
				return err
			}

			out := opts.stdout
			state := tracker.State()
			fmt.Fprintln(out, "=== Scraping Progress Status ===")
			fmt.Fprintf(out, "Completed years: %d\n", len(state.CompletedYears))
			if len(state.CompletedYears) > 0 {
				years := make([]string, len(state.CompletedYears))
				for i, y := range state.CompletedYears {
					years[i] = strconv.Itoa(y)
				}
				fmt.Fprintf(out, "  Years: %s\n", strings.Join(years, ", "))
			}
			if state.CurrentYear != nil {
				fmt.Fprintf(out, "Current year: %d\n", *state.CurrentYear)
				fmt.Fprintf(out, "Completed months in current year: %s\n", strings.Join(state.CompletedMonths, ", "))
			} else {
				fmt.Fprintln(out, "Current year: none")
			}
			fmt.Fprintf(out, "Total cases scraped: %d\n", state.TotalCasesScraped)
			lastUpdated := "never"
			if state.LastUpdated != nil {
				lastUpdated = *state.LastUpdated
			}
			fmt.Fprintf(out, "Last updated: %s\n", lastUpdated)

			if showResume {
				if year, month, ok := tracker.ResumePoint(cfg.StartYear, cfg.EndYear); ok {
					fmt.Fprintf(out, "\nWould resume from: %s %d\n", titleCase(month), year)
				} else {
					fmt.Fprintln(out, "\nAll years completed!")
				}
			}

			if showFailures {
				if cfg.LedgerDir == "" {
					fmt.Fprintln(out, "\nNo attempt ledger configured (set ledger_dir in the config file).")
					return nil
				}
				ledger, err := storage.NewBadgerLedger(cfg.LedgerDir, logger.WithField("component", "status"))
				if err != nil {
					return err
				}
				defer ledger.Close()

				failures, err := ledger.Failures()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\nFailed pages: %d\n", len(failures))
				for _, f := range failures {
					fmt.Fprintf(out, "  %d %-9s %-7s %-20s %s\n", f.Entry.Year, f.Entry.Month, f.Entry.Kind, f.Entry.ErrorType, f.URL)
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&showResume, "resume", false, "Also show where a resume would start")
	cmd.Flags().BoolVar(&showFailures, "failures", false, "List pages whose last fetch failed (needs ledger_dir)")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	flags := &crawlFlags{}
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard crawl progress and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd, func(c *config.AppConfig) { flags.apply(cmd, c) })
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.stdout, "Resetting progress...")

			tracker, err := openTracker(cfg)
			if errors.Is(err, utils.ErrProgressState) {
				// An unreadable file is replaced rather than blocking the reset
				logger.Warnf("Discarding unreadable progress file: %v", err)
				if err := progress.NewFileStore(cfg.ProgressFile).Save(models.NewProgressState()); err != nil {
					return err
				}
				tracker, err = openTracker(cfg)
			}
			if err != nil {
				return err
			}
			if err := tracker.Reset(); err != nil {
				return err
			}
			fmt.Fprintln(opts.stdout, "Progress reset complete")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
