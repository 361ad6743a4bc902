package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"case-scraper/pkg/index"
	"case-scraper/pkg/repair"
	"case-scraper/pkg/validate"
)

// errInvalidRecords makes validate exit non-zero without a usage dump
var errInvalidRecords = errors.New("invalid case records found")

// corpusFlags select part of the persisted record tree; zero years are open bounds
type corpusFlags struct {
	directory string
	startYear int
	endYear   int
}

func (f *corpusFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.directory, "directory", "", "Directory containing case files (default: output_dir from config)")
	cmd.Flags().IntVar(&f.startYear, "start-year", 0, "Only from this year onwards")
	cmd.Flags().IntVar(&f.endYear, "end-year", 0, "Only up to this year")
}

func (f *corpusFlags) resolve(outputDir string) (string, error) {
	dir := f.directory
	if dir == "" {
		dir = outputDir
	}
	if err := dirExists(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	flags := &corpusFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every case record for complete metadata; exits 1 if any is invalid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			dir, err := flags.resolve(cfg.OutputDir)
			if err != nil {
				return err
			}

			report, err := validate.New(logger.WithField("component", "validate")).
				ValidateDirectory(cmd.Context(), dir, flags.startYear, flags.endYear)
			if err != nil {
				return err
			}

			out := opts.stdout
			for _, fe := range report.Errors {
				fmt.Fprintf(out, "❌ %s\n", fe.File)
				for _, issue := range fe.Issues {
					fmt.Fprintf(out, "   - %s\n", issue)
				}
			}

			fmt.Fprintln(out, "\n=== VALIDATION SUMMARY ===")
			fmt.Fprintf(out, "Total cases validated: %d\n", report.TotalCases)
			fmt.Fprintf(out, "Valid cases: %d (%.1f%%)\n", report.ValidCases, report.ValidPercent())
			invalidPct := 0.0
			if report.TotalCases > 0 {
				invalidPct = 100 - report.ValidPercent()
			}
			fmt.Fprintf(out, "Invalid cases: %d (%.1f%%)\n", report.InvalidCases, invalidPct)

			if len(report.CasesByYear) > 0 {
				fmt.Fprintln(out, "\nCases by year:")
				years := make([]int, 0, len(report.CasesByYear))
				for y := range report.CasesByYear {
					years = append(years, y)
				}
				sort.Ints(years)
				for _, y := range years {
					c := report.CasesByYear[y]
					fmt.Fprintf(out, "  %d: %4d cases (%4d valid, %4d invalid)\n", y, c.Valid+c.Invalid, c.Valid, c.Invalid)
				}
			}

			if output != "" {
				if err := report.WriteFile(output); err != nil {
					return err
				}
				fmt.Fprintf(out, "\nValidation report saved to: %s\n", output)
			}

			if !report.AllValid() {
				fmt.Fprintf(out, "\n⚠️  Found %d cases with issues\n", report.InvalidCases)
				return fmt.Errorf("%w: %d of %d", errInvalidRecords, report.InvalidCases, report.TotalCases)
			}
			fmt.Fprintln(out, "\n✅ All cases are valid!")
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "Save the validation report to this JSON file")
	return cmd
}

func newIndexCmd(opts *rootOptions) *cobra.Command {
	flags := &corpusFlags{}
	var output string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Create or update the case index from the record files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			dir, err := flags.resolve(cfg.OutputDir)
			if err != nil {
				return err
			}
			indexPath := output
			if indexPath == "" {
				indexPath = cfg.IndexFile
				if !filepath.IsAbs(indexPath) {
					indexPath = filepath.Join(dir, indexPath)
				}
			}

			res, err := index.NewBuilder(dir, logger.WithField("component", "index")).
				Update(cmd.Context(), indexPath, flags.startYear, flags.endYear)
			if err != nil {
				return err
			}

			out := opts.stdout
			fmt.Fprintf(out, "Updating index: %d new cases, %d updated cases\n", res.New, res.Updated)
			if len(res.Failed) > 0 {
				fmt.Fprintf(out, "Unreadable case files: %d\n", len(res.Failed))
			}
			fmt.Fprintf(out, "Total cases in index: %d\n", res.Total)
			fmt.Fprintf(out, "Index saved to: %s\n", indexPath)

			fmt.Fprintln(out, "\nCase statistics by year:")
			years := make([]int, 0, len(res.ByYear))
			for y := range res.ByYear {
				years = append(years, y)
			}
			sort.Ints(years)
			for _, y := range years {
				fmt.Fprintf(out, "  %d: %4d cases\n", y, res.ByYear[y])
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&output, "output", "", "Index file (default: DIRECTORY/case_index.json)")
	return cmd
}

func newFixTitlesCmd(opts *rootOptions) *cobra.Command {
	flags := &corpusFlags{}
	var year int
	var includeSentinel bool

	cmd := &cobra.Command{
		Use:   "fix-titles",
		Short: "Recover empty titles from the decision text of saved records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.setup(cmd, nil)
			if err != nil {
				return err
			}
			dir, err := flags.resolve(cfg.OutputDir)
			if err != nil {
				return err
			}
			start, end := flags.startYear, flags.endYear
			if year != 0 {
				start, end = year, year
			}

			res, err := repair.New(includeSentinel, logger.WithField("component", "repair")).
				RepairYears(cmd.Context(), dir, start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(opts.stdout, "Scanned %d records: %d titles fixed, %d without a recoverable title, %d skipped\n",
				res.Scanned, res.Fixed, res.Unfixable, res.Skipped)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "Repair a single year (overrides --start-year/--end-year)")
	cmd.Flags().BoolVar(&includeSentinel, "include-sentinel", false, "Also repair records titled \"Title not found\"")
	return cmd
}
