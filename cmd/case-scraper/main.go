package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
	// ProgramName is the binary name used in help and resume hints
	ProgramName = "case-scraper"
)

func main() {
	runMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func runMain(args []string, stdout, stderr io.Writer, exit func(int)) {
	if err := Execute(args[1:], stdout, stderr); err != nil {
		exit(1)
	}
}

// Execute builds the command tree and runs it with args, extracted for testing
func Execute(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	logLevel   string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:     ProgramName,
		Short:   "Resumable court decision scraper",
		Long:    "Crawls the decision archive year by year, one month at a time, writing one JSON record per case and keeping a resumable progress file.",
		Version: Version,
		// Runtime failures are logged; usage is only for flag errors
		SilenceUsage: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(`{{.Version}}
`)

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "Path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "loglevel", "info", "Log level (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newRunCmd(opts),
		newResumeCmd(opts),
		newStatusCmd(opts),
		newResetCmd(opts),
		newValidateCmd(opts),
		newIndexCmd(opts),
		newFixTitlesCmd(opts),
	)
	return cmd
}
