package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/warehouse/pkg/common/config"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
)

const (
	exitFailed = 1
	exitUsage  = 2
	exitSetup  = 3
)

// codedError carries the process exit code up through cobra.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &codedError{code: code, err: err}
}

type rootOptions struct {
	batchSize   int
	dataDir     string
	terminology string
	skipErrors  bool
}

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err == nil {
		return
	}

	code := exitFailed
	var coded *codedError
	if errors.As(err, &coded) {
		code = coded.code
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	stop()
	os.Exit(code)
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "warehouse",
		Short:         "Load raw clinical CSVs and conform them into the silver layer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.IntVar(&opts.batchSize, "batch-size", cfg.BatchSize, "Records per batch")
	flags.StringVar(&opts.dataDir, "data-dir", cfg.CSVDataPath, "Directory holding the source CSV files")
	flags.StringVar(&opts.terminology, "terminology", cfg.TerminologyPath, "YAML terminology catalog (default: built-in)")
	flags.BoolVar(&opts.skipErrors, "skip-errors", cfg.SkipErrors, "Skip malformed CSV rows instead of aborting the table")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg.BatchSize = opts.batchSize
		cfg.CSVDataPath = opts.dataDir
		cfg.TerminologyPath = opts.terminology
		cfg.SkipErrors = opts.skipErrors
		if err := cfg.Validate(); err != nil {
			return withCode(exitUsage, err)
		}
		return nil
	}

	root.AddCommand(
		newMigrateCmd(cfg),
		newBronzeCmd(cfg),
		newSilverCmd(cfg),
		newVerifyCmd(cfg),
		newRunsCmd(cfg),
	)
	return root
}
