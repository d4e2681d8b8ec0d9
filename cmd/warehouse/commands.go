package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/common/config"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"github.com/synaptica-ai/warehouse/pkg/gold"
	"github.com/synaptica-ai/warehouse/pkg/pipeline"
	"github.com/synaptica-ai/warehouse/pkg/silver"
	"github.com/synaptica-ai/warehouse/pkg/storage"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the bronze, silver and ops schemas and tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()
			return a.migrate(cmd.Context())
		},
	}
}

func newBronzeCmd(cfg *config.Config) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "bronze",
		Short: "Load CSV files into the bronze tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}

			if table == "" {
				return report(cmd, a.runner.LoadAll(cmd.Context()))
			}
			stats, err := a.runner.LoadOne(cmd.Context(), table)
			if err != nil {
				return usageIfUnknown(err)
			}
			return report(cmd, pipeline.SingleSummary(stats))
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "Load a single table, e.g. labevents (default: all)")
	return cmd
}

func newSilverCmd(cfg *config.Config) *cobra.Command {
	var entity string

	cmd := &cobra.Command{
		Use:   "silver",
		Short: "Transform bronze records into the silver layer",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.migrate(cmd.Context()); err != nil {
				return err
			}

			if entity == "" {
				return report(cmd, a.runner.TransformAll(cmd.Context()))
			}
			stats, err := a.runner.TransformOne(cmd.Context(), entity)
			if err != nil {
				return usageIfUnknown(err)
			}
			return report(cmd, pipeline.SingleSummary(stats))
		},
	}

	cmd.Flags().StringVar(&entity, "table", "", "Transform a single entity, e.g. patients (default: all)")
	return cmd
}

func newVerifyCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the silver tables against the gold contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			rep, err := gold.NewVerifier(a.db).VerifyAll(cmd.Context())
			if err != nil {
				return withCode(exitSetup, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-20s %-8s %10s %10s %10s\n", "TABLE", "OK", "ROWS", "NULL KEYS", "ORPHANS")
			for _, t := range rep.Tables {
				fmt.Fprintf(out, "%-20s %-8t %10d %10d %10d\n", t.Entity, t.OK(), t.Rows, t.NullKeys, t.OrphanSubjects)
			}
			if !rep.OK() {
				return withCode(exitFailed, errors.New("silver layer does not satisfy the gold contract"))
			}
			return nil
		},
	}
}

func newRunsCmd(cfg *config.Config) *cobra.Command {
	var filter storage.RunFilter

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent entity runs as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()

			runs, err := a.runLog.List(cmd.Context(), filter)
			if err != nil {
				return withCode(exitSetup, err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		},
	}

	cmd.Flags().StringVar(&filter.Layer, "layer", "", "Filter by layer (bronze, silver)")
	cmd.Flags().StringVar(&filter.Entity, "table", "", "Filter by entity")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&filter.RunID, "run-id", "", "Filter by run id")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "Maximum runs to list")
	return cmd
}

// report prints the summary and turns a failed entity into a non-zero exit.
func report(cmd *cobra.Command, summary *models.RunSummary) error {
	if err := pipeline.PrintSummary(cmd.OutOrStdout(), summary); err != nil {
		return err
	}
	if summary.Failed() {
		return withCode(exitFailed, fmt.Errorf("%d entities failed", len(summary.FailedEntities())))
	}
	return nil
}

func usageIfUnknown(err error) error {
	if errors.Is(err, bronze.ErrUnknownEntity) || errors.Is(err, silver.ErrUnknownEntity) {
		return withCode(exitUsage, err)
	}
	return err
}
