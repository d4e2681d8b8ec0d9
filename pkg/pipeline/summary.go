package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"github.com/synaptica-ai/warehouse/pkg/silver"
	"github.com/synaptica-ai/warehouse/pkg/storage"
	"gorm.io/gorm"
)

// Migrate creates the schemas, the raw and conformed tables and the run log.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := silver.AutoMigrate(ctx, db); err != nil {
		return err
	}
	if err := storage.NewRunLog(db).AutoMigrate(ctx); err != nil {
		return fmt.Errorf("migrate run log: %w", err)
	}
	return nil
}

// PrintSummary writes one row per entity followed by the grand totals.
func PrintSummary(w io.Writer, summary *models.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if summary.RunID != "" {
		fmt.Fprintf(tw, "%s run %s\n", strings.ToUpper(summary.Layer), summary.RunID)
	}
	fmt.Fprintln(tw, "ENTITY\tSTATUS\tTOTAL\tTRANSFORMED\tERRORS\tDROPPED\tDURATION")
	for _, e := range summary.Entities {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%dms\n",
			e.Entity, e.Status, e.Total, e.Transformed, e.Errors, e.Dropped, e.DurationMS)
	}
	total, transformed, errs := summary.Totals()
	fmt.Fprintf(tw, "TOTAL\t\t%d\t%d\t%d\t\t%s\n",
		total, transformed, errs, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	if failed := summary.FailedEntities(); len(failed) > 0 {
		fmt.Fprintf(tw, "FAILED: %s\n", strings.Join(failed, ", "))
		for _, e := range summary.Entities {
			if e.Failed() {
				fmt.Fprintf(tw, "  %s: %s\n", e.Entity, e.Error)
			}
		}
	}
	return tw.Flush()
}

// SingleSummary wraps the stats of a run that just finished so it prints
// like "all". The window is taken from the entity's own duration.
func SingleSummary(stats models.EntityStats) *models.RunSummary {
	finished := time.Now().UTC()
	return &models.RunSummary{
		Layer:      stats.Layer,
		StartedAt:  finished.Add(-time.Duration(stats.DurationMS) * time.Millisecond),
		FinishedAt: finished,
		Entities:   []models.EntityStats{stats},
	}
}
