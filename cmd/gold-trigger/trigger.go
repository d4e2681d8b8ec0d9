package main

import (
	"context"
	"fmt"

	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"github.com/synaptica-ai/warehouse/pkg/gold"
)

type tableVerifier interface {
	Verify(ctx context.Context, b gold.Binding) (gold.TableReport, error)
}

// trigger checks a conformed table against the gold contract whenever its
// silver run completes.
type trigger struct {
	verifier tableVerifier
	reports  chan<- gold.TableReport
}

func (t *trigger) handleEvent(ctx context.Context, event models.Event) error {
	if event.Type != models.EventSilverCompleted {
		return nil
	}

	entity, _ := event.Data["entity"].(string)
	binding, err := gold.LookupBinding(entity)
	if err != nil {
		// retrying cannot fix an unknown entity
		logger.Log.WithError(err).WithField("event_id", event.ID).Warn("ignoring event for unknown entity")
		return nil
	}

	report, err := t.verifier.Verify(ctx, binding)
	if err != nil {
		return fmt.Errorf("verify %s: %w", binding.Table, err)
	}

	log := logger.Log.WithFields(map[string]interface{}{
		"table":     binding.Table,
		"consumer":  binding.Consumer,
		"rows":      report.Rows,
		"null_keys": report.NullKeys,
		"orphans":   report.OrphanSubjects,
	})
	if report.OK() {
		log.Info("silver table ready for gold load")
	} else {
		log.Error("silver table violates gold contract")
	}

	if t.reports != nil {
		t.reports <- report
	}
	return nil
}
