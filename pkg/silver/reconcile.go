package silver

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
)

// InputEventReconciler merges the CareVue and MetaVision input streams into
// one table. CareVue is drained completely before MetaVision starts; each
// source keeps its own field mapping and bolus rule.
type InputEventReconciler struct {
	careVue    Reader[bronze.InputEventCV]
	metaVision Reader[bronze.InputEventMV]
	writer     Writer[InputEvent]
}

func NewInputEventReconciler(cv Reader[bronze.InputEventCV], mv Reader[bronze.InputEventMV], writer Writer[InputEvent]) *InputEventReconciler {
	return &InputEventReconciler{careVue: cv, metaVision: mv, writer: writer}
}

// Run returns combined counts. A CareVue failure stops the run before
// MetaVision is read.
func (r *InputEventReconciler) Run(ctx context.Context) (Stats, error) {
	cv := NewJob("inputevents_cv", r.careVue, TransformFunc[bronze.InputEventCV, InputEvent](TransformInputEventCV), r.writer)
	cvStats, err := cv.Run(ctx)
	if err != nil {
		return cvStats, err
	}

	mv := NewJob("inputevents_mv", r.metaVision, TransformFunc[bronze.InputEventMV, InputEvent](TransformInputEventMV), r.writer)
	mvStats, err := mv.Run(ctx)
	total := cvStats.Add(mvStats)

	logger.Log.WithFields(logrus.Fields{
		"entity":      "inputevents",
		"carevue":     cvStats.Transformed,
		"metavision":  mvStats.Transformed,
		"transformed": total.Transformed,
		"errors":      total.Errors,
	}).Info("input events reconciled")
	return total, err
}
