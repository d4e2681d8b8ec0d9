package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"github.com/synaptica-ai/warehouse/pkg/observability/metrics"
	"github.com/synaptica-ai/warehouse/pkg/silver"
	"github.com/synaptica-ai/warehouse/pkg/storage"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
	"gorm.io/gorm"
)

const (
	LayerBronze = "bronze"
	LayerSilver = "silver"

	eventSource = "clinical-warehouse"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Locker is satisfied by *storage.RunLock.
type Locker interface {
	Acquire(ctx context.Context, layer, entity string) (string, error)
	Release(ctx context.Context, layer, entity, token string) error
}

// Recorder is satisfied by *storage.RunLog.
type Recorder interface {
	Start(ctx context.Context, runID, layer, entity string) (*storage.Run, error)
	Finish(ctx context.Context, run *storage.Run, stats models.EntityStats, details map[string]interface{}) error
}

// StatsCache is satisfied by *storage.LastRunCache.
type StatsCache interface {
	Store(ctx context.Context, stats models.EntityStats) error
}

// Options configures a Runner. Every collaborator besides the batch settings
// is optional. Without a Lock, runs are serialized per entity in process.
type Options struct {
	BatchSize  int
	DataDir    string
	SkipErrors bool
	Catalog    *terminology.Catalog

	Lock      Locker
	Publisher Publisher
	RunLog    Recorder
	Cache     StatsCache
	Metrics   *metrics.Registry
}

// outcome is what one entity run hands back to runEntity.
type outcome struct {
	stats   models.EntityStats
	details map[string]interface{}
}

type (
	loadFunc      func(ctx context.Context, table string) (outcome, error)
	transformFunc func(ctx context.Context, entity silver.Entity) (outcome, error)
)

// Runner drives Bronze loads and Silver transforms one entity at a time and
// records the outcome of each.
type Runner struct {
	opts      Options
	load      loadFunc
	transform transformFunc
}

func NewRunner(db *gorm.DB, opts Options) *Runner {
	if opts.Catalog == nil {
		opts.Catalog = terminology.DefaultCatalog()
	}
	if opts.Lock == nil {
		opts.Lock = storage.NewLocalLock()
	}
	loader := bronze.NewLoader(db, opts.DataDir, opts.BatchSize, opts.SkipErrors)
	env := silver.Env{DB: db, BatchSize: opts.BatchSize, Catalog: opts.Catalog}

	return &Runner{
		opts: opts,
		load: func(ctx context.Context, table string) (outcome, error) {
			ls, err := loader.Load(ctx, table)
			return outcome{
				stats: models.EntityStats{
					Total:       ls.Total,
					Transformed: ls.Loaded,
					Errors:      ls.Errors,
				},
				details: map[string]interface{}{
					"inserted":   ls.Inserted,
					"data_dir":   opts.DataDir,
					"batch_size": opts.BatchSize,
				},
			}, err
		},
		transform: func(ctx context.Context, entity silver.Entity) (outcome, error) {
			s, err := entity.Run(ctx, env)
			return outcome{
				stats: models.EntityStats{
					Total:       s.Total,
					Transformed: s.Transformed,
					Errors:      s.Errors,
					Dropped:     s.Dropped,
				},
				details: map[string]interface{}{
					"sources":    entity.Sources,
					"batch_size": opts.BatchSize,
				},
			}, err
		},
	}
}

// LoadOne copies one CSV into its raw table. The error is reserved for an
// unknown table; run failures are reported through the returned stats.
func (r *Runner) LoadOne(ctx context.Context, table string) (models.EntityStats, error) {
	schema, err := bronze.Lookup(table)
	if err != nil {
		return models.EntityStats{}, err
	}
	return r.loadTable(ctx, uuid.New().String(), schema.Table), nil
}

// LoadAll loads every raw table. Missing files are skipped and a failed table
// does not stop the others.
func (r *Runner) LoadAll(ctx context.Context) *models.RunSummary {
	summary := newSummary(LayerBronze)
	for _, schema := range bronze.Schemas() {
		if ctx.Err() != nil {
			break
		}
		summary.Entities = append(summary.Entities, r.loadTable(ctx, summary.RunID, schema.Table))
	}
	summary.FinishedAt = time.Now().UTC()
	return summary
}

func (r *Runner) loadTable(ctx context.Context, runID, table string) models.EntityStats {
	return r.runEntity(ctx, runID, LayerBronze, table, func(ctx context.Context) (outcome, error) {
		return r.load(ctx, table)
	})
}

// TransformOne conforms one Silver entity. As with LoadOne, the error is
// reserved for an unknown entity.
func (r *Runner) TransformOne(ctx context.Context, name string) (models.EntityStats, error) {
	entity, err := silver.LookupEntity(name)
	if err != nil {
		return models.EntityStats{}, err
	}
	return r.transformEntity(ctx, uuid.New().String(), entity), nil
}

// TransformAll conforms every Silver entity in dependency order. A failed
// entity is recorded and the run moves on.
func (r *Runner) TransformAll(ctx context.Context) *models.RunSummary {
	summary := newSummary(LayerSilver)
	for _, entity := range silver.Entities() {
		if ctx.Err() != nil {
			break
		}
		summary.Entities = append(summary.Entities, r.transformEntity(ctx, summary.RunID, entity))
	}
	summary.FinishedAt = time.Now().UTC()
	return summary
}

func (r *Runner) transformEntity(ctx context.Context, runID string, entity silver.Entity) models.EntityStats {
	return r.runEntity(ctx, runID, LayerSilver, entity.Name, func(ctx context.Context) (outcome, error) {
		return r.transform(ctx, entity)
	})
}

func newSummary(layer string) *models.RunSummary {
	return &models.RunSummary{
		RunID:     uuid.New().String(),
		Layer:     layer,
		StartedAt: time.Now().UTC(),
	}
}

func (r *Runner) runEntity(ctx context.Context, runID, layer, entity string, fn func(context.Context) (outcome, error)) models.EntityStats {
	log := logger.WithFields(logrus.Fields{
		"run_id": runID,
		"layer":  layer,
		"entity": entity,
	})

	if r.opts.Lock != nil {
		token, err := r.opts.Lock.Acquire(ctx, layer, entity)
		if err != nil {
			stats := models.EntityStats{Entity: entity, Layer: layer, Status: models.StatusFailed, Error: err.Error()}
			log.WithError(err).Error("could not acquire run lock")
			r.observe(ctx, stats)
			return stats
		}
		defer func() {
			// release even when the run context is already cancelled
			if err := r.opts.Lock.Release(context.WithoutCancel(ctx), layer, entity, token); err != nil {
				log.WithError(err).Warn("failed to release run lock")
			}
		}()
	}

	var run *storage.Run
	if r.opts.RunLog != nil {
		var err error
		if run, err = r.opts.RunLog.Start(ctx, runID, layer, entity); err != nil {
			log.WithError(err).Warn("failed to record run start")
		}
	}

	start := time.Now()
	out, err := fn(ctx)
	stats := out.stats
	stats.Entity = entity
	stats.Layer = layer
	stats.DurationMS = time.Since(start).Milliseconds()

	switch {
	case err == nil:
		stats.Status = models.StatusCompleted
	case errors.Is(err, bronze.ErrSourceNotFound):
		stats.Status = models.StatusSkipped
		stats.Error = err.Error()
		log.WithError(err).Warn("source missing, entity skipped")
	default:
		stats.Status = models.StatusFailed
		stats.Error = err.Error()
		log.WithError(err).Error("entity run failed")
	}

	if run != nil {
		if err := r.opts.RunLog.Finish(context.WithoutCancel(ctx), run, stats, out.details); err != nil {
			log.WithError(err).Warn("failed to record run finish")
		}
	}
	r.observe(ctx, stats)

	log.WithFields(logrus.Fields{
		"status":      stats.Status,
		"total":       stats.Total,
		"transformed": stats.Transformed,
		"errors":      stats.Errors,
		"duration_ms": stats.DurationMS,
	}).Info("entity run finished")

	return stats
}

// observe fans the final stats out to metrics, the last-run cache and the
// event topic. None of these can fail the run.
func (r *Runner) observe(ctx context.Context, stats models.EntityStats) {
	ctx = context.WithoutCancel(ctx)

	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveRun(stats)
	}
	if r.opts.Cache != nil {
		if err := r.opts.Cache.Store(ctx, stats); err != nil {
			logger.Log.WithError(err).WithField("entity", stats.Entity).Warn("failed to cache run stats")
		}
	}
	if r.opts.Publisher == nil {
		return
	}
	eventType, ok := eventFor(stats)
	if !ok {
		return
	}
	if err := r.opts.Publisher.PublishEvent(ctx, eventType, eventSource, statsPayload(stats)); err != nil {
		logger.Log.WithError(err).WithField("entity", stats.Entity).Warn("failed to publish run event")
	}
}

func eventFor(stats models.EntityStats) (string, bool) {
	switch {
	case stats.Layer == LayerBronze && stats.Status == models.StatusCompleted:
		return models.EventBronzeLoaded, true
	case stats.Layer == LayerSilver && stats.Status == models.StatusCompleted:
		return models.EventSilverCompleted, true
	case stats.Layer == LayerSilver && stats.Status == models.StatusFailed:
		return models.EventSilverFailed, true
	}
	return "", false
}

func statsPayload(stats models.EntityStats) map[string]interface{} {
	data := map[string]interface{}{
		"entity":      stats.Entity,
		"layer":       stats.Layer,
		"status":      stats.Status,
		"total":       stats.Total,
		"transformed": stats.Transformed,
		"errors":      stats.Errors,
		"dropped":     stats.Dropped,
		"duration_ms": stats.DurationMS,
	}
	if stats.Error != "" {
		data["error"] = stats.Error
	}
	return data
}
