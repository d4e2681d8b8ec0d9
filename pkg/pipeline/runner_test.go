package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"github.com/synaptica-ai/warehouse/pkg/observability/metrics"
	"github.com/synaptica-ai/warehouse/pkg/silver"
	"github.com/synaptica-ai/warehouse/pkg/storage"
)

type publishedEvent struct {
	eventType string
	data      map[string]interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, eventType, _ string, data map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, data: data})
	return p.err
}

type fakeLock struct {
	held     map[string]bool
	released []string
}

func (l *fakeLock) Acquire(_ context.Context, layer, entity string) (string, error) {
	key := layer + "/" + entity
	if l.held[key] {
		return "", storage.ErrLockHeld
	}
	return "token-" + key, nil
}

func (l *fakeLock) Release(_ context.Context, layer, entity, token string) error {
	l.released = append(l.released, token)
	return nil
}

type fakeRecorder struct {
	started  []string
	finished []models.EntityStats
	details  []map[string]interface{}
}

func (r *fakeRecorder) Start(_ context.Context, runID, layer, entity string) (*storage.Run, error) {
	r.started = append(r.started, layer+"/"+entity)
	return &storage.Run{ID: "id-" + entity, RunID: runID, Layer: layer, Entity: entity}, nil
}

func (r *fakeRecorder) Finish(_ context.Context, _ *storage.Run, stats models.EntityStats, details map[string]interface{}) error {
	r.finished = append(r.finished, stats)
	r.details = append(r.details, details)
	return nil
}

type fakeCache struct {
	stored []models.EntityStats
}

func (c *fakeCache) Store(_ context.Context, stats models.EntityStats) error {
	c.stored = append(c.stored, stats)
	return nil
}

func newTestRunner(opts Options) *Runner {
	return &Runner{
		opts: opts,
		load: func(context.Context, string) (outcome, error) {
			return outcome{stats: models.EntityStats{Total: 1, Transformed: 1}}, nil
		},
		transform: func(context.Context, silver.Entity) (outcome, error) {
			return outcome{stats: models.EntityStats{Total: 1, Transformed: 1}}, nil
		},
	}
}

func TestTransformAllContinuesAfterFailure(t *testing.T) {
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	r := newTestRunner(Options{Publisher: pub, RunLog: rec})
	r.transform = func(_ context.Context, e silver.Entity) (outcome, error) {
		if e.Name == "labevents" {
			return outcome{stats: models.EntityStats{Total: 2000, Transformed: 1000}}, &silver.WriteError{Entity: e.Name, Batch: 1, Err: errors.New("boom")}
		}
		return outcome{stats: models.EntityStats{Total: 10, Transformed: 9, Errors: 1, Dropped: 1}}, nil
	}

	summary := r.TransformAll(context.Background())

	require.Len(t, summary.Entities, len(silver.Names()))
	assert.Equal(t, LayerSilver, summary.Layer)
	assert.True(t, summary.Failed())
	assert.Equal(t, []string{"labevents"}, summary.FailedEntities())
	for i, e := range summary.Entities {
		assert.Equal(t, silver.Names()[i], e.Entity)
		assert.Equal(t, LayerSilver, e.Layer)
	}

	failed := summary.Entities[4]
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.Equal(t, int64(1000), failed.Transformed)
	assert.Contains(t, failed.Error, "boom")

	assert.Len(t, rec.started, len(silver.Names()))
	assert.Len(t, rec.finished, len(silver.Names()))

	var failedEvents int
	for _, ev := range pub.events {
		if ev.eventType == models.EventSilverFailed {
			failedEvents++
			assert.Equal(t, "labevents", ev.data["entity"])
		}
	}
	assert.Equal(t, 1, failedEvents)
	assert.Len(t, pub.events, len(silver.Names()))
}

func TestLoadAllSkipsMissingSources(t *testing.T) {
	pub := &fakePublisher{}
	r := newTestRunner(Options{Publisher: pub})
	r.load = func(_ context.Context, table string) (outcome, error) {
		if table == "noteevents" {
			return outcome{}, bronze.ErrSourceNotFound
		}
		return outcome{stats: models.EntityStats{Total: 3, Transformed: 3}}, nil
	}

	summary := r.LoadAll(context.Background())

	require.Len(t, summary.Entities, len(bronze.Schemas()))
	assert.False(t, summary.Failed())
	var skipped []string
	for _, e := range summary.Entities {
		if e.Status == models.StatusSkipped {
			skipped = append(skipped, e.Entity)
		}
	}
	assert.Equal(t, []string{"noteevents"}, skipped)
	// skipped tables publish nothing
	assert.Len(t, pub.events, len(bronze.Schemas())-1)
	for _, ev := range pub.events {
		assert.Equal(t, models.EventBronzeLoaded, ev.eventType)
	}
}

func TestTransformOneUnknownEntity(t *testing.T) {
	_, err := newTestRunner(Options{}).TransformOne(context.Background(), "vitals")
	require.ErrorIs(t, err, silver.ErrUnknownEntity)
}

func TestLoadOneUnknownTable(t *testing.T) {
	_, err := newTestRunner(Options{}).LoadOne(context.Background(), "chartevents")
	require.ErrorIs(t, err, bronze.ErrUnknownEntity)
}

func TestTransformOneRecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	cache := &fakeCache{}
	reg := metrics.NewRegistry()
	r := newTestRunner(Options{RunLog: rec, Cache: cache, Metrics: reg})
	r.transform = func(_ context.Context, e silver.Entity) (outcome, error) {
		return outcome{
			stats:   models.EntityStats{Total: 5, Transformed: 4, Errors: 1, Dropped: 1},
			details: map[string]interface{}{"sources": e.Sources},
		}, nil
	}

	stats, err := r.TransformOne(context.Background(), "Patients")
	require.NoError(t, err)

	assert.Equal(t, "patients", stats.Entity)
	assert.Equal(t, models.StatusCompleted, stats.Status)
	assert.Equal(t, int64(4), stats.Transformed)
	assert.Equal(t, []string{"silver/patients"}, rec.started)
	require.Len(t, rec.finished, 1)
	assert.Equal(t, stats, rec.finished[0])
	assert.Equal(t, []string{"patients"}, rec.details[0]["sources"])
	assert.Equal(t, []models.EntityStats{stats}, cache.stored)

	var sb strings.Builder
	reg.WritePrometheus(&sb)
	assert.Contains(t, sb.String(), `warehouse_entity_transformed_total{layer="silver",entity="patients"} 4`)
}

func TestLockHeldFailsEntityWithoutRunning(t *testing.T) {
	lock := &fakeLock{held: map[string]bool{"silver/admissions": true}}
	ran := map[string]bool{}
	r := newTestRunner(Options{Lock: lock})
	r.transform = func(_ context.Context, e silver.Entity) (outcome, error) {
		ran[e.Name] = true
		return outcome{}, nil
	}

	stats, err := r.TransformOne(context.Background(), "admissions")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stats.Status)
	assert.Equal(t, storage.ErrLockHeld.Error(), stats.Error)
	assert.False(t, ran["admissions"])
	assert.Empty(t, lock.released)

	stats, err = r.TransformOne(context.Background(), "patients")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stats.Status)
	assert.Equal(t, []string{"token-silver/patients"}, lock.released)
}

func TestPublishFailureDoesNotFailRun(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	r := newTestRunner(Options{Publisher: pub})

	stats, err := r.TransformOne(context.Background(), "caregivers")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stats.Status)
	assert.Len(t, pub.events, 1)
}

func TestTransformAllStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := newTestRunner(Options{})
	r.transform = func(_ context.Context, e silver.Entity) (outcome, error) {
		if e.Name == "admissions" {
			cancel()
		}
		return outcome{}, nil
	}

	summary := r.TransformAll(ctx)
	assert.Len(t, summary.Entities, 2)
}

func TestPrintSummary(t *testing.T) {
	summary := &models.RunSummary{
		RunID: "run-1",
		Layer: LayerSilver,
		Entities: []models.EntityStats{
			{Entity: "patients", Status: models.StatusCompleted, Total: 10, Transformed: 9, Errors: 1, Dropped: 1},
			{Entity: "labevents", Status: models.StatusFailed, Total: 5, Transformed: 2, Error: "write batch 1: boom"},
		},
	}

	var sb strings.Builder
	require.NoError(t, PrintSummary(&sb, summary))
	out := sb.String()

	assert.Contains(t, out, "SILVER run run-1")
	assert.Contains(t, out, "ENTITY")
	assert.Regexp(t, `patients\s+completed\s+10\s+9\s+1\s+1`, out)
	assert.Regexp(t, `TOTAL\s+15\s+11\s+1`, out)
	assert.Contains(t, out, "FAILED: labevents")
	assert.Contains(t, out, "labevents: write batch 1: boom")
}

func TestSingleSummaryCarriesEntityDuration(t *testing.T) {
	summary := SingleSummary(models.EntityStats{
		Entity: "patients", Layer: LayerSilver, Status: models.StatusCompleted,
		Total: 4, Transformed: 4, DurationMS: 1500,
	})
	assert.Equal(t, 1500*time.Millisecond, summary.FinishedAt.Sub(summary.StartedAt))

	var sb strings.Builder
	require.NoError(t, PrintSummary(&sb, summary))
	assert.Regexp(t, `TOTAL\s+4\s+4\s+0\s+1\.5s`, sb.String())
}

func TestConcurrentRunsOfOneEntityAreRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var first sync.Once
	r := newTestRunner(Options{Lock: storage.NewLocalLock()})
	r.transform = func(_ context.Context, e silver.Entity) (outcome, error) {
		if e.Name == "patients" {
			first.Do(func() {
				close(started)
				<-release
			})
		}
		return outcome{stats: models.EntityStats{Total: 1, Transformed: 1}}, nil
	}

	done := make(chan models.EntityStats)
	go func() {
		stats, _ := r.TransformOne(context.Background(), "patients")
		done <- stats
	}()
	<-started

	second, err := r.TransformOne(context.Background(), "patients")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, second.Status)
	assert.Equal(t, storage.ErrLockHeld.Error(), second.Error)

	other, err := r.TransformOne(context.Background(), "admissions")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, other.Status)

	close(release)
	assert.Equal(t, models.StatusCompleted, (<-done).Status)

	again, err := r.TransformOne(context.Background(), "patients")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, again.Status)
}

func TestNewRunnerDefaultsToLocalLock(t *testing.T) {
	r := NewRunner(nil, Options{BatchSize: 10})
	_, ok := r.opts.Lock.(*storage.LocalLock)
	assert.True(t, ok)
}
