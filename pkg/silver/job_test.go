package silver

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/terminology"
)

// sliceReader windows an in-memory slice the way StoreReader windows a table.
type sliceReader[B any] struct {
	rows      []B
	batchSize int
}

func (r *sliceReader[B]) Batches(ctx context.Context) iter.Seq2[[]B, error] {
	return func(yield func([]B, error) bool) {
		for start := 0; start < len(r.rows); start += r.batchSize {
			end := min(start+r.batchSize, len(r.rows))
			batch := append([]B(nil), r.rows[start:end]...)
			if !yield(batch, nil) {
				return
			}
		}
	}
}

type failingReader[B any] struct{ err error }

func (r failingReader[B]) Batches(context.Context) iter.Seq2[[]B, error] {
	return func(yield func([]B, error) bool) { yield(nil, r.err) }
}

// memoryWriter upserts by key; failAt makes the n-th Write fail.
type memoryWriter[S any] struct {
	key    func(S) string
	rows   map[string]S
	order  []string
	writes int
	failAt int
}

func newMemoryWriter[S any](key func(S) string) *memoryWriter[S] {
	return &memoryWriter[S]{key: key, rows: map[string]S{}, failAt: -1}
}

func (w *memoryWriter[S]) Write(_ context.Context, rows []S) error {
	defer func() { w.writes++ }()
	if w.writes == w.failAt {
		return errors.New("connection reset")
	}
	for _, r := range rows {
		k := w.key(r)
		if _, ok := w.rows[k]; !ok {
			w.order = append(w.order, k)
		}
		w.rows[k] = r
	}
	return nil
}

func labRows(n int) []bronze.LabEvent {
	rows := make([]bronze.LabEvent, n)
	for i := range rows {
		flag := "normal"
		if i%3 == 0 {
			flag = "abnormal"
		}
		value := fmt.Sprintf(">%d", i)
		rows[i] = bronze.LabEvent{RowID: int64(i + 1), Flag: &flag, Value: &value}
	}
	return rows
}

func labKey(l LabEvent) string { return fmt.Sprint(l.RowID) }

func TestJobRunsAllBatches(t *testing.T) {
	w := newMemoryWriter(labKey)
	job := NewJob("labevents",
		&sliceReader[bronze.LabEvent]{rows: labRows(25), batchSize: 10},
		Transformer[bronze.LabEvent, LabEvent](LabEventTransformer(terminology.DefaultCatalog())),
		w)
	assert.Equal(t, StateNotStarted, job.State())

	stats, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 25, Transformed: 25}, stats)
	assert.Equal(t, StateCompleted, job.State())
	assert.Equal(t, 3, w.writes)
	assert.Len(t, w.rows, 25)
	assert.Equal(t, 24.0, *w.rows["25"].ValueNum)
}

func TestJobBatchSizeInvariance(t *testing.T) {
	run := func(batchSize int) map[string]LabEvent {
		w := newMemoryWriter(labKey)
		stats, err := NewJob("labevents",
			&sliceReader[bronze.LabEvent]{rows: labRows(2500), batchSize: batchSize},
			Transformer[bronze.LabEvent, LabEvent](LabEventTransformer(terminology.DefaultCatalog())),
			w).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2500), stats.Transformed)
		return w.rows
	}
	assert.Equal(t, run(1000), run(500))
}

func TestJobIsIdempotent(t *testing.T) {
	w := newMemoryWriter(labKey)
	reader := &sliceReader[bronze.LabEvent]{rows: labRows(40), batchSize: 15}
	transform := Transformer[bronze.LabEvent, LabEvent](LabEventTransformer(terminology.DefaultCatalog()))

	_, err := NewJob("labevents", reader, transform, w).Run(context.Background())
	require.NoError(t, err)
	first := make(map[string]LabEvent, len(w.rows))
	for k, v := range w.rows {
		first[k] = v
	}

	stats, err := NewJob("labevents", reader, transform, w).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40), stats.Transformed)
	assert.Equal(t, first, w.rows)
	assert.Len(t, w.order, 40)
}

func TestJobCountsDropsAsErrors(t *testing.T) {
	rows := []bronze.Patient{
		{SubjectID: 1, Gender: strp("M")},
		{SubjectID: 2, Gender: strp("X")},
		{SubjectID: 3},
		{SubjectID: 4, Gender: strp("f")},
	}
	w := newMemoryWriter(func(p Patient) string { return fmt.Sprint(p.SubjectID) })

	stats, err := NewJob("patients",
		&sliceReader[bronze.Patient]{rows: rows, batchSize: 1000},
		TransformFunc[bronze.Patient, Patient](TransformPatient),
		w).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Transformed: 2, Errors: 2, Dropped: 2}, stats)
	assert.Equal(t, []string{"1", "4"}, w.order)
}

func TestJobRecoversTransformerPanics(t *testing.T) {
	explode := TransformFunc[bronze.Caregiver, Caregiver](func(b *bronze.Caregiver) (*Caregiver, error) {
		if b.CGID == 2 {
			var label *string
			_ = *label
		}
		if b.CGID == 3 {
			return nil, errors.New("bad caregiver")
		}
		return &Caregiver{CGID: b.CGID}, nil
	})
	w := newMemoryWriter(func(c Caregiver) string { return fmt.Sprint(c.CGID) })

	stats, err := NewJob("caregivers",
		&sliceReader[bronze.Caregiver]{rows: []bronze.Caregiver{{CGID: 1}, {CGID: 2}, {CGID: 3}}, batchSize: 10},
		explode, w).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Transformed: 1, Errors: 2}, stats)
}

func TestJobWriteFailureKeepsEarlierBatches(t *testing.T) {
	w := newMemoryWriter(labKey)
	w.failAt = 1

	job := NewJob("labevents",
		&sliceReader[bronze.LabEvent]{rows: labRows(30), batchSize: 10},
		Transformer[bronze.LabEvent, LabEvent](LabEventTransformer(terminology.DefaultCatalog())),
		w)
	stats, err := job.Run(context.Background())

	require.Error(t, err)
	assert.True(t, IsWriteError(err))
	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "labevents", we.Entity)
	assert.Equal(t, 1, we.Batch)

	assert.Equal(t, StateFailed, job.State())
	assert.Equal(t, int64(20), stats.Total)
	assert.Len(t, w.rows, 10)
	assert.Equal(t, 2, w.writes)
}

func TestJobReadFailure(t *testing.T) {
	boom := errors.New("relation does not exist")
	job := NewJob("outputevents",
		failingReader[bronze.OutputEvent]{err: boom},
		TransformFunc[bronze.OutputEvent, OutputEvent](TransformOutputEvent),
		newMemoryWriter(func(o OutputEvent) string { return fmt.Sprint(o.RowID) }))

	_, err := job.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, IsWriteError(err))
	assert.Equal(t, StateFailed, job.State())
}

func TestJobSkipsEmptyWrites(t *testing.T) {
	w := newMemoryWriter(func(p Patient) string { return fmt.Sprint(p.SubjectID) })
	stats, err := NewJob("patients",
		&sliceReader[bronze.Patient]{rows: []bronze.Patient{{SubjectID: 1}}, batchSize: 10},
		TransformFunc[bronze.Patient, Patient](TransformPatient),
		w).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Zero(t, w.writes)
}

func TestStatsAdd(t *testing.T) {
	a := Stats{Total: 3, Transformed: 2, Errors: 1, Dropped: 1}
	b := Stats{Total: 5, Transformed: 5}
	assert.Equal(t, Stats{Total: 8, Transformed: 7, Errors: 1, Dropped: 1}, a.Add(b))
}
