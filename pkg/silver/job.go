package silver

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
)

// Reader streams source records in bounded windows. A terminal error is
// yielded once with a nil batch.
type Reader[B any] interface {
	Batches(ctx context.Context) iter.Seq2[[]B, error]
}

// Writer persists one batch atomically.
type Writer[S any] interface {
	Write(ctx context.Context, rows []S) error
}

type State int

const (
	StateNotStarted State = iota
	StateReading
	StateTransforming
	StateWriting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateTransforming:
		return "transforming"
	case StateWriting:
		return "writing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "not_started"
	}
}

// Stats counts records for one entity run. Every dropped record is also an
// error.
type Stats struct {
	Total       int64 `json:"total"`
	Transformed int64 `json:"transformed"`
	Errors      int64 `json:"errors"`
	Dropped     int64 `json:"dropped"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Total:       s.Total + o.Total,
		Transformed: s.Transformed + o.Transformed,
		Errors:      s.Errors + o.Errors,
		Dropped:     s.Dropped + o.Dropped,
	}
}

// WriteError reports a batch that was rolled back. Earlier batches of the
// same run remain committed.
type WriteError struct {
	Entity string
	Batch  int
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s batch %d: %v", e.Entity, e.Batch, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func IsWriteError(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}

// Job drives Reader -> Transformer -> Writer over every batch of one entity.
// A Job runs once and is not safe for concurrent use.
type Job[B, S any] struct {
	name        string
	reader      Reader[B]
	transformer Transformer[B, S]
	writer      Writer[S]

	state State
	stats Stats
}

func NewJob[B, S any](name string, reader Reader[B], transformer Transformer[B, S], writer Writer[S]) *Job[B, S] {
	return &Job[B, S]{
		name:        name,
		reader:      reader,
		transformer: transformer,
		writer:      writer,
	}
}

func (j *Job[B, S]) State() State { return j.state }

func (j *Job[B, S]) Stats() Stats { return j.stats }

// Run stops at the first failed read or write and returns the counts
// accumulated up to that point.
func (j *Job[B, S]) Run(ctx context.Context) (Stats, error) {
	log := logger.Log.WithField("entity", j.name)
	log.Info("starting bronze to silver transformation")

	j.state = StateReading
	batchNum := 0
	for batch, err := range j.reader.Batches(ctx) {
		if err != nil {
			j.state = StateFailed
			return j.stats, fmt.Errorf("read %s: %w", j.name, err)
		}

		j.state = StateTransforming
		out := make([]S, 0, len(batch))
		for i := range batch {
			j.stats.Total++
			rec, err := j.transformOne(&batch[i])
			switch {
			case err == nil && rec != nil:
				out = append(out, *rec)
				j.stats.Transformed++
			case err == nil || errors.Is(err, ErrDropped):
				j.stats.Errors++
				j.stats.Dropped++
				if err != nil {
					log.WithError(err).Debug("record dropped")
				}
			default:
				j.stats.Errors++
				log.WithError(err).Warn("error transforming record")
			}
		}

		j.state = StateWriting
		if len(out) > 0 {
			if err := j.writer.Write(ctx, out); err != nil {
				j.state = StateFailed
				werr := &WriteError{Entity: j.name, Batch: batchNum, Err: err}
				log.WithError(err).WithField("batch", batchNum).Error("batch write failed")
				return j.stats, werr
			}
		}
		log.WithFields(logrus.Fields{
			"batch":   batchNum,
			"records": len(batch),
			"written": len(out),
		}).Debug("processed batch")

		batchNum++
		j.state = StateReading
	}

	j.state = StateCompleted
	log.WithFields(logrus.Fields{
		"total":       j.stats.Total,
		"transformed": j.stats.Transformed,
		"errors":      j.stats.Errors,
	}).Info("transformation complete")
	return j.stats, nil
}

func (j *Job[B, S]) transformOne(rec *B) (out *S, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return j.transformer.Transform(rec)
}
