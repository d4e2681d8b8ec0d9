package silver

import (
	"context"
	"fmt"
	"iter"

	"github.com/synaptica-ai/warehouse/pkg/common/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postgres caps bind parameters per statement
const maxBindParams = 65535

// StoreReader pages through a table with offset/limit windows ordered by
// the given key, stopping at the first empty window.
type StoreReader[B any] struct {
	db        *gorm.DB
	batchSize int
	orderBy   string
}

func NewStoreReader[B any](db *gorm.DB, batchSize int, orderBy string) *StoreReader[B] {
	return &StoreReader[B]{db: db, batchSize: batchSize, orderBy: orderBy}
}

func (r *StoreReader[B]) Batches(ctx context.Context) iter.Seq2[[]B, error] {
	return func(yield func([]B, error) bool) {
		if r.batchSize <= 0 {
			yield(nil, fmt.Errorf("batch size must be positive, got %d", r.batchSize))
			return
		}
		offset := 0
		for {
			var batch []B
			err := r.page(r.db.WithContext(ctx), offset).Find(&batch).Error
			if err != nil {
				yield(nil, err)
				return
			}
			if len(batch) == 0 {
				return
			}
			if !yield(batch, nil) {
				return
			}
			offset += r.batchSize
		}
	}
}

func (r *StoreReader[B]) page(tx *gorm.DB, offset int) *gorm.DB {
	return tx.Model(new(B)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: r.orderBy}}).
		Offset(offset).
		Limit(r.batchSize)
}

// UpsertWriter inserts a batch or overwrites every non-key column of rows
// that already exist, in one transaction.
type UpsertWriter[S any] struct {
	db    *gorm.DB
	chunk int
}

func NewUpsertWriter[S any](db *gorm.DB) (*UpsertWriter[S], error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(S)); err != nil {
		return nil, fmt.Errorf("parse model: %w", err)
	}
	return &UpsertWriter[S]{
		db:    db,
		chunk: max(1, maxBindParams/len(stmt.Schema.DBNames)),
	}, nil
}

func (w *UpsertWriter[S]) Write(ctx context.Context, rows []S) error {
	return database.WithTransaction(ctx, w.db, func(tx *gorm.DB) error {
		for start := 0; start < len(rows); start += w.chunk {
			end := min(start+w.chunk, len(rows))
			if err := upsertRows(tx, rows[start:end]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertRows conflicts on the primary key. created_at keeps its first
// value; updated_at is reset on every write.
func upsertRows[S any](tx *gorm.DB, rows []S) *gorm.DB {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows)
}
