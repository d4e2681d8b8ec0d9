package bronze

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/warehouse/pkg/common/database"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postgres caps bind parameters per statement
const maxBindParams = 65535

type LoadStats struct {
	Table    string        `json:"table"`
	Total    int64         `json:"total"`
	Loaded   int64         `json:"loaded"`
	Inserted int64         `json:"inserted"`
	Errors   int64         `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Loader copies CSV files into the raw tables. Rows already present are
// left untouched, so a reload never mutates Bronze.
type Loader struct {
	db         *gorm.DB
	dataDir    string
	batchSize  int
	skipErrors bool
}

func NewLoader(db *gorm.DB, dataDir string, batchSize int, skipErrors bool) *Loader {
	return &Loader{
		db:         db,
		dataDir:    dataDir,
		batchSize:  batchSize,
		skipErrors: skipErrors,
	}
}

func (l *Loader) AutoMigrate(ctx context.Context) error {
	if err := database.EnsureSchemas(ctx, l.db); err != nil {
		return err
	}
	return l.db.WithContext(ctx).AutoMigrate(Models()...)
}

// Load reads one table's CSV and inserts it batch by batch, one transaction
// per batch. Batches committed before a failure stay committed.
func (l *Loader) Load(ctx context.Context, name string) (LoadStats, error) {
	schema, err := Lookup(name)
	if err != nil {
		return LoadStats{}, err
	}

	stats := LoadStats{Table: schema.Table}
	started := time.Now()
	log := logger.Log.WithField("table", schema.Table)

	reader, err := OpenCSV(l.dataDir, schema, l.batchSize, l.skipErrors)
	if err != nil {
		return stats, err
	}
	defer reader.Close()

	log.WithField("file", schema.FileName()).Info("loading bronze table")

	var loadErr error
	for batch, err := range reader.Batches(ctx) {
		if err != nil {
			loadErr = err
			break
		}

		inserted, err := l.insertBatch(ctx, schema, batch)
		if err != nil {
			loadErr = fmt.Errorf("insert into %s: %w", schema.QualifiedTable(), err)
			break
		}
		stats.Loaded += int64(len(batch))
		stats.Inserted += inserted
		log.WithField("rows", len(batch)).Debug("loaded batch")
	}

	rs := reader.Stats()
	stats.Total = rs.Total
	stats.Errors = rs.Errors
	stats.Duration = time.Since(started)

	if loadErr != nil {
		log.WithError(loadErr).Error("bronze load failed")
		return stats, loadErr
	}

	log.WithFields(logrus.Fields{
		"total":    stats.Total,
		"loaded":   stats.Loaded,
		"inserted": stats.Inserted,
		"errors":   stats.Errors,
		"duration": stats.Duration.String(),
	}).Info("bronze load complete")
	return stats, nil
}

func (l *Loader) insertBatch(ctx context.Context, schema Schema, batch []Row) (int64, error) {
	values := make([]map[string]any, len(batch))
	for i, row := range batch {
		values[i] = map[string]any(row)
	}

	chunk := maxBindParams / len(schema.Fields)
	var inserted int64
	err := database.WithTransaction(ctx, l.db, func(tx *gorm.DB) error {
		for start := 0; start < len(values); start += chunk {
			end := min(start+chunk, len(values))
			res := insertRows(tx, schema, values[start:end])
			if res.Error != nil {
				return res.Error
			}
			inserted += res.RowsAffected
		}
		return nil
	})
	return inserted, err
}

// insertRows never overwrites a row that is already present.
func insertRows(tx *gorm.DB, schema Schema, values []map[string]any) *gorm.DB {
	return tx.Table(schema.QualifiedTable()).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(values)
}
