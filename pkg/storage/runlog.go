package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrRunNotFound = errors.New("etl run not found")

const defaultListLimit = 200

// Run is one entity run of one layer. Runs started by the same "all"
// invocation share a RunID.
type Run struct {
	ID          string            `gorm:"primaryKey;column:id" json:"id"`
	RunID       string            `gorm:"column:run_id;index" json:"run_id"`
	Layer       string            `gorm:"column:layer;index:idx_etl_runs_layer_entity" json:"layer"`
	Entity      string            `gorm:"column:entity;index:idx_etl_runs_layer_entity" json:"entity"`
	Status      string            `gorm:"column:status" json:"status"`
	Total       int64             `gorm:"column:total" json:"total"`
	Transformed int64             `gorm:"column:transformed" json:"transformed"`
	Errors      int64             `gorm:"column:errors" json:"errors"`
	Dropped     int64             `gorm:"column:dropped" json:"dropped"`
	Error       string            `gorm:"column:error" json:"error,omitempty"`
	Details     datatypes.JSONMap `gorm:"column:details" json:"details,omitempty"`
	StartedAt   time.Time         `gorm:"column:started_at" json:"started_at"`
	FinishedAt  *time.Time        `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (Run) TableName() string {
	return "ops.etl_runs"
}

func (r *Run) Stats() models.EntityStats {
	s := models.EntityStats{
		Entity:      r.Entity,
		Layer:       r.Layer,
		Status:      r.Status,
		Total:       r.Total,
		Transformed: r.Transformed,
		Errors:      r.Errors,
		Dropped:     r.Dropped,
		Error:       r.Error,
	}
	if r.FinishedAt != nil {
		s.DurationMS = r.FinishedAt.Sub(r.StartedAt).Milliseconds()
	}
	return s
}

type RunFilter struct {
	RunID  string
	Layer  string
	Entity string
	Status string
	Limit  int
}

type RunLog struct {
	db *gorm.DB
}

func NewRunLog(db *gorm.DB) *RunLog {
	return &RunLog{db: db}
}

func (l *RunLog) AutoMigrate(ctx context.Context) error {
	return l.db.WithContext(ctx).AutoMigrate(&Run{})
}

// Start records a running entity run and returns it for Finish.
func (l *RunLog) Start(ctx context.Context, runID, layer, entity string) (*Run, error) {
	run := &Run{
		ID:        uuid.New().String(),
		RunID:     runID,
		Layer:     layer,
		Entity:    entity,
		Status:    models.StatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (l *RunLog) Finish(ctx context.Context, run *Run, stats models.EntityStats, details map[string]interface{}) error {
	finished := time.Now().UTC()
	run.Status = stats.Status
	run.Total = stats.Total
	run.Transformed = stats.Transformed
	run.Errors = stats.Errors
	run.Dropped = stats.Dropped
	run.Error = stats.Error
	run.FinishedAt = &finished
	if details != nil {
		run.Details = datatypes.JSONMap(details)
	}

	return l.db.WithContext(ctx).Model(&Run{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":      run.Status,
			"total":       run.Total,
			"transformed": run.Transformed,
			"errors":      run.Errors,
			"dropped":     run.Dropped,
			"error":       run.Error,
			"details":     run.Details,
			"finished_at": finished,
		}).Error
}

func (l *RunLog) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	result := l.db.WithContext(ctx).First(&run, "id = ?", id)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &run, nil
}

// List returns the most recent runs matching filter, newest first.
func (l *RunLog) List(ctx context.Context, filter RunFilter) ([]Run, error) {
	var runs []Run
	if err := listQuery(l.db.WithContext(ctx), filter).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func listQuery(tx *gorm.DB, filter RunFilter) *gorm.DB {
	if filter.RunID != "" {
		tx = tx.Where("run_id = ?", filter.RunID)
	}
	if filter.Layer != "" {
		tx = tx.Where("layer = ?", strings.ToLower(filter.Layer))
	}
	if filter.Entity != "" {
		tx = tx.Where("entity = ?", strings.ToLower(filter.Entity))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", strings.ToLower(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return tx.Order("started_at desc").Limit(limit)
}
