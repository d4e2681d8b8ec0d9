package models

import (
	"time"
)

// Event types published on the warehouse topic.
const (
	EventBronzeLoaded    = "bronze.entity.loaded"
	EventSilverCompleted = "silver.entity.completed"
	EventSilverFailed    = "silver.entity.failed"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Run status
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// EntityStats is the per-entity outcome of one Bronze load or Silver transform.
type EntityStats struct {
	Entity      string `json:"entity"`
	Layer       string `json:"layer"`
	Status      string `json:"status"`
	Total       int64  `json:"total"`
	Transformed int64  `json:"transformed"`
	Errors      int64  `json:"errors"`
	Dropped     int64  `json:"dropped"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

func (s EntityStats) Failed() bool {
	return s.Status == StatusFailed
}

// RunSummary aggregates the entity stats of a "run all" invocation.
type RunSummary struct {
	RunID      string        `json:"run_id"`
	Layer      string        `json:"layer"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Entities   []EntityStats `json:"entities"`
}

func (r *RunSummary) Totals() (total, transformed, errors int64) {
	for _, e := range r.Entities {
		total += e.Total
		transformed += e.Transformed
		errors += e.Errors
	}
	return total, transformed, errors
}

// Failed reports whether any entity in the run failed.
func (r *RunSummary) Failed() bool {
	for _, e := range r.Entities {
		if e.Failed() {
			return true
		}
	}
	return false
}

func (r *RunSummary) FailedEntities() []string {
	var out []string
	for _, e := range r.Entities {
		if e.Failed() {
			out = append(out, e.Entity)
		}
	}
	return out
}
