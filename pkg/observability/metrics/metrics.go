package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/synaptica-ai/warehouse/pkg/common/models"
)

type entityKey struct {
	layer  string
	entity string
}

type entityCounters struct {
	records     atomic.Int64
	transformed atomic.Int64
	errors      atomic.Int64
	dropped     atomic.Int64
	completed   atomic.Int64
	failed      atomic.Int64
	skipped     atomic.Int64
	lastMillis  atomic.Int64
}

// Registry accumulates per-entity run counters for the lifetime of the process.
type Registry struct {
	mu       sync.RWMutex
	entities map[entityKey]*entityCounters
}

func NewRegistry() *Registry {
	return &Registry{entities: make(map[entityKey]*entityCounters)}
}

func (r *Registry) counters(layer, entity string) *entityCounters {
	key := entityKey{layer: layer, entity: entity}

	r.mu.RLock()
	c, ok := r.entities[key]
	r.mu.RUnlock()
	if ok {
		return c
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok = r.entities[key]; !ok {
		c = &entityCounters{}
		r.entities[key] = c
	}
	return c
}

func (r *Registry) ObserveRun(stats models.EntityStats) {
	c := r.counters(stats.Layer, stats.Entity)
	c.records.Add(stats.Total)
	c.transformed.Add(stats.Transformed)
	c.errors.Add(stats.Errors)
	c.dropped.Add(stats.Dropped)
	c.lastMillis.Store(stats.DurationMS)

	switch stats.Status {
	case models.StatusCompleted:
		c.completed.Add(1)
	case models.StatusFailed:
		c.failed.Add(1)
	case models.StatusSkipped:
		c.skipped.Add(1)
	}
}

type family struct {
	name  string
	help  string
	kind  string
	value func(*entityCounters) int64
}

var families = []family{
	{"warehouse_entity_records_total", "Source records read per entity.", "counter", func(c *entityCounters) int64 { return c.records.Load() }},
	{"warehouse_entity_transformed_total", "Records written per entity.", "counter", func(c *entityCounters) int64 { return c.transformed.Load() }},
	{"warehouse_entity_errors_total", "Records rejected per entity, drops included.", "counter", func(c *entityCounters) int64 { return c.errors.Load() }},
	{"warehouse_entity_dropped_total", "Records dropped by validation per entity.", "counter", func(c *entityCounters) int64 { return c.dropped.Load() }},
	{"warehouse_entity_runs_completed_total", "Entity runs that completed.", "counter", func(c *entityCounters) int64 { return c.completed.Load() }},
	{"warehouse_entity_runs_failed_total", "Entity runs that failed.", "counter", func(c *entityCounters) int64 { return c.failed.Load() }},
	{"warehouse_entity_runs_skipped_total", "Entity runs skipped for a missing source.", "counter", func(c *entityCounters) int64 { return c.skipped.Load() }},
	{"warehouse_entity_last_duration_milliseconds", "Duration of the latest run per entity.", "gauge", func(c *entityCounters) int64 { return c.lastMillis.Load() }},
}

// WritePrometheus renders every family in the text exposition format.
func (r *Registry) WritePrometheus(w io.Writer) {
	r.mu.RLock()
	keys := make([]entityKey, 0, len(r.entities))
	for k := range r.entities {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].layer != keys[j].layer {
			return keys[i].layer < keys[j].layer
		}
		return keys[i].entity < keys[j].entity
	})

	for _, f := range families {
		fmt.Fprintf(w, "# HELP %s %s\n", f.name, f.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", f.name, f.kind)
		for _, k := range keys {
			fmt.Fprintf(w, "%s{layer=%q,entity=%q} %d\n", f.name, k.layer, k.entity, f.value(r.counters(k.layer, k.entity)))
		}
	}
}

func (r *Registry) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		r.WritePrometheus(w)
	}
}
