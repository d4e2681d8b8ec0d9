package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/warehouse/pkg/bronze"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
	"github.com/synaptica-ai/warehouse/pkg/gold"
	"github.com/synaptica-ai/warehouse/pkg/pipeline"
	"github.com/synaptica-ai/warehouse/pkg/silver"
	"github.com/synaptica-ai/warehouse/pkg/storage"
)

// Runner is satisfied by *pipeline.Runner.
type Runner interface {
	LoadOne(ctx context.Context, table string) (models.EntityStats, error)
	LoadAll(ctx context.Context) *models.RunSummary
	TransformOne(ctx context.Context, name string) (models.EntityStats, error)
	TransformAll(ctx context.Context) *models.RunSummary
}

type RunStore interface {
	List(ctx context.Context, filter storage.RunFilter) ([]storage.Run, error)
	Get(ctx context.Context, id string) (*storage.Run, error)
}

type ContractVerifier interface {
	VerifyAll(ctx context.Context) (*gold.Report, error)
}

type LastRuns interface {
	Last(ctx context.Context, layer, entity string) (*models.EntityStats, error)
}

// HTTPHandler exposes the pipeline to operators. Runs, verifier and last-run
// cache are optional; their routes answer 503 when absent.
type HTTPHandler struct {
	runner   Runner
	runs     RunStore
	verifier ContractVerifier
	last     LastRuns
	metrics  http.Handler
}

func NewHTTPHandler(runner Runner, runs RunStore, verifier ContractVerifier, last LastRuns, metrics http.Handler) *HTTPHandler {
	return &HTTPHandler{
		runner:   runner,
		runs:     runs,
		verifier: verifier,
		last:     last,
		metrics:  metrics,
	}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/runs", h.handleListRuns).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}", h.handleGetRun).Methods(http.MethodGet)
	router.HandleFunc("/runs/{layer}", h.handleRunAll).Methods(http.MethodPost)
	router.HandleFunc("/runs/{layer}/{entity}", h.handleRunOne).Methods(http.MethodPost)
	router.HandleFunc("/entities/{layer}/{entity}/last", h.handleLastRun).Methods(http.MethodGet)
	router.HandleFunc("/contract", h.handleContract).Methods(http.MethodGet)
	router.HandleFunc("/contract/verify", h.handleVerify).Methods(http.MethodGet)
	if h.metrics != nil {
		router.Handle("/metrics", h.metrics).Methods(http.MethodGet)
	}
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *HTTPHandler) handleRunAll(w http.ResponseWriter, r *http.Request) {
	var summary *models.RunSummary
	switch layer := mux.Vars(r)["layer"]; layer {
	case pipeline.LayerBronze:
		summary = h.runner.LoadAll(r.Context())
	case pipeline.LayerSilver:
		summary = h.runner.TransformAll(r.Context())
	default:
		http.Error(w, "unknown layer "+layer, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *HTTPHandler) handleRunOne(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var (
		stats models.EntityStats
		err   error
	)
	switch layer := vars["layer"]; layer {
	case pipeline.LayerBronze:
		stats, err = h.runner.LoadOne(r.Context(), vars["entity"])
	case pipeline.LayerSilver:
		stats, err = h.runner.TransformOne(r.Context(), vars["entity"])
	default:
		http.Error(w, "unknown layer "+layer, http.StatusBadRequest)
		return
	}
	if err != nil {
		if errors.Is(err, bronze.ErrUnknownEntity) || errors.Is(err, silver.ErrUnknownEntity) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to run entity")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "run log disabled", http.StatusServiceUnavailable)
		return
	}
	q := r.URL.Query()
	filter := storage.RunFilter{
		RunID:  q.Get("run_id"),
		Layer:  q.Get("layer"),
		Entity: q.Get("entity"),
		Status: q.Get("status"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	runs, err := h.runs.List(r.Context(), filter)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list runs")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (h *HTTPHandler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		http.Error(w, "run log disabled", http.StatusServiceUnavailable)
		return
	}
	run, err := h.runs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch run")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (h *HTTPHandler) handleLastRun(w http.ResponseWriter, r *http.Request) {
	if h.last == nil {
		http.Error(w, "run cache disabled", http.StatusServiceUnavailable)
		return
	}
	vars := mux.Vars(r)
	stats, err := h.last.Last(r.Context(), strings.ToLower(vars["layer"]), strings.ToLower(vars["entity"]))
	if err != nil {
		logger.Log.WithError(err).Error("failed to read last run")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if stats == nil {
		http.Error(w, "no run recorded", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *HTTPHandler) handleContract(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, gold.Contract())
}

func (h *HTTPHandler) handleVerify(w http.ResponseWriter, r *http.Request) {
	if h.verifier == nil {
		http.Error(w, "verifier disabled", http.StatusServiceUnavailable)
		return
	}
	report, err := h.verifier.VerifyAll(r.Context())
	if err != nil {
		logger.Log.WithError(err).Error("failed to verify contract")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     report.OK(),
		"tables": report.Tables,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.WithError(err).Warn("failed to encode response")
	}
}
