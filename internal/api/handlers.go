package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/time/rate"

	"github.com/miradorstack/docrouter-health/internal/collector"
	"github.com/miradorstack/docrouter-health/internal/models"
	"github.com/miradorstack/docrouter-health/internal/recorder"
	"github.com/miradorstack/docrouter-health/internal/services"
	"github.com/miradorstack/docrouter-health/internal/utils"
)

const (
	maxEventBody = 64 << 10

	// POST /admin/export budget, shared by all callers
	exportRate  = rate.Limit(1)
	exportBurst = 3
)

// EventRequest is the body of POST /events.
type EventRequest struct {
	DurationSeconds *float64 `json:"duration_seconds"`
	Success         *bool    `json:"success,omitempty"`
	Format          string   `json:"format,omitempty"`
	Intent          string   `json:"intent,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    models.Status                 `json:"status"`
	Timestamp time.Time                     `json:"timestamp"`
	Checks    map[string]models.ProbeResult `json:"checks"`
}

// Handlers serves the HTTP surface of the engine.
type Handlers struct {
	logger    *slog.Logger
	recorder  *recorder.Recorder
	collector *collector.Collector
	monitor   *services.Monitor
	gatherer  prometheus.Gatherer

	exportLimiter *rate.Limiter
}

// NewHandlers wires the HTTP handlers. gatherer defaults to the Prometheus
// default registry.
func NewHandlers(logger *slog.Logger, rec *recorder.Recorder, c *collector.Collector, m *services.Monitor, gatherer prometheus.Gatherer) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handlers{
		logger:    logger,
		recorder:  rec,
		collector: c,
		monitor:   m,
		gatherer:  gatherer,

		exportLimiter: rate.NewLimiter(exportRate, exportBurst),
	}
}

// Routes returns a mux with every endpoint registered.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /metrics/text", h.lineMetrics)
	mux.HandleFunc("GET /snapshot", h.snapshot)
	mux.HandleFunc("GET /healthz", h.healthz)
	mux.HandleFunc("POST /events", h.recordEvent)
	mux.HandleFunc("POST /admin/reset", h.reset)
	mux.HandleFunc("POST /admin/export", h.export)
	return mux
}

func (h *Handlers) lineMetrics(w http.ResponseWriter, r *http.Request) {
	text, err := h.collector.ExportLineMetrics(r.Context())
	if err != nil {
		h.logger.Error("line metrics failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	_, _ = w.Write([]byte(text))
}

func (h *Handlers) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collector.Collect(r.Context()))
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.monitor.Latest()
	if !ok {
		snap = h.monitor.Tick(r.Context())
	}

	resp := HealthResponse{
		Status:    snap.Health.OverallStatus,
		Timestamp: snap.Health.Timestamp,
		Checks:    snap.Health.Checks,
	}
	code := http.StatusOK
	if !resp.Status.Serving() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func (h *Handlers) recordEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, utils.NewAppError("api.events", "invalid body", err))
		return
	}
	if req.DurationSeconds == nil {
		writeError(w, http.StatusBadRequest, errors.New("duration_seconds is required"))
		return
	}
	if *req.DurationSeconds >= utils.MaxDurationSeconds {
		writeError(w, http.StatusBadRequest, fmt.Errorf("duration_seconds must be below %.0f", utils.MaxDurationSeconds))
		return
	}

	success := true
	if req.Success != nil {
		success = *req.Success
	}
	h.recorder.Record(recorder.Event{
		Duration: utils.SecondsToDuration(*req.DurationSeconds),
		Success:  success,
		Tags:     models.Tags{Format: req.Format, Intent: req.Intent},
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) reset(w http.ResponseWriter, r *http.Request) {
	total, _, failed := h.recorder.Counts()
	h.recorder.Reset()
	h.logger.Info("recorder reset",
		slog.String("remote", r.RemoteAddr),
		slog.Int64("cleared_requests", total),
		slog.Int64("cleared_errors", failed),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request) {
	if !h.exportLimiter.Allow() {
		writeError(w, http.StatusTooManyRequests, errors.New("export rate limit exceeded"))
		return
	}
	path := r.URL.Query().Get("path")
	id, err := h.monitor.Export(r.Context(), path)
	switch {
	case errors.Is(err, services.ErrExportDisabled):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
