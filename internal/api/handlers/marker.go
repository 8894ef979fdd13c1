package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/backtester/internal/backtest"
	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
	"github.com/wonny/backtester/internal/rangeconfig"
	"github.com/wonny/backtester/pkg/logger"
)

// SessionHeader selects the caller's range set
const SessionHeader = "X-Session-ID"

// MarkerHandler serves range configuration, classification and the dashboard
type MarkerHandler struct {
	sessions *marker.Sessions
	presets  *rangeconfig.Config
	service  *backtest.Service
	logger   *logger.Logger
}

// NewMarkerHandler creates a new marker handler. presets may be nil.
func NewMarkerHandler(sessions *marker.Sessions, presets *rangeconfig.Config, service *backtest.Service, log *logger.Logger) *MarkerHandler {
	return &MarkerHandler{
		sessions: sessions,
		presets:  presets,
		service:  service,
		logger:   log.WithComponent("api.marker"),
	}
}

// SetRangeRequest sets one bound; null clears it
type SetRangeRequest struct {
	Value *float64 `json:"value"`
}

func (h *MarkerHandler) rangeSet(r *http.Request) *marker.RangeSet {
	return h.sessions.Get(r.Header.Get(SessionHeader))
}

// GetRanges returns the session's bands
// GET /api/marker/ranges
func (h *MarkerHandler) GetRanges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.rangeSet(r).Snapshot())
}

// SetRange changes one bound of one metric
// PUT /api/marker/ranges/{metric}/{bound}
func (h *MarkerHandler) SetRange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req SetRangeRequest
	if err := decodeJSON(w, r, 1<<10, &req); err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	ranges, err := h.rangeSet(r).SetRange(vars["metric"], vars["bound"], req.Value)
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, ranges)
}

// ResetRanges restores the default bands
// POST /api/marker/ranges/reset
func (h *MarkerHandler) ResetRanges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.rangeSet(r).Reset())
}

// ListPresets returns the configured preset names
// GET /api/marker/presets
func (h *MarkerHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{"presets": h.presets.PresetNames()})
}

// ApplyPreset overlays a named preset on the session's bands
// POST /api/marker/ranges/presets/{name}
func (h *MarkerHandler) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	preset, ok := h.presets.Preset(name)
	if !ok {
		respondAppError(w, h.logger, 0, contracts.NotFoundError("preset %q not found", name))
		return
	}

	respondJSON(w, http.StatusOK, h.rangeSet(r).Apply(preset))
}

// Classify evaluates a posted result against the session's bands
// POST /api/marker/classify
func (h *MarkerHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var result contracts.BacktestResult
	if err := decodeJSON(w, r, 1<<16, &result); err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, h.rangeSet(r).Classify(&result))
}

// Dashboard lists stored results newest first with their classification
// GET /api/dashboard
func (h *MarkerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Dashboard(r.Context(), h.rangeSet(r).Snapshot())
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}
