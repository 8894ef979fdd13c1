package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/backtester/internal/backtest"
	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/pkg/logger"
)

// BacktestHandler serves signal file submission and result lookup
// ⭐ SSOT: backtest API 핸들러는 이 구조체에서만
type BacktestHandler struct {
	service     *backtest.Service
	uploadLimit int64
	logger      *logger.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(service *backtest.Service, uploadLimit int64, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		service:     service,
		uploadLimit: uploadLimit,
		logger:      log.WithComponent("api.backtest"),
	}
}

// SubmitSignalFile stores a signal file and returns its backtest result.
// Every failure on this route is a 500.
// POST /api/signal-files
func (h *BacktestHandler) SubmitSignalFile(w http.ResponseWriter, r *http.Request) {
	var req backtest.SubmitRequest
	if err := decodeJSON(w, r, h.uploadLimit, &req); err != nil {
		respondAppError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	result, err := h.service.RunBacktest(r.Context(), req)
	if err != nil {
		respondAppError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// ListResults returns every stored backtest result
// GET /api/backtest-results
func (h *BacktestHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context())
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// GetCompanyMetrics recomputes per-symbol metrics for a signal file
// GET /api/signal-files/{id}
func (h *BacktestHandler) GetCompanyMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.signalFileID(w, r)
	if !ok {
		return
	}

	metrics, err := h.service.CompanyMetrics(r.Context(), id)
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// GetSignalFileResults returns the stored run history of a signal file
// GET /api/signal-files/{id}/results
func (h *BacktestHandler) GetSignalFileResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.signalFileID(w, r)
	if !ok {
		return
	}

	results, err := h.service.ResultsForFile(r.Context(), id)
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, results)
}

// signalFileID parses {id}; anything that is not a positive integer names no file
func (h *BacktestHandler) signalFileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondAppError(w, h.logger, 0, contracts.NotFoundError("signal file %s not found", raw))
		return 0, false
	}
	return id, true
}
