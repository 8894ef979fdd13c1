package handlers

import (
	"net/http"

	"github.com/wonny/backtester/internal/analysis"
	"github.com/wonny/backtester/pkg/logger"
)

// AnalysisHandler serves single-stock analysis
type AnalysisHandler struct {
	service *analysis.Service
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *analysis.Service, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  log.WithComponent("api.analysis"),
	}
}

// Analyze returns the analysis document for a symbol
// POST /api/analyze
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := decodeJSON(w, r, 1<<10, &req); err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	out, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondRaw(w, http.StatusOK, out)
}
