package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/screener"
	"github.com/wonny/backtester/pkg/logger"
)

const multipartMemory = 8 << 20

// ScreenerHandler serves signal generation from screener exports
type ScreenerHandler struct {
	service     *screener.Service
	uploadLimit int64
	logger      *logger.Logger
}

// NewScreenerHandler creates a new screener handler
func NewScreenerHandler(service *screener.Service, uploadLimit int64, log *logger.Logger) *ScreenerHandler {
	return &ScreenerHandler{
		service:     service,
		uploadLimit: uploadLimit,
		logger:      log.WithComponent("api.screener"),
	}
}

// GenerateSignals combines the uploaded entry and exit files
// POST /api/screener/generate-signals
func (h *ScreenerHandler) GenerateSignals(w http.ResponseWriter, r *http.Request) {
	if h.uploadLimit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondAppError(w, h.logger, 0, contracts.ValidationError("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondAppError(w, h.logger, 0, contracts.ValidationError("expected a multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	entry, err := formFile(r, "entryFile")
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}
	defer entry.Close()

	exit, err := formFile(r, "exitFile")
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}
	defer exit.Close()

	set, err := h.service.GenerateSignals(r.Context(), entry, exit)
	if err != nil {
		respondAppError(w, h.logger, 0, err)
		return
	}

	respondJSON(w, http.StatusOK, set)
}

func formFile(r *http.Request, field string) (multipart.File, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return nil, contracts.ValidationError("%s is required", field)
	}
	return f, nil
}
