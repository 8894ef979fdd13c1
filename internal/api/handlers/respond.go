package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/pkg/logger"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError writes err with its kind. status 0 derives it from the kind.
func respondAppError(w http.ResponseWriter, log *logger.Logger, status int, err error) {
	kind := contracts.KindOf(err)
	if status == 0 {
		status = StatusFor(err)
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("kind", string(kind)).Error("Request failed")
	}

	if kind == "" {
		kind = "internal"
	}
	respondJSON(w, status, ErrorResponse{Error: contracts.MessageOf(err), Kind: string(kind)})
}

// StatusFor maps an error kind to an HTTP status
func StatusFor(err error) int {
	switch contracts.KindOf(err) {
	case contracts.KindValidation:
		return http.StatusBadRequest
	case contracts.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// decodeJSON reads one JSON object from a size-limited body
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v interface{}) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return contracts.ValidationError("request body exceeds %d bytes", tooLarge.Limit)
		}
		return contracts.ValidationError("invalid request body")
	}
	return nil
}
