package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/backtester/internal/api/handlers"
	"github.com/wonny/backtester/pkg/logger"
)

// Handlers groups everything the router serves
type Handlers struct {
	Backtest *handlers.BacktestHandler
	Marker   *handlers.MarkerHandler
	Screener *handlers.ScreenerHandler
	Analysis *handlers.AnalysisHandler
	Health   *handlers.HealthHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, limit *RateLimit, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Check).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Signal files and results
	api.Handle("/signal-files", limit.Wrap("signal_files", h.Backtest.SubmitSignalFile)).Methods("POST")
	api.Handle("/signal-files/{id}", limit.Wrap("company_metrics", h.Backtest.GetCompanyMetrics)).Methods("GET")
	api.HandleFunc("/signal-files/{id}/results", h.Backtest.GetSignalFileResults).Methods("GET")
	api.HandleFunc("/backtest-results", h.Backtest.ListResults).Methods("GET")

	// Computations without persistence
	api.Handle("/analyze", limit.Wrap("analyze", h.Analysis.Analyze)).Methods("POST")
	api.Handle("/screener/generate-signals", limit.Wrap("generate_signals", h.Screener.GenerateSignals)).Methods("POST")

	// Range classification
	api.HandleFunc("/marker/ranges", h.Marker.GetRanges).Methods("GET")
	api.HandleFunc("/marker/ranges/reset", h.Marker.ResetRanges).Methods("POST")
	api.HandleFunc("/marker/ranges/presets/{name}", h.Marker.ApplyPreset).Methods("POST")
	api.HandleFunc("/marker/presets", h.Marker.ListPresets).Methods("GET")
	api.HandleFunc("/marker/ranges/{metric}/{bound}", h.Marker.SetRange).Methods("PUT")
	api.HandleFunc("/marker/classify", h.Marker.Classify).Methods("POST")
	api.HandleFunc("/dashboard", h.Marker.Dashboard).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			// Call next handler
			next.ServeHTTP(rec, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"Internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
