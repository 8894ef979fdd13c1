package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/backtester/internal/api"
	"github.com/wonny/backtester/internal/api/handlers"
	"github.com/wonny/backtester/internal/marker"
	"github.com/wonny/backtester/internal/observability"
	"github.com/wonny/backtester/internal/scheduler"
	"github.com/wonny/backtester/internal/scheduler/jobs"
	"github.com/wonny/backtester/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server, the temp file sweeper and,
when METRICS_ENABLED is set, the Prometheus endpoint.

Endpoints:
  GET  /health
  POST /api/signal-files                  - upload and backtest a signal file
  GET  /api/backtest-results              - list stored results
  GET  /api/signal-files/{id}             - per-symbol metrics
  GET  /api/signal-files/{id}/results     - run history of one file
  POST /api/analyze                       - single-stock analysis
  POST /api/screener/generate-signals     - combine entry/exit screener files
  GET  /api/marker/ranges                 - current range bands
  PUT  /api/marker/ranges/{metric}/{bound}
  POST /api/marker/ranges/reset
  GET  /api/marker/presets                - presets from MARKER_RANGES_FILE
  POST /api/marker/ranges/presets/{name}
  POST /api/marker/classify
  GET  /api/dashboard                     - results with classification

Example:
  go run ./cmd/backtester api
  go run ./cmd/backtester api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Config, logger, store and services
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log.WithFields(map[string]interface{}{
		"port":   cfg.Port,
		"env":    cfg.Env,
		"driver": a.stores.Driver,
	}).Info("Initializing API server")

	// 2. Redis for shared rate limits
	redisClient, err := redis.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	limiter := api.NewRateLimit(
		redis.NewRateLimiter(redisClient, "backtester"),
		cfg.SubmitRateLimit, cfg.SubmitRateWindow, log,
	)

	// 3. Classification bands
	presets, err := loadRanges(cfg.MarkerRangesFile, log)
	if err != nil {
		return err
	}
	sessions := marker.NewSessionsWithDefaults(cfg.SessionTTL, presets.DefaultRanges())

	// 4. Handlers and router
	h := api.Handlers{
		Backtest: handlers.NewBacktestHandler(a.backtest, cfg.UploadLimitBytes, log),
		Marker:   handlers.NewMarkerHandler(sessions, presets, a.backtest, log),
		Screener: handlers.NewScreenerHandler(a.screener, cfg.UploadLimitBytes, log),
		Analysis: handlers.NewAnalysisHandler(a.analysis, log),
		Health: handlers.NewHealthHandler("backtester", map[string]handlers.HealthCheck{
			"store": a.stores.Ping,
			"redis": redisClient.Ping,
		}),
	}
	server := api.New(cfg, log, api.NewRouter(h, limiter, log))

	// 5. Temp file sweeper
	sched := scheduler.New(log)
	sweep := jobs.NewTempSweepJob(cfg.TempSweepSchedule, cfg.TempSweepMaxAge, log, a.signalFiles, a.uploads)
	if err := sched.AddJob(sweep); err != nil {
		return fmt.Errorf("schedule temp sweep: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// 6. Metrics endpoint
	var metricsServer *http.Server
	if cfg.MetricsEnabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		metricsServer = &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
		log.WithField("port", cfg.MetricsPort).Info("Metrics server started")
	}

	// 7. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// In-flight computations may take up to the compute timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Compute.Timeout+5*time.Second)
	defer cancel()

	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
