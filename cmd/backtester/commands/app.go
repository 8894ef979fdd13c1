package commands

import (
	"context"
	"fmt"

	"github.com/wonny/backtester/internal/analysis"
	"github.com/wonny/backtester/internal/backtest"
	"github.com/wonny/backtester/internal/compute"
	"github.com/wonny/backtester/internal/materialize"
	"github.com/wonny/backtester/internal/rangeconfig"
	"github.com/wonny/backtester/internal/screener"
	"github.com/wonny/backtester/internal/storage"
	"github.com/wonny/backtester/pkg/config"
	"github.com/wonny/backtester/pkg/logger"
)

// app holds the wired services shared by the commands
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	stores *storage.Stores

	signalFiles *materialize.Materializer
	uploads     *materialize.Materializer

	backtest *backtest.Service
	screener *screener.Service
	analysis *analysis.Service
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp loads config, opens the store and wires the services
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)

	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	runner := compute.NewRunner(cfg.Compute.PythonPath, cfg.Compute.Timeout, log)
	adapter := compute.NewAdapter(runner, compute.ScriptsFromConfig(cfg.Compute))

	signalFiles := materialize.New(cfg.Compute.TempDir, "signals")
	uploads := materialize.New(cfg.Compute.TempDir, "screener")

	return &app{
		cfg:         cfg,
		log:         log,
		stores:      stores,
		signalFiles: signalFiles,
		uploads:     uploads,
		backtest:    backtest.NewService(stores.Files, stores.Results, adapter, signalFiles, log),
		screener:    screener.NewService(adapter, uploads, log),
		analysis:    analysis.NewService(adapter, log),
	}, nil
}

// Close releases the store
func (a *app) Close() {
	a.stores.Close()
}

// loadRanges reads MARKER_RANGES_FILE; an empty path means built-in bands
func loadRanges(path string, log *logger.Logger) (*rangeconfig.Config, error) {
	if path == "" {
		return nil, nil
	}

	cfg, err := rangeconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load range file %s: %w", path, err)
	}

	hash, err := rangeconfig.Hash(cfg)
	if err != nil {
		return nil, err
	}
	log.WithFields(map[string]interface{}{
		"path":    path,
		"hash":    hash,
		"presets": cfg.PresetNames(),
	}).Info("Range file loaded")

	return cfg, nil
}
