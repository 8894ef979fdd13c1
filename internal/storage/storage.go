// Package storage selects and opens the configured persistence backend.
package storage

import (
	"context"
	"fmt"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/storage/memory"
	"github.com/wonny/backtester/internal/storage/migrations"
	"github.com/wonny/backtester/internal/storage/postgres"
	"github.com/wonny/backtester/internal/storage/sqlite"
	"github.com/wonny/backtester/pkg/config"
	"github.com/wonny/backtester/pkg/database"
	"github.com/wonny/backtester/pkg/logger"
)

// Stores bundles the two record stores of one backend
type Stores struct {
	Driver  string
	Files   contracts.SignalFileStore
	Results contracts.BacktestResultStore

	ping    func(ctx context.Context) error
	migrate func(ctx context.Context) error
	close   func()
}

// Ping reports whether the backend is reachable
func (s *Stores) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Migrate applies the backend's schema
func (s *Stores) Migrate(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx)
}

// Close releases backend resources
func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

// Open connects to the backend named by cfg.StoreDriver.
// The schema is applied when cfg.Database.AutoMigrate is set.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Stores, error) {
	stores, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := stores.Migrate(ctx); err != nil {
			stores.Close()
			return nil, fmt.Errorf("failed to migrate %s store: %w", stores.Driver, err)
		}
	}

	log.WithFields(map[string]interface{}{
		"driver":       stores.Driver,
		"auto_migrate": cfg.Database.AutoMigrate,
	}).Info("Store opened")

	return stores, nil
}

func open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:  config.DriverPostgres,
			Files:   postgres.NewSignalFileStore(db),
			Results: postgres.NewBacktestResultStore(db),
			ping:    db.Ping,
			migrate: func(ctx context.Context) error {
				return migrations.Apply(ctx, migrations.PostgresFS, "postgres", db)
			},
			close: db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Driver:  config.DriverSQLite,
			Files:   sqlite.NewSignalFileStore(db),
			Results: sqlite.NewBacktestResultStore(db),
			ping:    db.Ping,
			migrate: db.Migrate,
			close:   func() { _ = db.Close() },
		}, nil

	case config.DriverMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// NewMemory returns process-local stores; used by tests and STORE_DRIVER=memory
func NewMemory() *Stores {
	return &Stores{
		Driver:  config.DriverMemory,
		Files:   memory.NewSignalFileStore(),
		Results: memory.NewBacktestResultStore(),
	}
}
