// Package screener turns entry and exit screener exports into combined trading signals.
package screener

import (
	"context"
	"io"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/materialize"
	"github.com/wonny/backtester/pkg/logger"
)

// Generator runs the signal generation computation over two materialized files
type Generator interface {
	GenerateSignals(ctx context.Context, entryPath, exitPath string) (*contracts.SignalSet, error)
}

// Service materializes both uploads and delegates to a Generator
type Service struct {
	generator    Generator
	materializer *materialize.Materializer
	logger       *logger.Logger
}

// NewService creates a new screener service
func NewService(generator Generator, materializer *materialize.Materializer, log *logger.Logger) *Service {
	return &Service{
		generator:    generator,
		materializer: materializer,
		logger:       log.WithComponent("screener"),
	}
}

// GenerateSignals combines entry and exit screener data.
// Both temp files are removed before returning.
func (s *Service) GenerateSignals(ctx context.Context, entry, exit io.Reader) (*contracts.SignalSet, error) {
	if entry == nil || exit == nil {
		return nil, contracts.ValidationError("both entryFile and exitFile are required")
	}

	entryFile, err := s.materializer.MaterializeFrom("entry", entry)
	if err != nil {
		return nil, err
	}
	defer entryFile.Release()

	exitFile, err := s.materializer.MaterializeFrom("exit", exit)
	if err != nil {
		return nil, err
	}
	defer exitFile.Release()

	set, err := s.generator.GenerateSignals(ctx, entryFile.Path, exitFile.Path)
	if err != nil {
		s.logger.WithError(err).Warn("Signal generation failed")
		return nil, err
	}

	if set.Signals == nil {
		set.Signals = []contracts.GeneratedSignal{}
	}
	s.logger.WithField("signals", len(set.Signals)).Info("Signals generated")
	return set, nil
}
