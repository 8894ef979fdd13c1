// Package analysis runs the single-stock analysis computation.
package analysis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/pkg/logger"
)

// Request names a symbol and a lookback period understood by the analysis script, e.g. "1y"
type Request struct {
	Symbol string `json:"symbol" validate:"required"`
	Period string `json:"period" validate:"required"`
}

// Analyzer runs the analysis computation
type Analyzer interface {
	AnalyzeStock(ctx context.Context, symbol, period string) (json.RawMessage, error)
}

// Service validates requests and delegates to an Analyzer
type Service struct {
	analyzer Analyzer
	validate *validator.Validate
	logger   *logger.Logger
}

// NewService creates a new analysis service
func NewService(analyzer Analyzer, log *logger.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		validate: validator.New(),
		logger:   log.WithComponent("analysis"),
	}
}

// Analyze returns the computation's document verbatim
func (s *Service) Analyze(ctx context.Context, req Request) (json.RawMessage, error) {
	req.Symbol = strings.TrimSpace(req.Symbol)
	req.Period = strings.TrimSpace(req.Period)

	if err := s.validate.Struct(req); err != nil {
		return nil, contracts.ValidationError("symbol and period are required")
	}

	out, err := s.analyzer.AnalyzeStock(ctx, req.Symbol, req.Period)
	if err != nil {
		s.logger.WithError(err).WithField("symbol", req.Symbol).Warn("Stock analysis failed")
		return nil, err
	}
	return out, nil
}
