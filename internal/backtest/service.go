// Package backtest coordinates signal file persistence, materialization,
// external metrics computation and result persistence.
package backtest

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wonny/backtester/internal/contracts"
	"github.com/wonny/backtester/internal/marker"
	"github.com/wonny/backtester/internal/materialize"
	"github.com/wonny/backtester/internal/observability"
	"github.com/wonny/backtester/pkg/logger"
)

// SubmitRequest is an uploaded signal file
type SubmitRequest struct {
	Filename string `json:"filename" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// DashboardRow is a stored result with its classification
type DashboardRow struct {
	*contracts.BacktestResult
	Classification marker.Classification `json:"classification"`
}

// Service runs the backtest workflows
// ⭐ SSOT: signal file → result 흐름은 여기서만
type Service struct {
	files        contracts.SignalFileStore
	results      contracts.BacktestResultStore
	computer     contracts.MetricsComputer
	materializer *materialize.Materializer
	validate     *validator.Validate
	logger       *logger.Logger
}

// NewService creates a new backtest service
func NewService(
	files contracts.SignalFileStore,
	results contracts.BacktestResultStore,
	computer contracts.MetricsComputer,
	materializer *materialize.Materializer,
	log *logger.Logger,
) *Service {
	return &Service{
		files:        files,
		results:      results,
		computer:     computer,
		materializer: materializer,
		validate:     validator.New(),
		logger:       log.WithComponent("backtest"),
	}
}

// RunBacktest saves the file, computes its metrics and persists one result.
// No result is saved when the computation fails.
func (s *Service) RunBacktest(ctx context.Context, req SubmitRequest) (*contracts.BacktestResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	file, err := s.files.Save(ctx, req.Filename, req.Content)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"signal_file_id": file.ID,
		"filename":       file.Filename,
	})
	log.Info("Signal file saved")

	metrics, err := s.computeBacktest(ctx, file)
	if err != nil {
		log.WithError(err).Warn("Backtest computation failed")
		return nil, err
	}

	// persistence completes even if the client has gone away
	saved, err := s.results.Save(context.WithoutCancel(ctx), contracts.NewBacktestResult(file, metrics))
	if err != nil {
		log.WithError(err).Error("Failed to save backtest result")
		return nil, err
	}
	observability.BacktestResultsSavedTotal.Inc()

	log.WithField("result_id", saved.ID).Info("Backtest result saved")
	return saved, nil
}

func (s *Service) computeBacktest(ctx context.Context, file *contracts.SignalFile) (*contracts.Metrics, error) {
	tmp, err := s.materializer.Materialize(fileKey(file.ID), file.Content)
	if err != nil {
		return nil, err
	}
	defer tmp.Release()

	metrics, err := s.computer.Backtest(ctx, tmp.Path)
	if err != nil {
		return nil, err
	}
	if metrics == nil {
		return nil, contracts.MalformedOutputError("computation returned no metrics", "", nil)
	}
	return metrics, nil
}

// CompanyMetrics recomputes per-symbol metrics from a stored signal file.
// Nothing is persisted.
func (s *Service) CompanyMetrics(ctx context.Context, signalFileID int64) (contracts.SymbolMetrics, error) {
	file, err := s.files.Get(ctx, signalFileID)
	if err != nil {
		return nil, err
	}

	tmp, err := s.materializer.Materialize(fileKey(file.ID), file.Content)
	if err != nil {
		return nil, err
	}
	defer tmp.Release()

	metrics, err := s.computer.CompanyMetrics(ctx, tmp.Path)
	if err != nil {
		s.logger.WithError(err).WithField("signal_file_id", file.ID).Warn("Company metrics computation failed")
		return nil, err
	}
	if metrics == nil {
		metrics = contracts.SymbolMetrics{}
	}
	return metrics, nil
}

// ListResults returns every stored result in store order
func (s *Service) ListResults(ctx context.Context) ([]*contracts.BacktestResult, error) {
	return s.results.ListAll(ctx)
}

// ResultsForFile returns the run history of one signal file
func (s *Service) ResultsForFile(ctx context.Context, signalFileID int64) ([]*contracts.BacktestResult, error) {
	if _, err := s.files.Get(ctx, signalFileID); err != nil {
		return nil, err
	}
	return s.results.GetBySignalFileID(ctx, signalFileID)
}

// Dashboard lists results newest first, each classified against ranges
func (s *Service) Dashboard(ctx context.Context, ranges marker.Ranges) ([]DashboardRow, error) {
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	SortNewestFirst(results)

	rows := make([]DashboardRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, DashboardRow{
			BacktestResult: r,
			Classification: marker.Classify(ranges, r),
		})
	}
	return rows, nil
}

// SortNewestFirst orders results by descending ID
func SortNewestFirst(results []*contracts.BacktestResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ID > results[j].ID
	})
}

func (s *Service) validateRequest(req SubmitRequest) error {
	if err := s.validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			names := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				names = append(names, strings.ToLower(fe.Field()))
			}
			return contracts.ValidationError("%s is required", strings.Join(names, " and "))
		}
		return contracts.ValidationError("invalid request: %v", err)
	}

	if strings.TrimSpace(req.Filename) == "" {
		return contracts.ValidationError("filename is required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return contracts.ValidationError("content is required")
	}
	return nil
}

func fileKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
