// Package compute runs metric calculators over symbols with a bounded
// worker pool and persists the results.
package compute

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/metrics"
)

// Service implements interfaces.ComputeService.
type Service struct {
	storage  interfaces.StorageManager
	registry *metrics.Registry
	fx       interfaces.FXRateStore
	workers  int
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a compute service. fx may be nil; metrics needing a
// currency conversion then report a currency conflict.
func NewService(storage interfaces.StorageManager, registry *metrics.Registry, fx interfaces.FXRateStore, workers int, logger *common.Logger) *Service {
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		storage:  storage,
		registry: registry,
		fx:       fx,
		workers:  workers,
		logger:   logger,
		now:      time.Now,
	}
}

type counters struct {
	computed atomic.Int64
	skipped  atomic.Int64
	failed   atomic.Int64
}

// Run computes req.MetricIDs (all metrics when empty) for req.Symbols (every
// symbol with stored facts when empty). Individual metric failures are
// counted, not returned.
func (s *Service) Run(ctx context.Context, req interfaces.ComputeRequest) (*interfaces.RunSummary, error) {
	selected, err := s.registry.Select(req.MetricIDs)
	if err != nil {
		return nil, err
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols, err = s.storage.FactStore().ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list symbols: %w", err)
		}
	}

	runID := uuid.New().String()
	logger := s.logger.WithCorrelationId(runID)
	env := &metrics.Env{
		Facts:  s.storage.FactStore(),
		Market: s.storage.MarketStore(),
		FX:     s.fx,
		Logger: logger,
		Now:    s.now,
	}

	logger.Info().
		Str("run_id", runID).
		Int("symbols", len(symbols)).
		Int("metrics", len(selected)).
		Int("workers", s.workers).
		Msg("Compute run started")
	start := time.Now()

	var c counters
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				s.computeSymbol(ctx, env, logger, symbol, selected, &c)
			}
		}()
	}

feed:
	for _, symbol := range symbols {
		select {
		case jobs <- symbol:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	summary := &interfaces.RunSummary{
		RunID:    runID,
		Symbols:  len(symbols),
		Computed: int(c.computed.Load()),
		Skipped:  int(c.skipped.Load()),
		Failed:   int(c.failed.Load()),
	}
	logger.Info().
		Str("run_id", runID).
		Int("computed", summary.Computed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Compute run finished")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (s *Service) computeSymbol(ctx context.Context, env *metrics.Env, logger *common.Logger, symbol string, selected []metrics.Metric, c *counters) {
	defer func() {
		if r := recover(); r != nil {
			c.failed.Add(1)
			logger.Error().
				Str("symbol", symbol).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic while computing metrics")
		}
	}()

	for _, m := range selected {
		if ctx.Err() != nil {
			return
		}
		res, err := m.Compute(ctx, symbol, env)
		if err != nil {
			c.failed.Add(1)
			logger.Warn().Str("symbol", symbol).Str("metric", m.ID()).Err(err).Msg("Metric computation failed")
			continue
		}
		if res == nil {
			c.skipped.Add(1)
			continue
		}
		if err := s.storage.MetricsStore().Upsert(ctx, res.Symbol, res.MetricID, res.Value, res.AsOf); err != nil {
			c.failed.Add(1)
			logger.Warn().Str("symbol", symbol).Str("metric", m.ID()).Err(err).Msg("Failed to store metric")
			continue
		}
		c.computed.Add(1)
	}
}

var _ interfaces.ComputeService = (*Service)(nil)
