// Package screen runs screen definitions over symbol lists.
package screen

import (
	"context"
	"fmt"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/metrics"
	"github.com/emretezel/pyvalue-sub000/internal/models"
	"github.com/emretezel/pyvalue-sub000/internal/screening"
)

// Service evaluates screens against stored metrics, computing missing ones
// on demand.
type Service struct {
	storage   interfaces.StorageManager
	evaluator *screening.Evaluator
	logger    *common.Logger
}

// NewService creates a screen service. fx may be nil.
func NewService(storage interfaces.StorageManager, registry *metrics.Registry, fx interfaces.FXRateStore, logger *common.Logger) *Service {
	env := metrics.NewEnv(storage.FactStore(), storage.MarketStore(), fx, logger)
	return &Service{
		storage:   storage,
		evaluator: screening.NewEvaluator(storage.MetricsStore(), registry, env, logger),
		logger:    logger,
	}
}

// Run evaluates def for every symbol, in input order. An empty symbol list
// screens every symbol with stored facts. A ConfigError aborts the run.
func (s *Service) Run(ctx context.Context, def *screening.Definition, symbols []string) ([]models.ScreenResult, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		var err error
		symbols, err = s.storage.FactStore().ListSymbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list symbols: %w", err)
		}
	}

	results := make([]models.ScreenResult, 0, len(symbols))
	passed := 0
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.evaluator.Result(ctx, def, symbol)
		if err != nil {
			return results, fmt.Errorf("failed to screen %s: %w", symbol, err)
		}
		if res.Passed {
			passed++
		}
		results = append(results, res)
	}

	s.logger.Info().
		Str("screen", def.Name).
		Int("symbols", len(symbols)).
		Int("passed", passed).
		Msg("Screen run finished")
	return results, nil
}

// Passing returns the symbols of results that passed.
func Passing(results []models.ScreenResult) []string {
	var out []string
	for _, r := range results {
		if r.Passed {
			out = append(out, r.Symbol)
		}
	}
	return out
}
