package screening

import (
	"context"
	"fmt"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/metrics"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// Evaluator resolves terms from the metrics repository. When a metric was
// never stored and a registry and Env are configured, it is computed, stored
// and used.
type Evaluator struct {
	store    interfaces.MetricsRepository
	registry *metrics.Registry
	env      *metrics.Env
	logger   *common.Logger
}

// NewEvaluator creates an Evaluator. registry and env may be nil to disable
// on-demand computation.
func NewEvaluator(store interfaces.MetricsRepository, registry *metrics.Registry, env *metrics.Env, logger *common.Logger) *Evaluator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Evaluator{store: store, registry: registry, env: env, logger: logger}
}

// Evaluate reports whether symbol passes every criterion of def. It stops at
// the first failing criterion.
func (e *Evaluator) Evaluate(ctx context.Context, def *Definition, symbol string) (bool, error) {
	for _, c := range def.Criteria {
		ok, err := e.EvaluateCriterion(ctx, c, symbol)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// EvaluateCriterion resolves both terms and compares them. A term without a
// value makes the criterion false; an unsupported operator is a ConfigError.
func (e *Evaluator) EvaluateCriterion(ctx context.Context, c Criterion, symbol string) (bool, error) {
	outcome, err := e.Outcome(ctx, c, symbol)
	if err != nil {
		return false, err
	}
	return outcome.Passed, nil
}

// Outcome evaluates c and records the resolved operands. Left or Right stay
// nil when the term had no value.
func (e *Evaluator) Outcome(ctx context.Context, c Criterion, symbol string) (models.CriterionOutcome, error) {
	outcome := models.CriterionOutcome{Name: c.Name}
	if !supportedOperator(c.Operator) {
		return outcome, &ConfigError{Err: fmt.Errorf("unsupported operator %q in criterion %q", c.Operator, c.Name)}
	}
	lhs, okL, err := e.resolve(ctx, c.Left, symbol)
	if err != nil {
		return outcome, err
	}
	rhs, okR, err := e.resolve(ctx, c.Right, symbol)
	if err != nil {
		return outcome, err
	}
	if okL {
		outcome.Left = &lhs
	}
	if okR {
		rhs *= c.Right.Scale()
		outcome.Right = &rhs
	}
	if !okL || !okR {
		return outcome, nil
	}
	outcome.Passed = compare(c.Operator, lhs, rhs)
	e.logger.Debug().
		Str("symbol", symbol).
		Str("criterion", c.Name).
		Float64("left", lhs).
		Str("operator", c.Operator).
		Float64("right", rhs).
		Bool("pass", outcome.Passed).
		Msg("Criterion evaluated")
	return outcome, nil
}

// Result evaluates every criterion of def for symbol, without stopping at
// the first failure.
func (e *Evaluator) Result(ctx context.Context, def *Definition, symbol string) (models.ScreenResult, error) {
	result := models.ScreenResult{Symbol: symbol, Passed: true, Outcomes: make([]models.CriterionOutcome, 0, len(def.Criteria))}
	for _, c := range def.Criteria {
		outcome, err := e.Outcome(ctx, c, symbol)
		if err != nil {
			return result, err
		}
		result.Outcomes = append(result.Outcomes, outcome)
		result.Passed = result.Passed && outcome.Passed
	}
	return result, nil
}

// resolve returns a term's value before the right-hand multiplier is applied.
func (e *Evaluator) resolve(ctx context.Context, t Term, symbol string) (float64, bool, error) {
	if t.Value != nil {
		return *t.Value, true, nil
	}
	rec, err := e.store.Fetch(ctx, symbol, t.Metric)
	if err != nil {
		return 0, false, fmt.Errorf("failed to fetch %s for %s: %w", t.Metric, symbol, err)
	}
	if rec != nil {
		return rec.Value, true, nil
	}
	value, ok, err := e.computeOnDemand(ctx, t.Metric, symbol)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		e.logger.Warn().Str("symbol", symbol).Str("metric", t.Metric).Msg("Metric value unavailable")
	}
	return value, ok, nil
}

func (e *Evaluator) computeOnDemand(ctx context.Context, metricID, symbol string) (float64, bool, error) {
	if e.registry == nil || e.env == nil {
		return 0, false, nil
	}
	m, ok := e.registry.Get(metricID)
	if !ok {
		return 0, false, nil
	}
	res, err := m.Compute(ctx, symbol, e.env)
	if err != nil {
		return 0, false, fmt.Errorf("failed to compute %s for %s: %w", metricID, symbol, err)
	}
	if res == nil {
		return 0, false, nil
	}
	if err := e.store.Upsert(ctx, res.Symbol, res.MetricID, res.Value, res.AsOf); err != nil {
		return 0, false, fmt.Errorf("failed to store %s for %s: %w", metricID, symbol, err)
	}
	return res.Value, true, nil
}

func supportedOperator(op string) bool {
	switch op {
	case OpLessEqual, OpGreaterEqual, OpLess, OpGreater, OpEqual:
		return true
	}
	return false
}

func compare(op string, lhs, rhs float64) bool {
	switch op {
	case OpLessEqual:
		return lhs <= rhs
	case OpGreaterEqual:
		return lhs >= rhs
	case OpLess:
		return lhs < rhs
	case OpGreater:
		return lhs > rhs
	case OpEqual:
		return lhs == rhs
	}
	return false
}
