// Package metrics computes financial metrics from normalized facts.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// Reasons a metric yields no result. They are logged, never returned.
const (
	ReasonMissingData      = "missing_data"
	ReasonStaleData        = "stale_data"
	ReasonCurrencyConflict = "currency_conflict"
	ReasonDomainInvalid    = "domain_invalid"
)

// Metric computes one value for a symbol. Compute returns (nil, nil) when the
// stored facts cannot support a result; a non-nil error means a repository
// read failed.
type Metric interface {
	ID() string
	RequiredConcepts() []string
	Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error)
}

// Env bundles what a metric reads from. Market and FX may be nil for
// fact-only metrics; Now defaults to time.Now.
type Env struct {
	Facts  interfaces.FactRepository
	Market interfaces.MarketDataRepository
	FX     interfaces.FXRateStore
	Logger *common.Logger
	Now    func() time.Time
}

// NewEnv creates an Env with the wall clock.
func NewEnv(facts interfaces.FactRepository, market interfaces.MarketDataRepository, fx interfaces.FXRateStore, logger *common.Logger) *Env {
	return &Env{
		Facts:  facts,
		Market: market,
		FX:     fx,
		Logger: logger,
		Now:    time.Now,
	}
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// descriptor supplies ID and RequiredConcepts for embedding metrics.
type descriptor struct {
	id       string
	concepts []string
}

func (d descriptor) ID() string { return d.id }

func (d descriptor) RequiredConcepts() []string {
	out := make([]string, len(d.concepts))
	copy(out, d.concepts)
	return out
}

// reader scopes repository reads to one Compute call. The first repository
// error sticks; later reads return nothing and result/none report it.
type reader struct {
	ctx    context.Context
	env    *Env
	symbol string
	metric string
	err    error
}

func newReader(ctx context.Context, env *Env, symbol, metric string) *reader {
	return &reader{ctx: ctx, env: env, symbol: symbol, metric: metric}
}

func (r *reader) facts(concept string, opts ...models.FactOption) []models.FactRecord {
	if r.err != nil {
		return nil
	}
	records, err := r.env.Facts.FactsForConcept(r.ctx, r.symbol, concept, opts...)
	if err != nil {
		r.err = fmt.Errorf("%s: facts for %s/%s: %w", r.metric, r.symbol, concept, err)
		return nil
	}
	return records
}

func (r *reader) fyFacts(concept string) []models.FactRecord {
	return r.facts(concept, models.WithFiscalPeriod(models.PeriodFY))
}

// latest returns the newest record of concept carrying a value.
func (r *reader) latest(concept string) *models.FactRecord {
	if r.err != nil {
		return nil
	}
	rec, err := r.env.Facts.LatestFact(r.ctx, r.symbol, concept)
	if err != nil {
		r.err = fmt.Errorf("%s: latest %s/%s: %w", r.metric, r.symbol, concept, err)
		return nil
	}
	if rec == nil || !rec.HasValue() {
		return nil
	}
	return rec
}

func (r *reader) snapshot() *models.PriceSnapshot {
	if r.err != nil || r.env.Market == nil {
		return nil
	}
	snap, err := r.env.Market.LatestSnapshot(r.ctx, r.symbol)
	if err != nil {
		r.err = fmt.Errorf("%s: snapshot %s: %w", r.metric, r.symbol, err)
		return nil
	}
	return snap
}

func (r *reader) recent(endDate string, maxAgeDays int) bool {
	return common.IsRecentDate(endDate, maxAgeDays, r.env.now())
}

// convert moves value between currencies at asOf. Unknown or equal codes
// pass through unchanged.
func (r *reader) convert(value float64, from, to, asOf string) (float64, bool) {
	from = models.NormalizeCurrencyCode(from)
	to = models.NormalizeCurrencyCode(to)
	if from == "" || to == "" || from == to {
		return value, true
	}
	if r.env.FX == nil {
		return 0, false
	}
	return r.env.FX.Convert(value, from, to, asOf)
}

func (r *reader) warn(msg string) {
	if r.env.Logger == nil {
		return
	}
	r.env.Logger.Warn().Str("symbol", r.symbol).Str("metric", r.metric).Msg(msg)
}

func (r *reader) result(value float64, asOf string) (*models.MetricResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &models.MetricResult{
		Symbol:   r.symbol,
		MetricID: r.metric,
		Value:    value,
		AsOf:     asOf,
	}, nil
}

func (r *reader) none(reason, detail string) (*models.MetricResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.env.Logger != nil {
		r.env.Logger.Debug().
			Str("symbol", r.symbol).
			Str("metric", r.metric).
			Str("reason", reason).
			Msg(detail)
	}
	return nil, nil
}
