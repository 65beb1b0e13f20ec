package metrics

import (
	"context"
	"math"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// epsConcepts is the EPS fallback chain, diluted first.
var epsConcepts = []string{
	"EarningsPerShareDiluted",
	"EarningsPerShareBasicAndDiluted",
	"EarningsPerShareBasic",
	"EarningsPerShare",
}

// epsTTMOrFY returns trailing EPS from four recent quarters, else the latest
// recent FY figure.
func epsTTMOrFY(r *reader) (amount, string) {
	ttm, reason := r.ttm(epsConcepts)
	if reason == "" {
		return ttm, ""
	}
	_, fy := r.resolveFirstAvailable(epsConcepts, atLeast(1, filterFY), models.WithFiscalPeriod(models.PeriodFY))
	if len(fy) == 0 {
		return amount{}, reason
	}
	if !r.recent(fy[0].EndDate, maxFYFactAge) {
		return amount{}, ReasonStaleData
	}
	return amountOf(fy[0]), ""
}

// uniqueFYEPS returns the unique-FY EPS series of the first concept with at
// least n records, newest first.
func uniqueFYEPS(r *reader, n int) []models.FactRecord {
	_, records := r.resolveFirstAvailable(epsConcepts, atLeast(n, filterUniqueFY), models.WithFiscalPeriod(models.PeriodFY))
	return records
}

type epsTTM struct{ descriptor }

func newEPSTTM() Metric {
	return epsTTM{descriptor{id: "eps_ttm", concepts: epsConcepts}}
}

func (m epsTTM) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	eps, reason := epsTTMOrFY(r)
	if reason != "" {
		return r.none(reason, "no recent EPS quarters or fiscal year")
	}
	return r.result(eps.value, eps.asOf)
}

type epsAverage struct{ descriptor }

func newEPSAverage() Metric {
	return epsAverage{descriptor{id: "eps_6y_avg", concepts: epsConcepts}}
}

func (m epsAverage) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	const years = 6
	r := newReader(ctx, env, symbol, m.id)
	records := uniqueFYEPS(r, years)
	if len(records) < years {
		return r.none(ReasonMissingData, "fewer than six fiscal years of EPS")
	}
	if !r.hasRecentFact(epsConcepts, maxFYFactAge) {
		return r.none(ReasonStaleData, "no recent EPS fact")
	}
	window := records[:years]
	values := make([]float64, 0, years)
	for _, rec := range window {
		if !rec.HasValue() {
			return r.none(ReasonMissingData, "EPS year without a value")
		}
		values = append(values, amountOf(rec).value)
	}
	if _, ok := sumRecords(window); !ok {
		return r.none(ReasonCurrencyConflict, "EPS currencies differ")
	}
	return r.result(mean(values), window[0].EndDate)
}

type grahamEPSCAGR struct{ descriptor }

func newGrahamEPSCAGR() Metric {
	return grahamEPSCAGR{descriptor{id: "graham_eps_10y_cagr_3y_avg", concepts: epsConcepts}}
}

// Compute returns the annualized growth between the three oldest and three
// newest years of a ten year EPS window.
func (m grahamEPSCAGR) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	const years = 10
	r := newReader(ctx, env, symbol, m.id)
	records := uniqueFYEPS(r, years)
	if len(records) < years {
		return r.none(ReasonMissingData, "fewer than ten fiscal years of EPS")
	}
	if !r.hasRecentFact(epsConcepts, maxFYFactAge) {
		return r.none(ReasonStaleData, "no recent EPS fact")
	}
	window := records[:years]
	sampled := append(append([]models.FactRecord{}, window[:3]...), window[years-3:]...)
	if _, ok := sumRecords(sampled); !ok {
		return r.none(ReasonCurrencyConflict, "EPS currencies differ")
	}
	values := make([]float64, 0, len(sampled))
	for _, rec := range sampled {
		if !rec.HasValue() || rec.Float() <= 0 {
			return r.none(ReasonDomainInvalid, "sampled EPS must be positive")
		}
		values = append(values, amountOf(rec).value)
	}
	recent, past := mean(values[:3]), mean(values[3:])
	cagr := math.Pow(recent/past, 1.0/float64(years-3)) - 1
	return r.result(cagr, window[0].EndDate)
}

type epsStreak struct{ descriptor }

func newEPSStreak() Metric {
	return epsStreak{descriptor{id: "eps_streak", concepts: epsConcepts}}
}

// Compute counts consecutive fiscal years of positive EPS, newest first. A
// non-positive or missing value or a skipped year ends the streak.
func (m epsStreak) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	records := uniqueFYEPS(r, 1)
	if len(records) == 0 {
		return r.none(ReasonMissingData, "no fiscal year EPS")
	}
	if !r.hasRecentFact(epsConcepts, maxFYFactAge) {
		return r.none(ReasonStaleData, "no recent EPS fact")
	}
	streak := 0
	prev := 0
	for i, rec := range records {
		if !rec.HasValue() || rec.Float() <= 0 {
			break
		}
		year, ok := yearOf(rec.EndDate)
		if !ok || (i > 0 && year != prev-1) {
			break
		}
		prev = year
		streak++
	}
	return r.result(float64(streak), records[0].EndDate)
}
