package metrics

import (
	"context"
	"sort"
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

var nwcConcepts = []string{
	conceptAssetsCurrent,
	conceptLiabilitiesCurrent,
	conceptCashAndSTI,
	"CashAndCashEquivalents",
	"ShortTermInvestments",
	conceptShortTermDebt,
}

type periodKey struct {
	endDate string
	period  string
}

// nwcPoint is net working capital at one balance sheet date.
type nwcPoint struct {
	amount
	period string
}

func quarterlyPeriod(p string) bool {
	switch p {
	case models.PeriodQ1, models.PeriodQ2, models.PeriodQ3, models.PeriodQ4:
		return true
	}
	return false
}

func fyPeriod(p string) bool { return p == models.PeriodFY }

// periodMap indexes valued records by (end date, period); first wins.
func periodMap(records []models.FactRecord, accept func(string) bool) map[periodKey]models.FactRecord {
	out := make(map[periodKey]models.FactRecord)
	for _, rec := range records {
		period := strings.ToUpper(rec.FiscalPeriod)
		if !accept(period) || !rec.HasValue() {
			continue
		}
		key := periodKey{endDate: rec.EndDate, period: period}
		if _, ok := out[key]; !ok {
			out[key] = rec
		}
	}
	return out
}

// nwcPoints computes (AC − cash) − max(LC − STD, 0) for every key reporting
// both current assets and liabilities, newest first.
func nwcPoints(r *reader, accept func(string) bool) []nwcPoint {
	assets := periodMap(r.facts(conceptAssetsCurrent), accept)
	liabilities := periodMap(r.facts(conceptLiabilitiesCurrent), accept)
	cashPrimary := periodMap(r.facts(conceptCashAndSTI), accept)
	cashEq := periodMap(r.facts("CashAndCashEquivalents"), accept)
	sti := periodMap(r.facts("ShortTermInvestments"), accept)
	std := periodMap(r.facts(conceptShortTermDebt), accept)

	keys := make([]periodKey, 0, len(assets))
	for key := range assets {
		if _, ok := liabilities[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].endDate != keys[j].endDate {
			return keys[i].endDate > keys[j].endDate
		}
		return keys[i].period > keys[j].period
	})

	var points []nwcPoint
	for _, key := range keys {
		cash, ok := cashAt(key, cashPrimary, cashEq, sti)
		if !ok {
			continue
		}
		parts := []amount{amountOf(assets[key]), amountOf(liabilities[key]), cash}
		debt := 0.0
		if rec, ok := std[key]; ok {
			d := amountOf(rec)
			debt = d.value
			parts = append(parts, d)
		}
		currency, ok := currencyOf(parts...)
		if !ok {
			r.warn("net working capital currency mismatch at " + key.endDate)
			continue
		}
		adjusted := max(parts[1].value-debt, 0)
		points = append(points, nwcPoint{
			amount: amount{
				value:    (parts[0].value - cash.value) - adjusted,
				currency: currency,
				asOf:     key.endDate,
			},
			period: key.period,
		})
	}
	return points
}

// cashAt prefers cash and short-term investments, else cash equivalents plus
// short-term investments. Neither present skips the date.
func cashAt(key periodKey, primary, equivalents, investments map[periodKey]models.FactRecord) (amount, bool) {
	if rec, ok := primary[key]; ok {
		return amountOf(rec), true
	}
	var parts []amount
	if rec, ok := equivalents[key]; ok {
		parts = append(parts, amountOf(rec))
	}
	if rec, ok := investments[key]; ok {
		parts = append(parts, amountOf(rec))
	}
	if len(parts) == 0 {
		return amount{}, false
	}
	return sumAmounts(parts...)
}

// latestNWC returns the newest point when it is recent.
func latestNWC(r *reader, points []nwcPoint, maxAgeDays int) (nwcPoint, string) {
	if len(points) == 0 {
		return nwcPoint{}, ReasonMissingData
	}
	if !r.recent(points[0].asOf, maxAgeDays) {
		return nwcPoint{}, ReasonStaleData
	}
	return points[0], ""
}

// priorYear finds the first later point one calendar year before latest,
// optionally with the same fiscal period.
func priorYear(points []nwcPoint, latest nwcPoint, samePeriod bool) (nwcPoint, bool) {
	year, ok := yearOf(latest.asOf)
	if !ok {
		return nwcPoint{}, false
	}
	for _, p := range points[1:] {
		y, ok := yearOf(p.asOf)
		if !ok || y != year-1 {
			continue
		}
		if samePeriod && p.period != latest.period {
			continue
		}
		return p, true
	}
	return nwcPoint{}, false
}

type nwcMostRecentQuarter struct{ descriptor }

func newNWCMostRecentQuarter() Metric {
	return nwcMostRecentQuarter{descriptor{id: "nwc_mqr", concepts: nwcConcepts}}
}

func (m nwcMostRecentQuarter) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	latest, reason := latestNWC(r, nwcPoints(r, quarterlyPeriod), maxFactAge)
	if reason != "" {
		return r.none(reason, "no recent quarterly working capital")
	}
	return r.result(latest.value, latest.asOf)
}

type nwcFY struct{ descriptor }

func newNWCFY() Metric {
	return nwcFY{descriptor{id: "nwc_fy", concepts: nwcConcepts}}
}

func (m nwcFY) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	latest, reason := latestNWC(r, nwcPoints(r, fyPeriod), maxFYFactAge)
	if reason != "" {
		return r.none(reason, "no recent fiscal year working capital")
	}
	return r.result(latest.value, latest.asOf)
}

type deltaNWC struct {
	descriptor
	accept     func(string) bool
	maxAge     int
	samePeriod bool
}

func newDeltaNWCTTM() Metric {
	return deltaNWC{
		descriptor: descriptor{id: "delta_nwc_ttm", concepts: nwcConcepts},
		accept:     quarterlyPeriod,
		maxAge:     maxFactAge,
		samePeriod: true,
	}
}

func newDeltaNWCFY() Metric {
	return deltaNWC{
		descriptor: descriptor{id: "delta_nwc_fy", concepts: nwcConcepts},
		accept:     fyPeriod,
		maxAge:     maxFYFactAge,
	}
}

// Compute returns the change in working capital against the same period a
// calendar year earlier.
func (m deltaNWC) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	points := nwcPoints(r, m.accept)
	latest, reason := latestNWC(r, points, m.maxAge)
	if reason != "" {
		return r.none(reason, "no recent working capital point")
	}
	prior, ok := priorYear(points, latest, m.samePeriod)
	if !ok {
		return r.none(ReasonMissingData, "no prior-year working capital point")
	}
	if _, ok := currencyOf(latest.amount, prior.amount); !ok {
		return r.none(ReasonCurrencyConflict, "working capital currencies differ across years")
	}
	return r.result(latest.value-prior.value, latest.asOf)
}

// deltaNWCMaint is the floored average of the last three year-over-year FY
// working capital changes. It needs four consecutive fiscal years.
func deltaNWCMaint(r *reader) (amount, string) {
	points := nwcPoints(r, fyPeriod)
	latest, reason := latestNWC(r, points, maxFYFactAge)
	if reason != "" {
		return amount{}, reason
	}
	years := make(map[int]nwcPoint)
	for _, p := range points {
		if y, ok := yearOf(p.asOf); ok {
			if _, seen := years[y]; !seen {
				years[y] = p
			}
		}
	}
	top, _ := yearOf(latest.asOf)
	series := make([]amount, 0, 4)
	for y := top; y > top-4; y-- {
		p, ok := years[y]
		if !ok {
			return amount{}, ReasonMissingData
		}
		series = append(series, p.amount)
	}
	currency, ok := currencyOf(series...)
	if !ok {
		return amount{}, ReasonCurrencyConflict
	}
	deltas := []float64{
		series[0].value - series[1].value,
		series[1].value - series[2].value,
		series[2].value - series[3].value,
	}
	return amount{value: max(mean(deltas), 0), currency: currency, asOf: latest.asOf}, ""
}

type deltaNWCMaintenance struct{ descriptor }

func newDeltaNWCMaint() Metric {
	return deltaNWCMaintenance{descriptor{id: "delta_nwc_maint", concepts: nwcConcepts}}
}

func (m deltaNWCMaintenance) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	out, reason := deltaNWCMaint(r)
	if reason != "" {
		return r.none(reason, "maintenance working capital change unavailable")
	}
	return r.result(out.value, out.asOf)
}
