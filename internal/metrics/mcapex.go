package metrics

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// daMultiplier scales D&A into a maintenance capex ceiling.
const daMultiplier = 1.1

var (
	mcapexCapexConcepts = []string{"CapitalExpenditures"}
	daPrimaryConcepts   = []string{"DepreciationDepletionAndAmortization"}
	daFallbackConcepts  = []string{"DepreciationFromCashFlow"}
	mcapexConcepts      = []string{"CapitalExpenditures", "DepreciationDepletionAndAmortization", "DepreciationFromCashFlow"}
)

// maintenanceCapex combines absolute capex and D&A: the lesser of capex and
// 1.1×D&A when both exist, else whichever is present.
func maintenanceCapex(capex, da *amount) (amount, string) {
	switch {
	case capex == nil && da == nil:
		return amount{}, ReasonMissingData
	case da == nil:
		return absAmount(*capex), ""
	case capex == nil:
		out := absAmount(*da)
		out.value *= daMultiplier
		return out, ""
	}
	currency, ok := currencyOf(*capex, *da)
	if !ok {
		return amount{}, ReasonCurrencyConflict
	}
	c := absAmount(*capex).value
	d := absAmount(*da).value * daMultiplier
	return amount{value: min(c, d), currency: currency, asOf: maxDate(capex.asOf, da.asOf)}, ""
}

// mcapexTTM is maintenance capex over trailing quarters.
func mcapexTTM(r *reader) (amount, string) {
	var capexPtr, daPtr *amount
	capex, capexReason := r.ttm(mcapexCapexConcepts)
	if capexReason == "" {
		capexPtr = &capex
	}
	da, daReason := r.ttm(daPrimaryConcepts)
	if daReason != "" {
		da, daReason = r.ttm(daFallbackConcepts)
	}
	if daReason == "" {
		daPtr = &da
	}
	out, reason := maintenanceCapex(capexPtr, daPtr)
	if reason == ReasonMissingData && capexReason == ReasonStaleData {
		reason = ReasonStaleData
	}
	return out, reason
}

// fyAmountMap maps FY end dates to the first concept's record for that date.
func fyAmountMap(r *reader, concepts []string) map[string]amount {
	out := make(map[string]amount)
	for _, concept := range concepts {
		for _, rec := range filterFY(r.fyFacts(concept)) {
			if _, ok := out[rec.EndDate]; !ok {
				out[rec.EndDate] = amountOf(rec)
			}
		}
	}
	return out
}

// mcapexFYPoints returns maintenance capex per fiscal year end, newest first.
// D&A prefers the primary concept per date. Currency conflicts drop the year.
func mcapexFYPoints(r *reader) []amount {
	capex := fyAmountMap(r, mcapexCapexConcepts)
	daPrimary := fyAmountMap(r, daPrimaryConcepts)
	daFallback := fyAmountMap(r, daFallbackConcepts)

	dates := make(map[string]bool)
	for _, m := range []map[string]amount{capex, daPrimary, daFallback} {
		for d := range m {
			dates[d] = true
		}
	}

	var points []amount
	for _, date := range sortedDatesDesc(dates) {
		var capexPtr, daPtr *amount
		if c, ok := capex[date]; ok {
			capexPtr = &c
		}
		if d, ok := daPrimary[date]; ok {
			daPtr = &d
		} else if d, ok := daFallback[date]; ok {
			daPtr = &d
		}
		point, reason := maintenanceCapex(capexPtr, daPtr)
		if reason != "" {
			continue
		}
		point.asOf = date
		points = append(points, point)
	}
	return points
}

type mcapexFY struct{ descriptor }

func newMcapexFY() Metric {
	return mcapexFY{descriptor{id: "mcapex_fy", concepts: mcapexConcepts}}
}

func (m mcapexFY) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	points := mcapexFYPoints(r)
	if len(points) == 0 {
		return r.none(ReasonMissingData, "no fiscal year capex or D&A")
	}
	if !r.recent(points[0].asOf, maxFYFactAge) {
		return r.none(ReasonStaleData, "latest fiscal year is stale")
	}
	return r.result(points[0].value, points[0].asOf)
}

type mcapex5Y struct{ descriptor }

func newMcapex5Y() Metric {
	return mcapex5Y{descriptor{id: "mcapex_5y", concepts: mcapexConcepts}}
}

func (m mcapex5Y) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	const years = 5
	r := newReader(ctx, env, symbol, m.id)
	points := mcapexFYPoints(r)
	if len(points) < years {
		return r.none(ReasonMissingData, "fewer than five fiscal years")
	}
	if !r.recent(points[0].asOf, maxFYFactAge) {
		return r.none(ReasonStaleData, "latest fiscal year is stale")
	}
	total, ok := sumAmounts(points[:years]...)
	if !ok {
		return r.none(ReasonCurrencyConflict, "fiscal year currencies differ")
	}
	return r.result(total.value/years, points[0].asOf)
}

type mcapexTrailing struct{ descriptor }

func newMcapexTTM() Metric {
	return mcapexTrailing{descriptor{id: "mcapex_ttm", concepts: mcapexConcepts}}
}

func (m mcapexTrailing) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	out, reason := mcapexTTM(r)
	if reason != "" {
		return r.none(reason, "trailing capex and D&A unavailable")
	}
	return r.result(out.value, out.asOf)
}
