package metrics

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

var netIncomeConcepts = []string{"NetIncomeLoss", "NetIncomeLossAvailableToCommonStockholdersBasic"}

var ownerEarningsConcepts = func() []string {
	out := append([]string{}, netIncomeConcepts...)
	out = append(out, mcapexConcepts...)
	return append(out, nwcConcepts...)
}()

// ownerEarningsTTM is trailing net income plus D&A less maintenance capex
// and the maintenance working capital change.
func ownerEarningsTTM(r *reader) (amount, string) {
	dnm, reason := deltaNWCMaint(r)
	if reason != "" {
		return amount{}, reason
	}
	ni, reason := r.ttm(netIncomeConcepts)
	if reason != "" {
		return amount{}, reason
	}
	da, daReason := r.ttm(daPrimaryConcepts)
	if daReason != "" {
		da, daReason = r.ttm(daFallbackConcepts)
	}
	mcapex, reason := mcapexTTM(r)
	if reason != "" {
		return amount{}, reason
	}

	parts := []amount{ni, mcapex, dnm}
	daValue := 0.0
	if daReason == "" {
		parts = append(parts, da)
		daValue = da.value
	}
	currency, ok := currencyOf(parts...)
	if !ok {
		return amount{}, ReasonCurrencyConflict
	}
	asOf := ""
	for _, p := range parts {
		asOf = maxDate(asOf, p.asOf)
	}
	return amount{
		value:    ni.value + daValue - mcapex.value - dnm.value,
		currency: currency,
		asOf:     asOf,
	}, ""
}

// ownerEarnings5Y averages the five newest fiscal year owner earnings points.
func ownerEarnings5Y(r *reader) (amount, string) {
	const years = 5
	dnm, reason := deltaNWCMaint(r)
	if reason != "" {
		return amount{}, reason
	}
	ni := fyAmountMap(r, netIncomeConcepts)
	da := fyAmountMap(r, append(append([]string{}, daPrimaryConcepts...), daFallbackConcepts...))
	mcapex := make(map[string]amount)
	for _, p := range mcapexFYPoints(r) {
		mcapex[p.asOf] = p
	}

	var points []amount
	conflict := false
	for _, date := range sortedDatesDesc(ni) {
		m, ok := mcapex[date]
		if !ok {
			continue
		}
		parts := []amount{ni[date], m, dnm}
		daValue := 0.0
		if d, ok := da[date]; ok {
			parts = append(parts, d)
			daValue = d.value
		}
		currency, ok := currencyOf(parts...)
		if !ok {
			conflict = true
			continue
		}
		points = append(points, amount{
			value:    ni[date].value + daValue - m.value - dnm.value,
			currency: currency,
			asOf:     date,
		})
	}
	if len(points) < years {
		if conflict {
			return amount{}, ReasonCurrencyConflict
		}
		return amount{}, ReasonMissingData
	}
	if !r.recent(points[0].asOf, maxFYFactAge) {
		return amount{}, ReasonStaleData
	}
	total, ok := sumAmounts(points[:years]...)
	if !ok {
		return amount{}, ReasonCurrencyConflict
	}
	return amount{value: total.value / years, currency: total.currency, asOf: points[0].asOf}, ""
}

type ownerEarningsEquityTTM struct{ descriptor }

func newOwnerEarningsEquityTTM() Metric {
	return ownerEarningsEquityTTM{descriptor{id: "oe_equity_ttm", concepts: ownerEarningsConcepts}}
}

func (m ownerEarningsEquityTTM) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	oe, reason := ownerEarningsTTM(r)
	if reason != "" {
		return r.none(reason, "trailing owner earnings unavailable")
	}
	return r.result(oe.value, oe.asOf)
}

type ownerEarningsEquity5Y struct{ descriptor }

func newOwnerEarningsEquity5Y() Metric {
	return ownerEarningsEquity5Y{descriptor{id: "oe_equity_5y_avg", concepts: ownerEarningsConcepts}}
}

func (m ownerEarningsEquity5Y) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	oe, reason := ownerEarnings5Y(r)
	if reason != "" {
		return r.none(reason, "five year owner earnings unavailable")
	}
	return r.result(oe.value, oe.asOf)
}

type ownerEarningsYield struct {
	descriptor
	numerator func(r *reader) (amount, string)
}

func newOwnerEarningsYield() Metric {
	return ownerEarningsYield{
		descriptor: descriptor{id: "oey_equity", concepts: ownerEarningsConcepts},
		numerator:  ownerEarningsTTM,
	}
}

func newOwnerEarningsYield5Y() Metric {
	return ownerEarningsYield{
		descriptor: descriptor{id: "oey_equity_5y", concepts: ownerEarningsConcepts},
		numerator:  ownerEarnings5Y,
	}
}

// Compute divides owner earnings by market cap converted into the owner
// earnings currency. Negative yields are reported as is.
func (m ownerEarningsYield) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	oe, reason := m.numerator(r)
	if reason != "" {
		return r.none(reason, "owner earnings unavailable")
	}
	marketCap, reason := marketCapIn(r, oe.currency)
	if reason != "" {
		return r.none(reason, "market cap unavailable")
	}
	return r.result(oe.value/marketCap, oe.asOf)
}
