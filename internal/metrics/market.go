package metrics

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

var (
	grahamEquityConcepts     = []string{conceptStockholdersEquity, "StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest"}
	grahamShareConcepts      = []string{"CommonStockSharesOutstanding", "EntityCommonStockSharesOutstanding"}
	grahamGoodwillConcepts   = []string{"Goodwill"}
	grahamIntangibleConcepts = []string{"IntangibleAssetsNetExcludingGoodwill", "IntangibleAssetsNet"}
)

// marketCapIn returns the latest snapshot market cap expressed in currency.
func marketCapIn(r *reader, currency string) (float64, string) {
	snap := r.snapshot()
	if snap == nil {
		return 0, ReasonMissingData
	}
	if snap.MarketCap <= 0 {
		return 0, ReasonDomainInvalid
	}
	value, code := models.NormalizeAmount(snap.MarketCap, snap.Currency)
	converted, ok := r.convert(value, code, currency, snap.AsOf)
	if !ok {
		return 0, ReasonCurrencyConflict
	}
	return converted, ""
}

// priceIn returns the latest positive snapshot price expressed in currency.
func priceIn(r *reader, currency string) (float64, string) {
	snap := r.snapshot()
	if snap == nil {
		return 0, ReasonMissingData
	}
	if snap.Price <= 0 {
		return 0, ReasonDomainInvalid
	}
	value, code := models.NormalizeAmount(snap.Price, snap.Currency)
	converted, ok := r.convert(value, code, currency, snap.AsOf)
	if !ok {
		return 0, ReasonCurrencyConflict
	}
	return converted, ""
}

type marketCap struct{ descriptor }

func newMarketCap() Metric {
	return marketCap{descriptor{id: "market_cap"}}
}

func (m marketCap) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	snap := r.snapshot()
	if snap == nil || snap.AsOf == "" {
		return r.none(ReasonMissingData, "no market snapshot")
	}
	if snap.MarketCap <= 0 {
		return r.none(ReasonDomainInvalid, "market cap is not positive")
	}
	return r.result(snap.MarketCap, snap.AsOf)
}

type priceToFCF struct{ descriptor }

func newPriceToFCF() Metric {
	return priceToFCF{descriptor{
		id:       "price_to_fcf",
		concepts: append(append([]string{}, operatingCashFlowConcepts...), capexConcepts...),
	}}
}

func (m priceToFCF) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	fcf, reason := freeCashFlowTTM(r)
	if reason != "" {
		return r.none(reason, "trailing free cash flow unavailable")
	}
	if fcf.value <= 0 {
		return r.none(ReasonDomainInvalid, "free cash flow is not positive")
	}
	mcap, reason := marketCapIn(r, fcf.currency)
	if reason != "" {
		return r.none(reason, "market cap unavailable")
	}
	return r.result(mcap/fcf.value, fcf.asOf)
}

type earningsYield struct{ descriptor }

func newEarningsYield() Metric {
	return earningsYield{descriptor{id: "earnings_yield", concepts: epsConcepts}}
}

func (m earningsYield) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	eps, reason := epsTTMOrFY(r)
	if reason != "" {
		return r.none(reason, "EPS unavailable")
	}
	price, reason := priceIn(r, eps.currency)
	if reason != "" {
		return r.none(reason, "price unavailable")
	}
	return r.result(eps.value/price, eps.asOf)
}

type grahamMultiplier struct{ descriptor }

func newGrahamMultiplier() Metric {
	concepts := append([]string{}, epsConcepts...)
	concepts = append(concepts, grahamEquityConcepts...)
	concepts = append(concepts, grahamShareConcepts...)
	concepts = append(concepts, grahamGoodwillConcepts...)
	return grahamMultiplier{descriptor{
		id:       "graham_multiplier",
		concepts: append(concepts, grahamIntangibleConcepts...),
	}}
}

// Compute returns P/E times P/TBV, where tangible book per share excludes
// goodwill and intangibles (zero when unreported).
func (m grahamMultiplier) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	eps, reason := epsTTMOrFY(r)
	if reason != "" {
		return r.none(reason, "EPS unavailable")
	}
	if eps.value <= 0 {
		return r.none(ReasonDomainInvalid, "EPS is not positive")
	}
	equity, reason := r.latestRecent(maxFactAge, grahamEquityConcepts...)
	if reason != "" {
		return r.none(reason, "equity unavailable")
	}
	// Share counts carry no currency scaling.
	sharesRec := r.latestOf(grahamShareConcepts...)
	if sharesRec == nil {
		return r.none(ReasonMissingData, "shares outstanding unavailable")
	}
	if !r.recent(sharesRec.EndDate, maxFactAge) {
		return r.none(ReasonStaleData, "shares outstanding is stale")
	}
	shares := sharesRec.Float()
	if shares <= 0 {
		return r.none(ReasonDomainInvalid, "shares outstanding is not positive")
	}
	goodwill := r.optionalRecent(grahamGoodwillConcepts...)
	intangibles := r.optionalRecent(grahamIntangibleConcepts...)
	if _, ok := currencyOf(eps, equity, goodwill, intangibles); !ok {
		return r.none(ReasonCurrencyConflict, "EPS and book value currencies differ")
	}
	tbvps := (equity.value - goodwill.value - intangibles.value) / shares
	if tbvps <= 0 {
		return r.none(ReasonDomainInvalid, "tangible book value per share is not positive")
	}
	price, reason := priceIn(r, eps.currency)
	if reason != "" {
		return r.none(reason, "price unavailable")
	}
	return r.result((price/eps.value)*(price/tbvps), eps.asOf)
}

// optionalRecent returns the latest recent amount or zero.
func (r *reader) optionalRecent(concepts ...string) amount {
	a, reason := r.latestRecent(maxFactAge, concepts...)
	if reason != "" {
		return amount{}
	}
	return a
}
