package metrics

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// Balance sheet concepts shared across calculators.
const (
	conceptAssetsCurrent      = "AssetsCurrent"
	conceptLiabilitiesCurrent = "LiabilitiesCurrent"
	conceptShortTermDebt      = "ShortTermDebt"
	conceptLongTermDebt       = "LongTermDebt"
	conceptLongTermDebtCur    = "LongTermDebtCurrent"
	conceptCashAndSTI         = "CashAndShortTermInvestments"
	conceptStockholdersEquity = "StockholdersEquity"
)

// currentPosition reads the latest current assets and liabilities, both
// recent and in one currency.
func currentPosition(r *reader) (assets, liabilities amount, reason string) {
	assets, reason = r.latestRecent(maxFactAge, conceptAssetsCurrent)
	if reason != "" {
		return amount{}, amount{}, reason
	}
	liabilities, reason = r.latestRecent(maxFactAge, conceptLiabilitiesCurrent)
	if reason != "" {
		return amount{}, amount{}, reason
	}
	if _, ok := currencyOf(assets, liabilities); !ok {
		return amount{}, amount{}, ReasonCurrencyConflict
	}
	return assets, liabilities, ""
}

type workingCapital struct{ descriptor }

func newWorkingCapital() Metric {
	return workingCapital{descriptor{
		id:       "working_capital",
		concepts: []string{conceptAssetsCurrent, conceptLiabilitiesCurrent},
	}}
}

func (m workingCapital) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	assets, liabilities, reason := currentPosition(r)
	if reason != "" {
		return r.none(reason, "current assets or liabilities unavailable")
	}
	return r.result(assets.value-liabilities.value, maxDate(assets.asOf, liabilities.asOf))
}

type currentRatio struct{ descriptor }

func newCurrentRatio() Metric {
	return currentRatio{descriptor{
		id:       "current_ratio",
		concepts: []string{conceptAssetsCurrent, conceptLiabilitiesCurrent},
	}}
}

func (m currentRatio) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	assets, liabilities, reason := currentPosition(r)
	if reason != "" {
		return r.none(reason, "current assets or liabilities unavailable")
	}
	if liabilities.value == 0 {
		return r.none(ReasonDomainInvalid, "current liabilities are zero")
	}
	return r.result(assets.value/liabilities.value, maxDate(assets.asOf, liabilities.asOf))
}

type shortTermDebtShare struct{ descriptor }

func newShortTermDebtShare() Metric {
	return shortTermDebtShare{descriptor{
		id:       "short_term_debt_share",
		concepts: []string{conceptShortTermDebt, conceptLongTermDebt},
	}}
}

func (m shortTermDebtShare) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	short, reason := r.latestRecent(maxFactAge, conceptShortTermDebt)
	if reason != "" {
		return r.none(reason, "short-term debt unavailable")
	}
	long, reason := r.latestRecent(maxFactAge, conceptLongTermDebt)
	if reason != "" {
		return r.none(reason, "long-term debt unavailable")
	}
	total, ok := sumAmounts(short, long)
	if !ok {
		return r.none(ReasonCurrencyConflict, "debt currencies differ")
	}
	if total.value <= 0 {
		return r.none(ReasonDomainInvalid, "total debt is not positive")
	}
	return r.result(short.value/total.value, total.asOf)
}

// debtTier resolves one step of the long-term debt fallback chain.
type debtTier func(r *reader) (amount, bool)

// firstConcept takes the latest value of the first concept that has one.
func firstConcept(concepts ...string) debtTier {
	return func(r *reader) (amount, bool) {
		rec := r.latestOf(concepts...)
		if rec == nil {
			return amount{}, false
		}
		return amountOf(*rec), true
	}
}

// componentSum adds the latest value of every component reported at the
// newest component date.
func componentSum(concepts ...string) debtTier {
	return func(r *reader) (amount, bool) {
		var latest []models.FactRecord
		newest := ""
		for _, concept := range concepts {
			if rec := r.latest(concept); rec != nil {
				latest = append(latest, *rec)
				newest = maxDate(newest, rec.EndDate)
			}
		}
		var parts []models.FactRecord
		for _, rec := range latest {
			if rec.EndDate == newest {
				parts = append(parts, rec)
			}
		}
		if len(parts) == 0 {
			return amount{}, false
		}
		return sumRecords(parts)
	}
}

// plusCurrent adds the current portion when it is reported for the same date.
func plusCurrent(base debtTier, current string) debtTier {
	return func(r *reader) (amount, bool) {
		total, ok := base(r)
		if !ok {
			return amount{}, false
		}
		rec := r.latest(current)
		if rec == nil || rec.EndDate != total.asOf {
			return total, true
		}
		return sumAmounts(total, amountOf(*rec))
	}
}

var longTermDebtComponents = []string{
	"LongTermLineOfCredit",
	"CommercialPaperNoncurrent",
	"ConstructionLoanNoncurrent",
	"SecuredLongTermDebt",
	"UnsecuredLongTermDebt",
	"SubordinatedLongTermDebt",
	"ConvertibleDebtNoncurrent",
	"ConvertibleSubordinatedDebtNoncurrent",
	"LongTermNotesAndLoans",
	"LongtermFederalHomeLoanBankAdvancesNoncurrent",
	"OtherLongTermDebtNoncurrent",
}

var longTermDebtTiers = []debtTier{
	firstConcept(conceptLongTermDebt),
	plusCurrent(firstConcept("LongTermDebtNoncurrent"), conceptLongTermDebtCur),
	plusCurrent(componentSum(longTermDebtComponents...), conceptLongTermDebtCur),
	plusCurrent(firstConcept("OtherLongTermDebt"), conceptLongTermDebtCur),
	firstConcept("LongTermNotesPayable", "NotesPayable"),
	plusCurrent(
		firstConcept("LongTermDebtAndCapitalLeaseObligations", "LongTermDebtAndCapitalLeaseObligationsNoncurrent"),
		"LongTermDebtAndCapitalLeaseObligationsCurrent",
	),
	firstConcept("LongTermDebtAndCapitalLeaseObligationsIncludingCurrentMaturities"),
	plusCurrent(firstConcept("OperatingLeaseLiabilityNoncurrent"), conceptLongTermDebtCur),
}

type longTermDebt struct{ descriptor }

func newLongTermDebt() Metric {
	concepts := []string{conceptLongTermDebt, "LongTermDebtNoncurrent", conceptLongTermDebtCur}
	concepts = append(concepts, longTermDebtComponents...)
	concepts = append(concepts,
		"OtherLongTermDebt",
		"LongTermNotesPayable",
		"NotesPayable",
		"LongTermDebtAndCapitalLeaseObligations",
		"LongTermDebtAndCapitalLeaseObligationsNoncurrent",
		"LongTermDebtAndCapitalLeaseObligationsCurrent",
		"LongTermDebtAndCapitalLeaseObligationsIncludingCurrentMaturities",
		"OperatingLeaseLiabilityNoncurrent",
	)
	return longTermDebt{descriptor{id: "long_term_debt", concepts: concepts}}
}

func (m longTermDebt) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	reason := ReasonMissingData
	for _, tier := range longTermDebtTiers {
		total, ok := tier(r)
		if r.err != nil {
			break
		}
		if !ok {
			continue
		}
		if !r.recent(total.asOf, maxFactAge) {
			reason = ReasonStaleData
			continue
		}
		return r.result(total.value, total.asOf)
	}
	return r.none(reason, "no recent long-term debt figure")
}
