package metrics

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

var (
	operatingCashFlowConcepts = []string{
		"NetCashProvidedByUsedInOperatingActivities",
		"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
	}
	capexConcepts = []string{
		"CapitalExpenditures",
		"PaymentsToAcquirePropertyPlantAndEquipment",
		"PurchaseOfPropertyPlantAndEquipment",
		"PropertyPlantAndEquipmentAdditions",
		"PaymentsToAcquireProductiveAssets",
	}
	ebitConcepts     = []string{"OperatingIncomeLoss"}
	interestConcepts = []string{"InterestExpense"}
	ebitdaConcepts   = []string{"EBITDA"}
)

// totalDebt adds the latest recent short- and long-term debt.
func totalDebt(r *reader) (short, long amount, reason string) {
	short, reason = r.latestRecent(maxFactAge, conceptShortTermDebt)
	if reason != "" {
		return amount{}, amount{}, reason
	}
	long, reason = r.latestRecent(maxFactAge, conceptLongTermDebt)
	if reason != "" {
		return amount{}, amount{}, reason
	}
	return short, long, ""
}

// freeCashFlowTTM is trailing operating cash flow less trailing capex.
// Missing capex counts as zero.
func freeCashFlowTTM(r *reader) (amount, string) {
	ocf, reason := r.ttm(operatingCashFlowConcepts)
	if reason != "" {
		return amount{}, reason
	}
	capex, reason := r.ttm(capexConcepts)
	if reason != "" {
		r.warn("capex unavailable, treating as zero")
		return ocf, ""
	}
	if _, ok := currencyOf(ocf, capex); !ok {
		return amount{}, ReasonCurrencyConflict
	}
	fcf := ocf
	fcf.value = ocf.value - absAmount(capex).value
	fcf.asOf = maxDate(ocf.asOf, capex.asOf)
	return fcf, ""
}

type netDebtToEBITDA struct{ descriptor }

func newNetDebtToEBITDA() Metric {
	return netDebtToEBITDA{descriptor{
		id:       "net_debt_to_ebitda",
		concepts: []string{"EBITDA", conceptShortTermDebt, conceptLongTermDebt, conceptCashAndSTI},
	}}
}

func (m netDebtToEBITDA) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	ebitda, reason := r.ttm(ebitdaConcepts)
	if reason != "" {
		return r.none(reason, "trailing EBITDA unavailable")
	}
	if ebitda.value <= 0 {
		return r.none(ReasonDomainInvalid, "trailing EBITDA is not positive")
	}
	short, long, reason := totalDebt(r)
	if reason != "" {
		return r.none(reason, "debt unavailable")
	}
	cash, reason := r.latestRecent(maxFactAge, conceptCashAndSTI)
	if reason != "" {
		return r.none(reason, "cash and short-term investments unavailable")
	}
	if _, ok := currencyOf(ebitda, short, long, cash); !ok {
		return r.none(ReasonCurrencyConflict, "debt, cash and EBITDA currencies differ")
	}
	netDebt := short.value + long.value - cash.value
	return r.result(netDebt/ebitda.value, maxDate(ebitda.asOf, short.asOf, long.asOf, cash.asOf))
}

type debtPaydownYears struct{ descriptor }

func newDebtPaydownYears() Metric {
	concepts := append([]string{conceptShortTermDebt, conceptLongTermDebt}, operatingCashFlowConcepts...)
	return debtPaydownYears{descriptor{
		id:       "debt_paydown_years",
		concepts: append(concepts, capexConcepts...),
	}}
}

// Compute returns how many years of trailing free cash flow retire total debt.
func (m debtPaydownYears) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	short, long, reason := totalDebt(r)
	if reason != "" {
		return r.none(reason, "debt unavailable")
	}
	debt, ok := sumAmounts(short, long)
	if !ok {
		return r.none(ReasonCurrencyConflict, "debt currencies differ")
	}
	fcf, reason := freeCashFlowTTM(r)
	if reason != "" {
		return r.none(reason, "trailing free cash flow unavailable")
	}
	if fcf.value <= 0 {
		return r.none(ReasonDomainInvalid, "free cash flow is not positive")
	}
	if _, ok := currencyOf(debt, fcf); !ok {
		return r.none(ReasonCurrencyConflict, "debt and cash flow currencies differ")
	}
	return r.result(debt.value/fcf.value, maxDate(debt.asOf, fcf.asOf))
}

type interestCoverage struct{ descriptor }

func newInterestCoverage() Metric {
	return interestCoverage{descriptor{
		id:       "interest_coverage",
		concepts: append(append([]string{}, ebitConcepts...), interestConcepts...),
	}}
}

// Compute divides trailing EBIT by trailing interest expense over the four
// newest quarter dates both concepts report.
func (m interestCoverage) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	ebit := filterQuarterly(r.facts(ebitConcepts[0]))
	interest := byEndDate(filterQuarterly(r.facts(interestConcepts[0])))

	var ebitQ, interestQ []models.FactRecord
	for _, rec := range ebit {
		if other, ok := interest[rec.EndDate]; ok {
			ebitQ = append(ebitQ, rec)
			interestQ = append(interestQ, other)
		}
		if len(ebitQ) == 4 {
			break
		}
	}
	if len(ebitQ) < 4 {
		return r.none(ReasonMissingData, "fewer than four aligned quarters")
	}
	if !r.recent(ebitQ[0].EndDate, maxFactAge) {
		return r.none(ReasonStaleData, "latest aligned quarter is stale")
	}
	ebitTTM, ok := sumRecords(ebitQ)
	if !ok {
		return r.none(ReasonCurrencyConflict, "EBIT currencies differ")
	}
	interestTTM, ok := sumRecords(interestQ)
	if !ok {
		return r.none(ReasonCurrencyConflict, "interest currencies differ")
	}
	if _, ok := currencyOf(ebitTTM, interestTTM); !ok {
		return r.none(ReasonCurrencyConflict, "EBIT and interest currencies differ")
	}
	if ebitTTM.value <= 0 || interestTTM.value <= 0 {
		return r.none(ReasonDomainInvalid, "trailing EBIT or interest is not positive")
	}
	return r.result(ebitTTM.value/interestTTM.value, ebitQ[0].EndDate)
}
