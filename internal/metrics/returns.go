package metrics

import (
	"context"
	"sort"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

const defaultTaxRate = 0.21

var (
	taxExpenseConcepts = []string{"IncomeTaxExpense"}
	pretaxConcepts     = []string{"IncomeBeforeIncomeTaxes"}
	rocEBITConcepts    = []string{"OperatingIncomeLoss", "IncomeFromOperations", "OperatingProfitLoss"}
	ppeConcepts        = []string{"PropertyPlantAndEquipmentNet", "NetPropertyPlantAndEquipment"}
	preferredDividends = []string{"PreferredStockDividendsAndOtherAdjustments", "PreferredStockDividends"}
)

type returnOnInvestedCapital struct{ descriptor }

func newReturnOnInvestedCapital() Metric {
	return returnOnInvestedCapital{descriptor{
		id: "return_on_invested_capital",
		concepts: []string{
			"OperatingIncomeLoss", "IncomeTaxExpense", "IncomeBeforeIncomeTaxes",
			conceptShortTermDebt, conceptLongTermDebt, conceptStockholdersEquity, conceptCashAndSTI,
		},
	}}
}

func (m returnOnInvestedCapital) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	r := newReader(ctx, env, symbol, m.id)
	ebit, reason := r.ttm(ebitConcepts)
	if reason != "" {
		return r.none(reason, "trailing EBIT unavailable")
	}
	nopat := ebit.value * (1 - effectiveTaxRate(r))
	if nopat <= 0 {
		return r.none(ReasonDomainInvalid, "NOPAT is not positive")
	}

	points := investedCapitalPoints(r, filterQuarterly, maxFactAge)
	if len(points) < 2 {
		points = investedCapitalPoints(r, filterFY, maxFYFactAge)
	}
	if len(points) < 2 {
		return r.none(ReasonMissingData, "fewer than two invested capital points")
	}
	avg := (points[0].value + points[1].value) / 2
	if avg <= 0 {
		return r.none(ReasonDomainInvalid, "average invested capital is not positive")
	}
	if _, ok := currencyOf(ebit, points[0], points[1]); !ok {
		return r.none(ReasonCurrencyConflict, "EBIT and capital currencies differ")
	}
	return r.result(nopat/avg, maxDate(ebit.asOf, points[0].asOf))
}

// effectiveTaxRate is trailing tax over trailing pretax income, falling back
// to the statutory default when either is unusable or the rate leaves [0, 1].
func effectiveTaxRate(r *reader) float64 {
	tax, reason := r.ttm(taxExpenseConcepts)
	if reason != "" {
		return defaultTaxRate
	}
	pretax, reason := r.ttm(pretaxConcepts)
	if reason != "" || pretax.value <= 0 {
		return defaultTaxRate
	}
	if _, ok := currencyOf(tax, pretax); !ok {
		return defaultTaxRate
	}
	rate := tax.value / pretax.value
	if rate < 0 || rate > 1 {
		return defaultTaxRate
	}
	return rate
}

// investedCapitalPoints returns debt plus equity less cash at every date all
// four inputs report, newest first, stopping at the first stale date.
func investedCapitalPoints(r *reader, filter func([]models.FactRecord) []models.FactRecord, maxAgeDays int) []amount {
	short := filter(r.facts(conceptShortTermDebt))
	long := byEndDate(filter(r.facts(conceptLongTermDebt)))
	equity := byEndDate(filter(r.facts(conceptStockholdersEquity)))
	cash := byEndDate(filter(r.facts(conceptCashAndSTI)))

	var points []amount
	for _, s := range short {
		l, okL := long[s.EndDate]
		e, okE := equity[s.EndDate]
		c, okC := cash[s.EndDate]
		if !okL || !okE || !okC {
			continue
		}
		if !r.recent(s.EndDate, maxAgeDays) {
			break
		}
		sa, la, ea, ca := amountOf(s), amountOf(l), amountOf(e), amountOf(c)
		currency, ok := currencyOf(sa, la, ea, ca)
		if !ok {
			continue
		}
		points = append(points, amount{
			value:    sa.value + la.value + ea.value - ca.value,
			currency: currency,
			asOf:     s.EndDate,
		})
	}
	return points
}

type rocGreenblatt struct{ descriptor }

func newROCGreenblatt() Metric {
	concepts := append([]string{}, rocEBITConcepts...)
	concepts = append(concepts, ppeConcepts...)
	return rocGreenblatt{descriptor{
		id:       "roc_greenblatt_5y_avg",
		concepts: append(concepts, conceptAssetsCurrent, conceptLiabilitiesCurrent),
	}}
}

// Compute averages EBIT over tangible capital (PP&E plus current assets less
// current liabilities) for up to five recent fiscal years.
func (m rocGreenblatt) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	const maxYears = 5
	r := newReader(ctx, env, symbol, m.id)
	_, ebit := r.resolveFirstAvailable(rocEBITConcepts, atLeast(1, filterFY), models.WithFiscalPeriod(models.PeriodFY))
	_, ppe := r.resolveFirstAvailable(ppeConcepts, atLeast(1, filterFY), models.WithFiscalPeriod(models.PeriodFY))
	if len(ebit) == 0 || len(ppe) == 0 {
		return r.none(ReasonMissingData, "fiscal year EBIT or PP&E missing")
	}
	if !r.hasRecentFact(rocEBITConcepts, maxFYFactAge) {
		return r.none(ReasonStaleData, "no recent EBIT fact")
	}
	ppeByDate := byEndDate(ppe)
	assets := byEndDate(filterFY(r.fyFacts(conceptAssetsCurrent)))
	liabilities := byEndDate(filterFY(r.fyFacts(conceptLiabilitiesCurrent)))

	var values []float64
	asOf := ""
	for _, rec := range ebit {
		p, okP := ppeByDate[rec.EndDate]
		a, okA := assets[rec.EndDate]
		l, okL := liabilities[rec.EndDate]
		if !okP || !okA || !okL {
			continue
		}
		ea, pa, aa, la := amountOf(rec), amountOf(p), amountOf(a), amountOf(l)
		if _, ok := currencyOf(ea, pa, aa, la); !ok {
			continue
		}
		tangible := pa.value + aa.value - la.value
		if tangible <= 0 {
			continue
		}
		if asOf == "" {
			asOf = rec.EndDate
		}
		values = append(values, ea.value/tangible)
		if len(values) == maxYears {
			break
		}
	}
	if len(values) == 0 {
		return r.none(ReasonMissingData, "no fiscal year with positive tangible capital")
	}
	return r.result(mean(values), asOf)
}

type roeGreenblatt struct{ descriptor }

func newROEGreenblatt() Metric {
	return roeGreenblatt{descriptor{
		id: "roe_greenblatt_5y_avg",
		concepts: []string{
			"NetIncomeLossAvailableToCommonStockholdersBasic", "NetIncomeLoss",
			"PreferredStockDividendsAndOtherAdjustments", "PreferredStockDividends",
			"CommonStockholdersEquity", conceptStockholdersEquity, "PreferredStock",
		},
	}}
}

// Compute averages net income over mean common equity for up to five years.
// Years pair by calendar year arithmetic on end_date, so year y income uses
// equity at y and y-1.
func (m roeGreenblatt) Compute(ctx context.Context, symbol string, env *Env) (*models.MetricResult, error) {
	const maxYears = 5
	r := newReader(ctx, env, symbol, m.id)
	income := commonIncome(r)
	equity := commonEquity(r)
	if len(income) < 2 || len(equity) < 2 {
		return r.none(ReasonMissingData, "fewer than two years of income or equity")
	}
	if !r.hasRecentFact([]string{"NetIncomeLossAvailableToCommonStockholdersBasic", "NetIncomeLoss"}, maxFYFactAge) {
		return r.none(ReasonStaleData, "no recent income fact")
	}

	incomeByYear := byYear(income)
	equityByYear := byYear(equity)
	years := make([]int, 0, len(incomeByYear))
	for y := range incomeByYear {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	var values []float64
	asOf := ""
	for _, y := range years {
		cur, okC := equityByYear[y]
		prev, okP := equityByYear[y-1]
		if !okC || !okP {
			continue
		}
		ni := incomeByYear[y]
		if _, ok := currencyOf(ni, cur, prev); !ok {
			continue
		}
		avg := (cur.value + prev.value) / 2
		if avg == 0 {
			continue
		}
		if asOf == "" {
			asOf = ni.asOf
		}
		values = append(values, ni.value/avg)
		if len(values) == maxYears {
			break
		}
	}
	if len(values) == 0 {
		return r.none(ReasonMissingData, "no matched income and equity years")
	}
	return r.result(mean(values), asOf)
}

// commonIncome returns FY income available to common holders, deriving it
// from net income less the latest preferred dividends when absent.
func commonIncome(r *reader) []amount {
	if direct := filterFY(r.fyFacts("NetIncomeLossAvailableToCommonStockholdersBasic")); len(direct) >= 2 {
		return amountsOf(direct)
	}
	net := amountsOf(filterFY(r.fyFacts("NetIncomeLoss")))
	if pref := r.latestOf(preferredDividends...); pref != nil {
		p := amountOf(*pref)
		for i := range net {
			net[i].value -= p.value
		}
	}
	return net
}

// commonEquity returns FY common equity, deriving it from total equity less
// the latest preferred stock when absent.
func commonEquity(r *reader) []amount {
	if direct := filterFY(r.fyFacts("CommonStockholdersEquity")); len(direct) >= 2 {
		return amountsOf(direct)
	}
	total := amountsOf(filterFY(r.fyFacts(conceptStockholdersEquity)))
	if pref := r.latest("PreferredStock"); pref != nil {
		p := amountOf(*pref)
		for i := range total {
			total[i].value -= p.value
		}
	}
	return total
}

func amountsOf(records []models.FactRecord) []amount {
	out := make([]amount, len(records))
	for i, rec := range records {
		out[i] = amountOf(rec)
	}
	return out
}

// byYear keys amounts by end_date year; later entries overwrite earlier ones.
func byYear(amounts []amount) map[int]amount {
	out := make(map[int]amount, len(amounts))
	for _, a := range amounts {
		if y, ok := yearOf(a.asOf); ok {
			out[y] = a
		}
	}
	return out
}
