package normalization

import (
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// entryDerivation computes a concept from other fields of the same row.
type entryDerivation func(entry map[string]any) (float64, bool)

// statementDerivations apply when no alias of the concept is present.
// LongTermDebt has no derivation: it never comes from shortLongTermDebtTotal
// or from total minus current liabilities.
var statementDerivations = map[string]entryDerivation{
	"AssetsCurrent":                              deriveCurrentAssets,
	"LiabilitiesCurrent":                         deriveCurrentLiabilities,
	"PropertyPlantAndEquipmentNet":               deriveNetPPE,
	"OperatingIncomeLoss":                        deriveOperatingIncome,
	"CapitalExpenditures":                        deriveCapex,
	"NetCashProvidedByUsedInOperatingActivities": deriveOperatingCashFlow,
}

func nonNegative(v float64) (float64, bool) {
	return v, v >= 0
}

// deriveCurrentAssets uses total − noncurrent, else the sum of the cash,
// investment, receivable, inventory and other current buckets.
func deriveCurrentAssets(entry map[string]any) (float64, bool) {
	total, okT := extractValue(entry, "totalAssets")
	noncurrent, okN := extractValue(entry, "nonCurrentAssetsTotal")
	if okT && okN {
		if v, ok := nonNegative(total - noncurrent); ok {
			return v, true
		}
	}

	var parts []string
	if _, ok := extractValue(entry, "cashAndShortTermInvestments"); ok {
		parts = []string{"cashAndShortTermInvestments"}
	} else {
		parts = []string{"shortTermInvestments", "cashAndEquivalents|cash"}
	}
	parts = append(parts, "netReceivables", "inventory", "otherCurrentAssets")
	return sumPresent(entry, parts)
}

// deriveCurrentLiabilities uses total − noncurrent, else the sum of the
// payable, deferred revenue and short-term debt buckets.
func deriveCurrentLiabilities(entry map[string]any) (float64, bool) {
	total, okT := extractValue(entry, "totalLiabilities", "totalLiab")
	noncurrent, okN := extractValue(entry, "nonCurrentLiabilitiesTotal")
	if okT && okN {
		if v, ok := nonNegative(total - noncurrent); ok {
			return v, true
		}
	}
	return sumPresent(entry, []string{
		"accountsPayable", "otherCurrentLiab", "currentDeferredRevenue", "shortTermDebt|shortLongTermDebt",
	})
}

// sumPresent adds the fields that are present; "a|b" reads a, else b. It
// fails when none is present.
func sumPresent(entry map[string]any, fields []string) (float64, bool) {
	total, found := 0.0, false
	for _, f := range fields {
		if v, ok := extractValue(entry, strings.Split(f, "|")...); ok {
			total += v
			found = true
		}
	}
	return total, found
}

func deriveNetPPE(entry map[string]any) (float64, bool) {
	gross, okG := extractValue(entry, "propertyPlantAndEquipmentGross")
	accumulated, okA := extractValue(entry, "accumulatedDepreciation")
	if !okG || !okA {
		return 0, false
	}
	return nonNegative(gross - accumulated)
}

// deriveOperatingIncome uses pretax income + interest expense − interest
// income, else revenue − operating expenses.
func deriveOperatingIncome(entry map[string]any) (float64, bool) {
	pretax, okP := extractValue(entry, "incomeBeforeTax")
	interest, okI := extractValue(entry, "interestExpense")
	if okP && okI {
		income, _ := extractValue(entry, "interestIncome")
		return pretax + interest - income, true
	}
	revenue, okR := extractValue(entry, "totalRevenue")
	opex, okO := extractValue(entry, "totalOperatingExpenses")
	if okR && okO {
		return revenue - opex, true
	}
	return 0, false
}

func deriveCapex(entry map[string]any) (float64, bool) {
	ocf, okO := extractValue(entry, "totalCashFromOperatingActivities")
	fcf, okF := extractValue(entry, "freeCashFlow")
	if !okO || !okF {
		return 0, false
	}
	return ocf - fcf, true
}

func deriveOperatingCashFlow(entry map[string]any) (float64, bool) {
	fcf, okF := extractValue(entry, "freeCashFlow")
	capex, okC := extractValue(entry, "capitalExpenditures", "capex")
	if !okF || !okC {
		return 0, false
	}
	return fcf + capex, true
}

// aliasOf copies base under a new concept and value.
func aliasOf(base models.FactRecord, concept string, value float64) models.FactRecord {
	rec := base
	rec.Concept = concept
	rec.Value = models.Float64Ptr(value)
	return rec
}

// deriveEODHD fills the canonical concepts the statements left empty. Each
// step sees the output of the previous ones.
func deriveEODHD(records []models.FactRecord) []models.FactRecord {
	for _, rule := range eodhdAliasRules {
		records = append(records, rule.derive(indexFacts(records), aliasOf)...)
	}
	records = append(records, deriveIntangiblesFromNetTangible(indexFacts(records))...)
	records = append(records, deriveEODHDEquity(indexFacts(records))...)
	records = append(records, aliasRule{
		Target:    "CommonStockSharesOutstanding",
		Fallbacks: []string{"EntityCommonStockSharesOutstanding"},
	}.derive(indexFacts(records), aliasOf)...)
	records = append(records, deriveEODHDIncomeAvailableToCommon(indexFacts(records))...)
	records = append(records, deriveEODHDCommonEquity(indexFacts(records))...)
	return records
}

// deriveIntangiblesFromNetTangible backs intangibles out of book equity:
// (Assets − Liabilities) − NetTangibleAssets − Goodwill, when non-negative.
func deriveIntangiblesFromNetTangible(ix factIndex) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys("NetTangibleAssets") {
		if ix.has(intangiblesExclGoodwill, key) {
			continue
		}
		netTangible, ok1 := ix.value("NetTangibleAssets", key)
		assets, ok2 := ix.value("Assets", key)
		liabilities, ok3 := ix.value("Liabilities", key)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		goodwill := 0.0
		if g, ok := ix.value("Goodwill", key); ok {
			goodwill = g.Float()
		}
		v := assets.Float() - liabilities.Float() - netTangible.Float() - goodwill
		if v >= 0 {
			out = append(out, aliasOf(netTangible, intangiblesExclGoodwill, v))
		}
	}
	return out
}

// deriveEODHDEquity fills StockholdersEquity from Assets − Liabilities when
// non-negative, else from the common equity figure.
func deriveEODHDEquity(ix factIndex) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys("Assets", "Liabilities", "CommonStockholdersEquity") {
		if ix.has("StockholdersEquity", key) {
			continue
		}
		assets, okA := ix.value("Assets", key)
		liabilities, okL := ix.value("Liabilities", key)
		if okA && okL {
			if v := assets.Float() - liabilities.Float(); v >= 0 {
				out = append(out, aliasOf(assets, "StockholdersEquity", v))
				continue
			}
		}
		if equity, ok := ix.value("CommonStockholdersEquity", key); ok {
			out = append(out, aliasOf(equity, "StockholdersEquity", equity.Float()))
		}
	}
	return out
}

func deriveEODHDIncomeAvailableToCommon(ix factIndex) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys("NetIncomeLoss") {
		if ix.has(incomeAvailableToCommon, key) {
			continue
		}
		base, ok := ix.value("NetIncomeLoss", key)
		if !ok {
			continue
		}
		value := base.Float()
		if pref, ok := ix.value("PreferredStockDividendsAndOtherAdjustments", key); ok {
			value -= pref.Float()
		}
		out = append(out, aliasOf(base, incomeAvailableToCommon, value))
	}
	return out
}

// deriveEODHDCommonEquity fills CommonStockholdersEquity as
// StockholdersEquity − PreferredStock − noncontrolling interest.
func deriveEODHDCommonEquity(ix factIndex) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys("StockholdersEquity") {
		if ix.has("CommonStockholdersEquity", key) {
			continue
		}
		base, ok := ix.value("StockholdersEquity", key)
		if !ok {
			continue
		}
		value := base.Float()
		if pref, ok := ix.value("PreferredStock", key); ok {
			value -= pref.Float()
		}
		if nci, ok := ix.value("NoncontrollingInterestInConsolidatedEntity", key); ok {
			value -= nci.Float()
		}
		out = append(out, aliasOf(base, "CommonStockholdersEquity", value))
	}
	return out
}
