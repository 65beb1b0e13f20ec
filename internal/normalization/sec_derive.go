package normalization

import (
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// derive appends the derived concepts. Each step sees the output of the
// previous ones and only fills slots where its target is absent.
func (n *SECNormalizer) derive(records []models.FactRecord, cik string) []models.FactRecord {
	var build recordBuilder = func(base models.FactRecord, concept string, value float64) models.FactRecord {
		return secDerivedRecord(base, concept, value, cik)
	}

	records = append(records, deriveSECCurrentTotals(indexFacts(records), build)...)
	records = append(records, n.deriveLongTermDebt(indexFacts(records), build)...)
	records = append(records, deriveSECIntangibles(indexFacts(records), build)...)
	for _, rule := range secAliasRules {
		records = append(records, rule.derive(indexFacts(records), build)...)
	}
	records = append(records, deriveSECIncomeAvailableToCommon(indexFacts(records), build)...)
	records = append(records, deriveSECCommonEquity(indexFacts(records), build)...)
	return records
}

func secDerivedRecord(base models.FactRecord, concept string, value float64, cik string) models.FactRecord {
	if base.CIK != "" {
		cik = base.CIK
	}
	return models.FactRecord{
		Symbol:             strings.ToUpper(base.Symbol),
		CIK:                cik,
		Concept:            concept,
		FiscalPeriod:       base.FiscalPeriod,
		EndDate:            base.EndDate,
		Unit:               base.Unit,
		Currency:           base.Currency,
		Value:              models.Float64Ptr(value),
		Frame:              base.Frame,
		AccountingStandard: base.AccountingStandard,
		Provider:           base.Provider,
	}
}

func deriveSECCurrentTotals(ix factIndex, build recordBuilder) []models.FactRecord {
	out := deriveSum(ix, "AssetsCurrent", secAssetsCurrentComponents, build)
	out = append(out, deriveSum(ix, "LiabilitiesCurrent", secLiabilitiesCurrentComponents, build)...)

	for _, key := range ix.keys(secLiabilitiesCurrentCombined...) {
		if ix.has("LiabilitiesCurrent", key) || len(ix.valued(key, secLiabilitiesCurrentComponents...)) > 0 {
			continue
		}
		if _, base, ok := ix.first(key, secLiabilitiesCurrentCombined...); ok {
			out = append(out, build(base, "LiabilitiesCurrent", base.Float()))
		}
	}
	return out
}

// deriveSum totals the valued components at every slot missing concept.
func deriveSum(ix factIndex, concept string, components []string, build recordBuilder) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys(components...) {
		if ix.has(concept, key) {
			continue
		}
		parts := ix.valued(key, components...)
		if len(parts) == 0 {
			continue
		}
		out = append(out, build(parts[0], concept, sum(parts)))
	}
	return out
}

var secLongTermDebtInputs = append(append([]string{
	"LongTermDebtNoncurrent",
	"LongTermDebtCurrent",
}, secLongTermDebtNoncurrentComponents...),
	"OtherLongTermDebt",
	"LongTermNotesPayable",
	"NotesPayable",
	"LongTermDebtAndCapitalLeaseObligations",
	"LongTermDebtAndCapitalLeaseObligationsNoncurrent",
	"LongTermDebtAndCapitalLeaseObligationsCurrent",
	"LongTermDebtAndCapitalLeaseObligationsIncludingCurrentMaturities",
	"OtherLiabilitiesNoncurrent",
	"OperatingLeaseLiabilityNoncurrent",
)

// recent returns the valued record for concept at key when its end date is
// within the short freshness window.
func (n *SECNormalizer) recent(ix factIndex, concept string, key periodKey) (models.FactRecord, bool) {
	r, ok := ix.value(concept, key)
	if !ok || !common.IsRecentDate(r.EndDate, common.MaxFactAgeDays, n.now()) {
		return models.FactRecord{}, false
	}
	return r, true
}

// deriveLongTermDebt rebuilds LongTermDebt at slots without a reported
// value, walking the fallback chain from the most to the least specific tag.
func (n *SECNormalizer) deriveLongTermDebt(ix factIndex, build recordBuilder) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys(secLongTermDebtInputs...) {
		if ix.has("LongTermDebt", key) {
			continue
		}
		if base, total, ok := n.longTermDebtAt(ix, key); ok {
			out = append(out, build(base, "LongTermDebt", total))
		}
	}
	return out
}

func (n *SECNormalizer) longTermDebtAt(ix factIndex, key periodKey) (models.FactRecord, float64, bool) {
	current := 0.0
	if r, ok := n.recent(ix, "LongTermDebtCurrent", key); ok {
		current = r.Float()
	}

	if r, ok := n.recent(ix, "LongTermDebtNoncurrent", key); ok {
		return r, r.Float() + current, true
	}

	var parts []models.FactRecord
	for _, c := range secLongTermDebtNoncurrentComponents {
		if r, ok := n.recent(ix, c, key); ok {
			parts = append(parts, r)
		}
	}
	if len(parts) > 0 {
		return parts[0], sum(parts) + current, true
	}

	if r, ok := n.recent(ix, "OtherLongTermDebt", key); ok {
		return r, r.Float() + current, true
	}

	for _, c := range []string{"LongTermNotesPayable", "NotesPayable"} {
		if r, ok := n.recent(ix, c, key); ok {
			return r, r.Float(), true
		}
	}

	for _, c := range []string{"LongTermDebtAndCapitalLeaseObligations", "LongTermDebtAndCapitalLeaseObligationsNoncurrent"} {
		r, ok := n.recent(ix, c, key)
		if !ok {
			continue
		}
		total := r.Float()
		if lc, ok := n.recent(ix, "LongTermDebtAndCapitalLeaseObligationsCurrent", key); ok {
			total += lc.Float()
		}
		return r, total, true
	}

	if r, ok := n.recent(ix, "LongTermDebtAndCapitalLeaseObligationsIncludingCurrentMaturities", key); ok {
		return r, r.Float(), true
	}

	for _, c := range []string{"OperatingLeaseLiabilityNoncurrent", "OtherLiabilitiesNoncurrent"} {
		if r, ok := n.recent(ix, c, key); ok {
			return r, r.Float() + current, true
		}
	}
	return models.FactRecord{}, 0, false
}

const intangiblesExclGoodwill = "IntangibleAssetsNetExcludingGoodwill"

func deriveSECIntangibles(ix factIndex, build recordBuilder) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys(append([]string{"IntangibleAssetsNet"}, secIntangibleComponents...)...) {
		if ix.has(intangiblesExclGoodwill, key) {
			continue
		}
		if parts := ix.valued(key, secIntangibleComponents...); len(parts) > 0 {
			out = append(out, build(parts[0], intangiblesExclGoodwill, sum(parts)))
			continue
		}
		if base, ok := ix.value("IntangibleAssetsNet", key); ok {
			out = append(out, build(base, intangiblesExclGoodwill, base.Float()))
		}
	}
	return out
}

const incomeAvailableToCommon = "NetIncomeLossAvailableToCommonStockholdersBasic"

// deriveSECIncomeAvailableToCommon prefers the diluted figure; net income is
// reduced by the first reported preferred dividend.
func deriveSECIncomeAvailableToCommon(ix factIndex, build recordBuilder) []models.FactRecord {
	sources := []string{"NetIncomeLossAvailableToCommonStockholdersDiluted", "NetIncomeLoss"}
	var out []models.FactRecord
	for _, key := range ix.keys(sources...) {
		if ix.has(incomeAvailableToCommon, key) {
			continue
		}
		concept, base, ok := ix.first(key, sources...)
		if !ok {
			continue
		}
		value := base.Float()
		if concept == "NetIncomeLoss" {
			if _, pref, ok := ix.first(key, secPreferredDividendConcepts...); ok {
				value -= pref.Float()
			}
		}
		out = append(out, build(base, incomeAvailableToCommon, value))
	}
	return out
}

func deriveSECCommonEquity(ix factIndex, build recordBuilder) []models.FactRecord {
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
		out = append(out, build(base, "CommonStockholdersEquity", value))
	}
	return out
}
