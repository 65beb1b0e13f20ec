package normalization

import (
	"sort"
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// EODHDNormalizer flattens EODHD fundamentals payloads into FactRecords.
type EODHDNormalizer struct {
	concepts map[string]bool
}

// NewEODHDNormalizer creates a normalizer emitting the given statement
// concepts, or every concept of EODHDStatementFields when none are given.
func NewEODHDNormalizer(concepts ...string) *EODHDNormalizer {
	if len(concepts) == 0 {
		concepts = EODHDTargetConcepts()
	}
	set := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		set[c] = true
	}
	return &EODHDNormalizer{concepts: set}
}

// keyedEntry is one statement row with the map key it was stored under.
type keyedEntry struct {
	key   string
	entry map[string]any
}

// Normalize returns statement, share-count and earnings records for payload,
// followed by the derived concepts. accountingStandard overrides
// General.AccountingStandard when set.
func (n *EODHDNormalizer) Normalize(payload map[string]any, symbol, accountingStandard string) []models.FactRecord {
	if len(payload) == 0 {
		return nil
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	general := asMap(payload["General"])
	if accountingStandard == "" {
		accountingStandard = str(general["AccountingStandard"])
	}
	generalCurrency := models.NormalizeCurrencyCode(str(general["CurrencyCode"]))
	base := models.FactRecord{Symbol: symbol, AccountingStandard: accountingStandard, Provider: models.ProviderEODHD}

	financials := asMap(payload["Financials"])
	var records []models.FactRecord
	for _, st := range EODHDStatementFields {
		statement := asMap(financials[st.Statement])
		records = append(records, n.normalizeStatement(statement, st.Fields, statementCurrency(statement, generalCurrency), base)...)
	}
	records = append(records, shareStatsRecords(payload, base)...)
	records = append(records, outstandingSharesRecords(asMap(payload["outstandingShares"]), base)...)
	records = append(records, earningsEPSRecords(payload, generalCurrency, base)...)
	return deriveEODHD(records)
}

func (n *EODHDNormalizer) normalizeStatement(statement map[string]any, fields []fieldAliases, defaultCurrency string, base models.FactRecord) []models.FactRecord {
	var records []models.FactRecord
	for _, freq := range []struct {
		key    string
		period string
	}{{"yearly", models.PeriodFY}, {"quarterly", ""}} {
		for _, ke := range iterEntries(statement[freq.key]) {
			entry := ke.entry
			endDate := entryDate(entry)
			if endDate == "" {
				continue
			}
			currency := models.NormalizeCurrencyCode(str(entry["currency_symbol"]))
			if currency == "" {
				currency = defaultCurrency
			}
			if currency == "" {
				currency = models.NormalizeCurrencyCode(str(entry["CurrencyCode"]))
			}
			period := freq.period
			if period == "" {
				period = inferQuarter(entry)
			}

			for _, f := range fields {
				if !n.concepts[f.Concept] {
					continue
				}
				value, ok := extractValue(entry, f.Keys...)
				if !ok {
					if derive, has := statementDerivations[f.Concept]; has {
						value, ok = derive(entry)
					}
				}
				if !ok {
					continue
				}
				rec := base
				rec.Concept = f.Concept
				rec.FiscalPeriod = period
				rec.EndDate = endDate
				rec.Filed = str(entry["filing_date"])
				rec.Frame = calendarFrame(endDate, period)
				if shareCountConcepts[f.Concept] {
					rec.Unit = shareUnit
				} else {
					value, rec.Currency = models.NormalizeAmount(value, currency)
					rec.Unit = rec.Currency
				}
				rec.Value = models.Float64Ptr(value)
				records = append(records, rec)
			}
		}
	}
	return records
}

// statementCurrency prefers the first currency_symbol found in the
// statement's rows over the General currency.
func statementCurrency(statement map[string]any, fallback string) string {
	for _, freq := range []string{"yearly", "quarterly"} {
		for _, ke := range iterEntries(statement[freq]) {
			if code := models.NormalizeCurrencyCode(str(ke.entry["currency_symbol"])); code != "" {
				return code
			}
		}
	}
	return fallback
}

// shareStatsRecords emits the current share count dated at the latest
// reported quarter.
func shareStatsRecords(payload map[string]any, base models.FactRecord) []models.FactRecord {
	stats := asMap(payload["SharesStats"])
	shares, ok := toFloat(stats["SharesOutstanding"])
	if !ok || shares == 0 {
		shares, ok = toFloat(stats["SharesFloat"])
	}
	if !ok {
		return nil
	}
	general := asMap(payload["General"])
	endDate := isoDay(str(general["LatestQuarter"]))
	if endDate == "" {
		endDate = isoDay(str(general["LatestReportDate"]))
	}
	if endDate == "" {
		return nil
	}
	rec := base
	rec.Concept = "CommonStockSharesOutstanding"
	rec.FiscalPeriod = models.PeriodInstant
	rec.EndDate = endDate
	rec.Unit = shareUnit
	rec.Value = models.Float64Ptr(shares)
	return []models.FactRecord{rec}
}

// outstandingSharesRecords reads the annual and quarterly share series.
// Year-only dates are pinned to December 31st.
func outstandingSharesRecords(series map[string]any, base models.FactRecord) []models.FactRecord {
	var records []models.FactRecord
	for _, bucket := range []struct {
		key    string
		period string
	}{{"annual", models.PeriodFY}, {"quarterly", ""}} {
		for _, ke := range iterEntries(series[bucket.key]) {
			endDate := shareSeriesDate(ke)
			if endDate == "" {
				continue
			}
			shares, ok := toFloat(ke.entry["shares"])
			if !ok {
				mln, okMln := toFloat(ke.entry["sharesMln"])
				if !okMln {
					continue
				}
				shares = mln * 1_000_000
			}
			period := bucket.period
			if period == "" {
				t, _ := parseDay(endDate)
				period = quarterOf(t)
			}
			rec := base
			rec.Concept = "CommonStockSharesOutstanding"
			rec.FiscalPeriod = period
			rec.EndDate = endDate
			rec.Unit = shareUnit
			rec.Frame = calendarFrame(endDate, period)
			rec.Value = models.Float64Ptr(shares)
			records = append(records, rec)
		}
	}
	return records
}

func shareSeriesDate(ke keyedEntry) string {
	raw := str(ke.entry["dateFormatted"])
	if raw == "" {
		raw = str(ke.entry["date"])
	}
	if raw == "" {
		raw = ke.key
	}
	if d := isoDay(raw); d != "" {
		return d
	}
	if len(raw) == 4 && isDigits(raw) {
		return raw + "-12-31"
	}
	return ""
}

// earningsEPSRecords turns Earnings.History (quarterly) and Earnings.Annual
// epsActual values into diluted EPS facts for dates the income statement
// does not already cover.
func earningsEPSRecords(payload map[string]any, generalCurrency string, base models.FactRecord) []models.FactRecord {
	earnings := asMap(payload["Earnings"])
	history := iterEntries(earnings["History"])
	annual := iterEntries(earnings["Annual"])
	income := asMap(asMap(payload["Financials"])["Income_Statement"])

	fallbackCurrency := latestEarningsCurrency(append(append([]keyedEntry{}, history...), annual...))
	if fallbackCurrency == "" {
		fallbackCurrency = generalCurrency
	}

	var records []models.FactRecord
	emit := func(entries []keyedEntry, covered map[string]bool, annualSeries bool) {
		for _, ke := range entries {
			eps, ok := toFloat(ke.entry["epsActual"])
			if !ok {
				continue
			}
			endDate := keyedDate(ke)
			if endDate == "" || covered[endDate] {
				continue
			}
			period := models.PeriodFY
			if !annualSeries {
				t, _ := parseDay(endDate)
				period = quarterOf(t)
			}
			currency := models.NormalizeCurrencyCode(str(ke.entry["currency"]))
			if currency == "" {
				currency = fallbackCurrency
			}
			rec := base
			rec.Concept = "EarningsPerShareDiluted"
			rec.FiscalPeriod = period
			rec.EndDate = endDate
			rec.Frame = calendarFrame(endDate, period)
			eps, rec.Currency = models.NormalizeAmount(eps, currency)
			rec.Unit = rec.Currency
			rec.Value = models.Float64Ptr(eps)
			records = append(records, rec)
		}
	}
	emit(history, statementEPSDates(income["quarterly"]), false)
	emit(annual, statementEPSDates(income["yearly"]), true)
	return records
}

func statementEPSDates(container any) map[string]bool {
	dates := make(map[string]bool)
	for _, ke := range iterEntries(container) {
		if _, ok := extractValue(ke.entry, epsStatementKeys...); !ok {
			continue
		}
		if d := keyedDate(ke); d != "" {
			dates[d] = true
		}
	}
	return dates
}

// latestEarningsCurrency returns the currency of the most recent earnings
// entry that names one.
func latestEarningsCurrency(entries []keyedEntry) string {
	latestDate, currency := "", ""
	for _, ke := range entries {
		code := models.NormalizeCurrencyCode(str(ke.entry["currency"]))
		if code == "" {
			continue
		}
		d := keyedDate(ke)
		if d == "" {
			d = ke.key
		}
		if currency == "" || d > latestDate {
			latestDate, currency = d, code
		}
	}
	return currency
}

// iterEntries returns the object rows of a date-keyed map (in key order) or
// of a list.
func iterEntries(container any) []keyedEntry {
	var out []keyedEntry
	switch c := container.(type) {
	case map[string]any:
		keys := make([]string, 0, len(c))
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if m := asMap(c[k]); m != nil {
				out = append(out, keyedEntry{key: k, entry: m})
			}
		}
	case []any:
		for _, item := range c {
			if m := asMap(item); m != nil {
				out = append(out, keyedEntry{entry: m})
			}
		}
	}
	return out
}

// entryDate reads the first non-empty of date, Date and period as an ISO day.
func entryDate(entry map[string]any) string {
	for _, k := range []string{"date", "Date", "period"} {
		if raw := str(entry[k]); raw != "" {
			return isoDay(raw)
		}
	}
	return ""
}

func keyedDate(ke keyedEntry) string {
	if d := entryDate(ke.entry); d != "" {
		return d
	}
	return isoDay(ke.key)
}

// inferQuarter uses an explicit Q1..Q4 period field, else the month of the
// entry date.
func inferQuarter(entry map[string]any) string {
	switch p := strings.ToUpper(str(entry["period"])); p {
	case models.PeriodQ1, models.PeriodQ2, models.PeriodQ3, models.PeriodQ4:
		return p
	}
	t, ok := parseDay(entryDate(entry))
	if !ok {
		return ""
	}
	return quarterOf(t)
}

// extractValue returns the first key with a numeric value. Keys match
// exactly first, then case-insensitively.
func extractValue(entry map[string]any, keys ...string) (float64, bool) {
	var lowered map[string]any
	for _, key := range keys {
		raw, ok := entry[key]
		if !ok {
			if lowered == nil {
				lowered = make(map[string]any, len(entry))
				for k, v := range entry {
					lowered[strings.ToLower(k)] = v
				}
			}
			raw, ok = lowered[strings.ToLower(key)]
		}
		if !ok {
			continue
		}
		if v, ok := toFloat(raw); ok {
			return v, true
		}
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
