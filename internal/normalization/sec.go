package normalization

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

const secAccountingStandard = "US-GAAP"

var secTaxonomies = map[string]bool{"us-gaap": true, "dei": true}

// SECNormalizer flattens SEC companyfacts payloads into FactRecords.
type SECNormalizer struct {
	concepts map[string]bool
	now      func() time.Time
}

// NewSECNormalizer creates a normalizer emitting the given concepts, or
// SECTargetConcepts when none are given.
func NewSECNormalizer(concepts ...string) *SECNormalizer {
	if len(concepts) == 0 {
		concepts = SECTargetConcepts
	}
	set := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		set[c] = true
	}
	return &SECNormalizer{concepts: set, now: time.Now}
}

// secEntry is one observation of a concept in a single unit.
type secEntry struct {
	unit  string
	fp    string
	form  string
	end   string
	start string
	accn  string
	filed string
	frame string
	val   float64
}

// Normalize returns FY and quarterly records for every allow-listed concept
// in payload, followed by the derived concepts. cik overrides the payload's
// own cik when set.
func (n *SECNormalizer) Normalize(payload map[string]any, symbol, cik string) []models.FactRecord {
	if len(payload) == 0 {
		return nil
	}
	if cik == "" {
		cik = str(payload["cik"])
	}
	cik = NormalizeCIK(cik)
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	facts := asMap(payload["facts"])
	var records []models.FactRecord
	for _, taxonomy := range sortedKeys(facts) {
		if !secTaxonomies[taxonomy] {
			continue
		}
		conceptMap := asMap(facts[taxonomy])
		for _, concept := range sortedKeys(conceptMap) {
			if !n.concepts[concept] {
				continue
			}
			entries := collectSECEntries(asMap(conceptMap[concept]))
			if len(entries) == 0 {
				continue
			}
			fy, fyByEnd := buildFYRecords(entries, symbol, cik, concept)
			records = append(records, fy...)
			records = append(records, buildQuarterRecords(entries, fyByEnd, symbol, cik, concept)...)
		}
	}
	return n.derive(records, cik)
}

// NormalizeCIK renders numeric CIKs as CIK##########. Values already
// prefixed are upper-cased; anything else is returned trimmed.
func NormalizeCIK(cik string) string {
	cik = strings.TrimSpace(cik)
	if cik == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToUpper(cik), "CIK") {
		return strings.ToUpper(cik)
	}
	if num, err := strconv.ParseInt(cik, 10, 64); err == nil && num >= 0 {
		return fmt.Sprintf("CIK%010d", num)
	}
	return cik
}

func collectSECEntries(detail map[string]any) []secEntry {
	units := asMap(detail["units"])
	var entries []secEntry
	for _, unit := range sortedKeys(units) {
		items, ok := units[unit].([]any)
		if !ok {
			continue
		}
		for _, item := range items {
			m := asMap(item)
			if m == nil {
				continue
			}
			val, ok := toFloat(m["val"])
			if !ok {
				continue
			}
			end := str(m["end"])
			if end == "" {
				continue
			}
			entries = append(entries, secEntry{
				unit:  unit,
				fp:    strings.ToUpper(str(m["fp"])),
				form:  str(m["form"]),
				end:   end,
				start: str(m["start"]),
				accn:  str(m["accn"]),
				filed: str(m["filed"]),
				frame: str(m["frame"]),
				val:   val,
			})
		}
	}
	return entries
}

// buildFYRecords keeps one 10-K FY observation per calendar year of the end
// date. It also returns the chosen records by end date for quarter
// reconciliation.
func buildFYRecords(entries []secEntry, symbol, cik, concept string) ([]models.FactRecord, map[string]models.FactRecord) {
	byEnd := make(map[string]secEntry)
	for _, e := range entries {
		if !strings.HasPrefix(e.form, "10-K") || e.fp != models.PeriodFY {
			continue
		}
		if existing, ok := byEnd[e.end]; !ok || filedTime(e).After(filedTime(existing)) {
			byEnd[e.end] = e
		}
	}
	if len(byEnd) == 0 {
		return nil, nil
	}

	byYear := make(map[int][]secEntry)
	var years []int
	for _, end := range sortedKeys(byEnd) {
		year, err := strconv.Atoi(end[:min(4, len(end))])
		if err != nil {
			continue
		}
		if _, ok := byYear[year]; !ok {
			years = append(years, year)
		}
		byYear[year] = append(byYear[year], byEnd[end])
	}

	var records []models.FactRecord
	fyByEnd := make(map[string]models.FactRecord)
	for _, year := range years {
		rec := secRecord(selectFYEntry(byYear[year]), symbol, cik, concept)
		records = append(records, rec)
		fyByEnd[rec.EndDate] = rec
	}
	return records, fyByEnd
}

// selectFYEntry prefers the entry whose span is closest to a year, breaking
// ties by latest filing. Without spans the latest filing wins.
func selectFYEntry(group []secEntry) secEntry {
	var best *secEntry
	for i := range group {
		e := &group[i]
		if e.start == "" {
			continue
		}
		if best == nil {
			best = e
			continue
		}
		de, db := yearSpanGap(*e), yearSpanGap(*best)
		if de < db || (de == db && filedTime(*e).After(filedTime(*best))) {
			best = e
		}
	}
	if best != nil {
		return *best
	}
	chosen := group[0]
	for _, e := range group[1:] {
		if filedTime(e).After(filedTime(chosen)) {
			chosen = e
		}
	}
	return chosen
}

func yearSpanGap(e secEntry) float64 {
	start, ok1 := parseDay(e.start)
	end, ok2 := parseDay(e.end)
	if !ok1 || !ok2 {
		return math.Inf(1)
	}
	days := int(end.Sub(start).Hours() / 24)
	return math.Abs(float64(days - 365))
}

func filedTime(e secEntry) time.Time {
	t, _ := parseDay(e.filed)
	return t
}

type cumulativeKey struct {
	unit, fyKey, fp string
}

// buildQuarterRecords turns 10-Q year-to-date values into discrete quarters
// and derives Q4 from the FY record.
func buildQuarterRecords(entries []secEntry, fyByEnd map[string]models.FactRecord, symbol, cik, concept string) []models.FactRecord {
	var filtered []secEntry
	for _, e := range entries {
		if strings.HasPrefix(e.form, "10-Q") && isInterimQuarter(e.fp) {
			filtered = append(filtered, e)
		}
	}

	var records []models.FactRecord
	cumulative := make(map[cumulativeKey]float64)
	if len(filtered) > 0 {
		quarters := latestPerPeriod(dedupQuarterFilings(filtered))
		fyEnds := sortedFYEnds(fyByEnd)
		cycles := newCycleTracker()

		for _, e := range quarters {
			fyKey := resolveFYKey(e, fyEnds, cycles)
			value := e.val
			if e.start != "" {
				if e.fp != models.PeriodQ1 {
					prevFP := models.PeriodQ1
					if e.fp == models.PeriodQ3 {
						prevFP = models.PeriodQ2
					}
					prev, ok := cumulative[cumulativeKey{e.unit, fyKey, prevFP}]
					if !ok {
						continue
					}
					value = e.val - prev
				}
				cumulative[cumulativeKey{e.unit, fyKey, e.fp}] = e.val
			}
			q := e
			q.val = value
			records = append(records, secRecord(q, symbol, cik, concept))
		}
	}

	for _, end := range sortedKeys(fyByEnd) {
		fy := fyByEnd[end]
		if !fy.HasValue() {
			continue
		}
		q4 := secEntry{
			unit:  fy.Unit,
			fp:    models.PeriodQ4,
			end:   fy.EndDate,
			accn:  fy.Accn,
			filed: fy.Filed,
			val:   fy.Float(),
		}
		if fy.StartDate != "" {
			q3, ok := cumulative[cumulativeKey{fy.Unit, end, models.PeriodQ3}]
			if !ok {
				continue
			}
			q4.val = fy.Float() - q3
			q4.start = fy.StartDate
		}
		records = append(records, secRecord(q4, symbol, cik, concept))
	}
	return records
}

func isInterimQuarter(fp string) bool {
	return fp == models.PeriodQ1 || fp == models.PeriodQ2 || fp == models.PeriodQ3
}

type filingKey struct {
	unit, fp, filing string
}

// dedupQuarterFilings keeps one observation per filing and quarter. 10-Q
// filings repeat prior-period comparatives; the latest period end wins, then
// the earliest start, then the latest filing date.
func dedupQuarterFilings(entries []secEntry) []secEntry {
	var order []filingKey
	grouped := make(map[filingKey]secEntry)
	for _, e := range entries {
		filing := e.accn
		if filing == "" {
			filing = e.filed
		}
		key := filingKey{e.unit, e.fp, filing}
		existing, ok := grouped[key]
		if !ok {
			order = append(order, key)
			grouped[key] = e
			continue
		}
		if preferQuarterEntry(e, existing) {
			grouped[key] = e
		}
	}
	out := make([]secEntry, 0, len(order))
	for _, k := range order {
		out = append(out, grouped[k])
	}
	return out
}

func preferQuarterEntry(candidate, existing secEntry) bool {
	newEnd, okNew := parseDay(candidate.end)
	oldEnd, okOld := parseDay(existing.end)
	switch {
	case okNew && okOld:
		if !newEnd.Equal(oldEnd) {
			return newEnd.After(oldEnd)
		}
	case okNew || okOld:
		return okNew
	}

	newStart, okNew := parseDay(candidate.start)
	oldStart, okOld := parseDay(existing.start)
	switch {
	case okNew && okOld:
		if !newStart.Equal(oldStart) {
			return newStart.Before(oldStart)
		}
	case okNew || okOld:
		return !okOld
	}
	return !filedTime(candidate).Before(filedTime(existing))
}

type periodSlot struct {
	unit, end, fp string
}

// latestPerPeriod keeps the latest filing per (unit, end, fp), ordered by
// end date.
func latestPerPeriod(entries []secEntry) []secEntry {
	var order []periodSlot
	latest := make(map[periodSlot]secEntry)
	for _, e := range entries {
		slot := periodSlot{e.unit, e.end, e.fp}
		existing, ok := latest[slot]
		if !ok {
			order = append(order, slot)
			latest[slot] = e
			continue
		}
		if filedTime(e).After(filedTime(existing)) {
			latest[slot] = e
		}
	}
	out := make([]secEntry, 0, len(order))
	for _, s := range order {
		out = append(out, latest[s])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].end < out[j].end })
	return out
}

type fyEnd struct {
	at  time.Time
	key string
}

func sortedFYEnds(fyByEnd map[string]models.FactRecord) []fyEnd {
	var out []fyEnd
	for end := range fyByEnd {
		if t, ok := parseDay(end); ok {
			out = append(out, fyEnd{at: t, key: end})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out
}

// cycleTracker groups quarters without a matching FY into synthetic fiscal
// cycles per unit, starting a new cycle at each Q1.
type cycleTracker struct {
	current  map[string]string
	counters map[string]int
}

func newCycleTracker() *cycleTracker {
	return &cycleTracker{current: make(map[string]string), counters: make(map[string]int)}
}

// resolveFYKey assigns a quarter to the first FY ending on or after it.
func resolveFYKey(e secEntry, fyEnds []fyEnd, cycles *cycleTracker) string {
	if end, ok := parseDay(e.end); ok {
		for _, fy := range fyEnds {
			if !end.After(fy.at) {
				return fy.key
			}
		}
	}
	key, ok := cycles.current[e.unit]
	if e.fp == models.PeriodQ1 || !ok {
		idx := cycles.counters[e.unit]
		cycles.counters[e.unit] = idx + 1
		key = fmt.Sprintf("%s-cycle-%d", e.unit, idx)
		cycles.current[e.unit] = key
	}
	return key
}

func secRecord(e secEntry, symbol, cik, concept string) models.FactRecord {
	return models.FactRecord{
		Symbol:             symbol,
		CIK:                cik,
		Concept:            concept,
		FiscalPeriod:       e.fp,
		EndDate:            e.end,
		Unit:               e.unit,
		Currency:           currencyFromUnit(e.unit),
		Value:              models.Float64Ptr(e.val),
		Accn:               e.accn,
		Filed:              e.filed,
		Frame:              e.frame,
		StartDate:          e.start,
		AccountingStandard: secAccountingStandard,
		Provider:           models.ProviderSEC,
	}
}

// currencyFromUnit treats three-letter alphabetic units as currency codes.
func currencyFromUnit(unit string) string {
	u := strings.ToUpper(strings.TrimSpace(unit))
	if len(u) != 3 {
		return ""
	}
	for _, r := range u {
		if r < 'A' || r > 'Z' {
			return ""
		}
	}
	return u
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
