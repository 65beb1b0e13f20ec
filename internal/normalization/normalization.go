// Package normalization flattens provider payloads (SEC companyfacts, EODHD
// fundamentals) into canonical FactRecords. Normalizers are pure: malformed
// entries are skipped, never reported as errors.
package normalization

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// toFloat coerces JSON numbers and numeric strings. NaN and infinities are
// rejected.
func toFloat(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(strings.TrimSpace(n.String()), 64)
		return f, err == nil
	}
	return 0, false
}

// str renders scalar JSON values as strings; nil and containers become "".
func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case fmt.Stringer:
		return s.String()
	}
	return ""
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// parseDay parses the leading YYYY-MM-DD of s.
func parseDay(s string) (time.Time, bool) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse(common.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isoDay returns the leading YYYY-MM-DD of s when it is a valid date.
func isoDay(s string) string {
	if _, ok := parseDay(s); !ok {
		return ""
	}
	return s[:10]
}

// periodKey identifies one observation slot of a concept.
type periodKey struct {
	EndDate      string
	FiscalPeriod string
	Unit         string
}

func keyOf(r models.FactRecord) periodKey {
	return periodKey{EndDate: r.EndDate, FiscalPeriod: r.FiscalPeriod, Unit: r.Unit}
}

// factIndex maps concept → slot → first record seen for that slot.
type factIndex map[string]map[periodKey]models.FactRecord

func indexFacts(records []models.FactRecord) factIndex {
	ix := make(factIndex)
	for _, r := range records {
		bucket, ok := ix[r.Concept]
		if !ok {
			bucket = make(map[periodKey]models.FactRecord)
			ix[r.Concept] = bucket
		}
		if _, exists := bucket[keyOf(r)]; !exists {
			bucket[keyOf(r)] = r
		}
	}
	return ix
}

// has reports whether concept has any record (valued or not) at key.
func (ix factIndex) has(concept string, key periodKey) bool {
	_, ok := ix[concept][key]
	return ok
}

// value returns the record for concept at key when it carries a value.
func (ix factIndex) value(concept string, key periodKey) (models.FactRecord, bool) {
	r, ok := ix[concept][key]
	if !ok || !r.HasValue() {
		return models.FactRecord{}, false
	}
	return r, true
}

// first returns the first concept in order with a valued record at key.
func (ix factIndex) first(key periodKey, concepts ...string) (string, models.FactRecord, bool) {
	for _, c := range concepts {
		if r, ok := ix.value(c, key); ok {
			return c, r, true
		}
	}
	return "", models.FactRecord{}, false
}

// valued collects the valued records for concepts at key, in order.
func (ix factIndex) valued(key periodKey, concepts ...string) []models.FactRecord {
	var out []models.FactRecord
	for _, c := range concepts {
		if r, ok := ix.value(c, key); ok {
			out = append(out, r)
		}
	}
	return out
}

// keys returns the union of slots of concepts, sorted for stable output.
func (ix factIndex) keys(concepts ...string) []periodKey {
	seen := make(map[periodKey]bool)
	var out []periodKey
	for _, c := range concepts {
		for k := range ix[c] {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EndDate != b.EndDate {
			return a.EndDate < b.EndDate
		}
		if a.FiscalPeriod != b.FiscalPeriod {
			return a.FiscalPeriod < b.FiscalPeriod
		}
		return a.Unit < b.Unit
	})
	return out
}

func sum(records []models.FactRecord) float64 {
	total := 0.0
	for _, r := range records {
		total += r.Float()
	}
	return total
}

// recordBuilder creates a derived record for concept from base.
type recordBuilder func(base models.FactRecord, concept string, value float64) models.FactRecord

// aliasRule fills Target from the first valued Fallback at every slot where
// Target is missing.
type aliasRule struct {
	Target    string
	Fallbacks []string
}

func (rule aliasRule) derive(ix factIndex, build recordBuilder) []models.FactRecord {
	var out []models.FactRecord
	for _, key := range ix.keys(rule.Fallbacks...) {
		if ix.has(rule.Target, key) {
			continue
		}
		_, base, ok := ix.first(key, rule.Fallbacks...)
		if !ok {
			continue
		}
		out = append(out, build(base, rule.Target, base.Float()))
	}
	return out
}

// quarterOf maps a month to its calendar quarter tag.
func quarterOf(t time.Time) string {
	switch {
	case t.Month() <= 3:
		return models.PeriodQ1
	case t.Month() <= 6:
		return models.PeriodQ2
	case t.Month() <= 9:
		return models.PeriodQ3
	}
	return models.PeriodQ4
}

// calendarFrame renders CY<year> for annual periods and CY<year>Q<n> for
// quarters.
func calendarFrame(endDate, period string) string {
	if len(endDate) < 4 {
		return ""
	}
	year := endDate[:4]
	if _, err := strconv.Atoi(year); err != nil {
		return ""
	}
	switch p := strings.ToUpper(period); p {
	case models.PeriodQ1, models.PeriodQ2, models.PeriodQ3, models.PeriodQ4:
		return "CY" + year + p
	}
	return "CY" + year
}
