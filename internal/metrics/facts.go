package metrics

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

const (
	maxFactAge   = common.MaxFactAgeDays
	maxFYFactAge = common.MaxFYFactAgeDays
)

var fyFrame = regexp.MustCompile(`^CY\d{4}$`)

// filterQuarterly keeps Q1..Q4 records with a value, first record per end date.
// Input is expected newest first.
func filterQuarterly(records []models.FactRecord) []models.FactRecord {
	out := make([]models.FactRecord, 0, len(records))
	seen := make(map[string]bool)
	for _, rec := range records {
		if !rec.IsQuarterly() || seen[rec.EndDate] || !rec.HasValue() {
			continue
		}
		seen[rec.EndDate] = true
		out = append(out, rec)
	}
	return out
}

// filterUniqueFY keeps records framed as a calendar year (CY2023, not
// CY2023Q4), first record per end date.
func filterUniqueFY(records []models.FactRecord) []models.FactRecord {
	out := make([]models.FactRecord, 0, len(records))
	seen := make(map[string]bool)
	for _, rec := range records {
		if !fyFrame.MatchString(rec.Frame) || seen[rec.EndDate] {
			continue
		}
		seen[rec.EndDate] = true
		out = append(out, rec)
	}
	return out
}

// filterFY keeps FY records with a value, first record per end date.
func filterFY(records []models.FactRecord) []models.FactRecord {
	out := make([]models.FactRecord, 0, len(records))
	seen := make(map[string]bool)
	for _, rec := range records {
		if !strings.EqualFold(rec.FiscalPeriod, models.PeriodFY) || seen[rec.EndDate] || !rec.HasValue() {
			continue
		}
		seen[rec.EndDate] = true
		out = append(out, rec)
	}
	return out
}

// byEndDate indexes records by end date; the first record per date wins.
func byEndDate(records []models.FactRecord) map[string]models.FactRecord {
	out := make(map[string]models.FactRecord, len(records))
	for _, rec := range records {
		if _, ok := out[rec.EndDate]; !ok {
			out[rec.EndDate] = rec
		}
	}
	return out
}

// selector picks the usable subset of a concept's records; ok is false when
// the concept does not qualify.
type selector func(records []models.FactRecord) ([]models.FactRecord, bool)

// resolveFirstAvailable walks concepts in order and returns the first whose
// records satisfy sel.
func (r *reader) resolveFirstAvailable(concepts []string, sel selector, opts ...models.FactOption) (string, []models.FactRecord) {
	for _, concept := range concepts {
		selected, ok := sel(r.facts(concept, opts...))
		if ok {
			return concept, selected
		}
		if r.err != nil {
			break
		}
	}
	return "", nil
}

// atLeast selects filtered records when at least n remain.
func atLeast(n int, filter func([]models.FactRecord) []models.FactRecord) selector {
	return func(records []models.FactRecord) ([]models.FactRecord, bool) {
		filtered := filter(records)
		return filtered, len(filtered) >= n && n > 0
	}
}

// hasRecentFact reports whether any concept has a recent fact of any period.
func (r *reader) hasRecentFact(concepts []string, maxAgeDays int) bool {
	for _, concept := range concepts {
		if rec := r.latest(concept); rec != nil && r.recent(rec.EndDate, maxAgeDays) {
			return true
		}
		for _, rec := range r.facts(concept) {
			if r.recent(rec.EndDate, maxAgeDays) {
				return true
			}
		}
	}
	return false
}

// latestOf returns the newest valued record among the first concept that has one.
func (r *reader) latestOf(concepts ...string) *models.FactRecord {
	for _, concept := range concepts {
		if rec := r.latest(concept); rec != nil {
			return rec
		}
	}
	return nil
}

// yearOf parses the calendar year prefix of an ISO date.
func yearOf(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return y, true
}

// maxDate returns the latest ISO date; empty strings are ignored.
func maxDate(dates ...string) string {
	latest := ""
	for _, d := range dates {
		if d > latest {
			latest = d
		}
	}
	return latest
}

// sortedDatesDesc returns map keys newest first.
func sortedDatesDesc[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
