// Package models defines data structures for pyvalue
package models

import (
	"sort"
	"strings"
)

// Fiscal period tags carried on a FactRecord.
const (
	PeriodQ1      = "Q1"
	PeriodQ2      = "Q2"
	PeriodQ3      = "Q3"
	PeriodQ4      = "Q4"
	PeriodFY      = "FY"
	PeriodInstant = ""
)

// Providers that produce facts.
const (
	ProviderSEC   = "SEC"
	ProviderEODHD = "EODHD"
)

// FactRecord is one normalized observation of a concept for a symbol and
// fiscal period. Value is nil when the fact exists but is unusable.
type FactRecord struct {
	Symbol             string   `json:"symbol" badgerhold:"index"`
	CIK                string   `json:"cik,omitempty"`
	Concept            string   `json:"concept"`
	FiscalPeriod       string   `json:"fiscal_period"`
	EndDate            string   `json:"end_date"`
	Unit               string   `json:"unit"`
	Currency           string   `json:"currency,omitempty"`
	Value              *float64 `json:"value"`
	Accn               string   `json:"accn,omitempty"`
	Filed              string   `json:"filed,omitempty"`
	Frame              string   `json:"frame,omitempty"`
	StartDate          string   `json:"start_date,omitempty"`
	AccountingStandard string   `json:"accounting_standard,omitempty"`
	Provider           string   `json:"provider,omitempty"`
}

// FactKey is the deduplication key of a FactRecord.
type FactKey struct {
	Symbol       string
	Concept      string
	FiscalPeriod string
	EndDate      string
	Unit         string
}

// Key returns the record's deduplication key.
func (f FactRecord) Key() FactKey {
	return FactKey{
		Symbol:       f.Symbol,
		Concept:      f.Concept,
		FiscalPeriod: f.FiscalPeriod,
		EndDate:      f.EndDate,
		Unit:         f.Unit,
	}
}

// ID renders the key as a stable string usable as a storage record id.
func (k FactKey) ID() string {
	return strings.Join([]string{k.Symbol, k.Concept, k.FiscalPeriod, k.EndDate, k.Unit}, "|")
}

// HasValue reports whether the record carries a usable value.
func (f FactRecord) HasValue() bool {
	return f.Value != nil
}

// Float returns the value, or 0 when nil. Callers check HasValue first.
func (f FactRecord) Float() float64 {
	if f.Value == nil {
		return 0
	}
	return *f.Value
}

// IsQuarterly reports whether the fiscal period is Q1..Q4 (case-insensitive).
func (f FactRecord) IsQuarterly() bool {
	switch strings.ToUpper(f.FiscalPeriod) {
	case PeriodQ1, PeriodQ2, PeriodQ3, PeriodQ4:
		return true
	}
	return false
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}

// FactQuery narrows a FactsForConcept lookup.
type FactQuery struct {
	FiscalPeriod string // empty means any period
	Limit        int    // 0 means unlimited
}

// FactOption configures a FactQuery.
type FactOption func(*FactQuery)

// WithFiscalPeriod restricts results to one fiscal period.
func WithFiscalPeriod(period string) FactOption {
	return func(q *FactQuery) { q.FiscalPeriod = period }
}

// WithLimit caps the number of records returned.
func WithLimit(n int) FactOption {
	return func(q *FactQuery) { q.Limit = n }
}

// NewFactQuery applies opts to an empty query.
func NewFactQuery(opts ...FactOption) FactQuery {
	var q FactQuery
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Matches reports whether f satisfies the query's period filter.
func (q FactQuery) Matches(f FactRecord) bool {
	return q.FiscalPeriod == "" || strings.EqualFold(f.FiscalPeriod, q.FiscalPeriod)
}

// SortFactsNewestFirst orders records by end date, then filing date, both
// descending. The sort is stable.
func SortFactsNewestFirst(records []FactRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].EndDate != records[j].EndDate {
			return records[i].EndDate > records[j].EndDate
		}
		return records[i].Filed > records[j].Filed
	})
}

// ApplyFactQuery filters records by q, sorts them newest first and applies
// the limit.
func ApplyFactQuery(records []FactRecord, q FactQuery) []FactRecord {
	out := make([]FactRecord, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	SortFactsNewestFirst(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
