package models

import "time"

// MetricResult is the computed value of a metric for a symbol. AsOf is an
// ISO date derived from the contributing facts or a market snapshot.
type MetricResult struct {
	Symbol   string  `json:"symbol"`
	MetricID string  `json:"metric_id"`
	Value    float64 `json:"value"`
	AsOf     string  `json:"as_of"`
}

// MetricRecord is a persisted MetricResult.
type MetricRecord struct {
	Symbol     string    `json:"symbol" badgerhold:"index"`
	MetricID   string    `json:"metric_id"`
	Value      float64   `json:"value"`
	AsOf       string    `json:"as_of"`
	ComputedAt time.Time `json:"computed_at"`
}

// MetricRecordID is the storage key for (symbol, metric id).
func MetricRecordID(symbol, metricID string) string {
	return symbol + "|" + metricID
}
