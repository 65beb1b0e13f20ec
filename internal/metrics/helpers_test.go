package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/models"
	"github.com/emretezel/pyvalue-sub000/internal/storage/memory"
)

const testSymbol = "AAA.US"

// testNow pins the clock; the short window cutoff is 2024-05-31 and the long
// window cutoff is 2023-07-01.
var testNow = time.Date(2025, time.June, 30, 15, 0, 0, 0, time.UTC)

// recentQuarters are quarter ends, newest first.
var recentQuarters = []string{"2025-03-31", "2024-12-31", "2024-09-30", "2024-06-30", "2024-03-31", "2023-12-31"}

func daysAgo(n int) string {
	return testNow.AddDate(0, 0, -n).Format(common.DateLayout)
}

func fyEnd(year int) string {
	return fmt.Sprintf("%d-12-31", year)
}

func fact(concept, period, endDate string, value float64) models.FactRecord {
	return models.FactRecord{
		Symbol:       testSymbol,
		Concept:      concept,
		FiscalPeriod: period,
		EndDate:      endDate,
		Unit:         "USD",
		Currency:     "USD",
		Value:        models.Float64Ptr(value),
	}
}

func withCurrency(rec models.FactRecord, code string) models.FactRecord {
	rec.Currency = code
	rec.Unit = code
	return rec
}

func fyFact(concept string, year int, value float64) models.FactRecord {
	rec := fact(concept, models.PeriodFY, fyEnd(year), value)
	rec.Frame = fmt.Sprintf("CY%d", year)
	return rec
}

// fySeries builds FY facts for consecutive years ending at newest, values
// newest first.
func fySeries(concept string, newest int, values ...float64) []models.FactRecord {
	out := make([]models.FactRecord, len(values))
	for i, v := range values {
		out[i] = fyFact(concept, newest-i, v)
	}
	return out
}

// quarterly builds quarterly facts on recentQuarters, values newest first.
func quarterly(concept string, values ...float64) []models.FactRecord {
	periods := []string{"Q1", "Q4", "Q3", "Q2", "Q1", "Q4"}
	out := make([]models.FactRecord, len(values))
	for i, v := range values {
		out[i] = fact(concept, periods[i], recentQuarters[i], v)
	}
	return out
}

func join(groups ...[]models.FactRecord) []models.FactRecord {
	var out []models.FactRecord
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// staticFX converts with fixed pair rates keyed like "EURUSD", falling back
// to the inverse pair.
type staticFX map[string]float64

func (f staticFX) Convert(amount float64, from, to, _ string) (float64, bool) {
	if from == to {
		return amount, true
	}
	if rate, ok := f[from+to]; ok {
		return amount * rate, true
	}
	if rate, ok := f[to+from]; ok && rate != 0 {
		return amount / rate, true
	}
	return 0, false
}

type testEnv struct {
	env    *Env
	market *memory.MarketStore
}

func newTestEnv(t *testing.T, records []models.FactRecord) *testEnv {
	t.Helper()
	facts := memory.NewFactStore()
	_, err := facts.ReplaceFacts(context.Background(), testSymbol, records)
	require.NoError(t, err)
	market := memory.NewMarketStore()
	env := NewEnv(facts, market, staticFX{}, common.NewSilentLogger())
	env.Now = func() time.Time { return testNow }
	return &testEnv{env: env, market: market}
}

func (e *testEnv) withSnapshot(t *testing.T, price, marketCap float64, currency string) *testEnv {
	t.Helper()
	require.NoError(t, e.market.UpsertSnapshot(context.Background(), &models.PriceSnapshot{
		Symbol:    testSymbol,
		Price:     price,
		MarketCap: marketCap,
		Currency:  currency,
		AsOf:      "2025-06-27",
	}))
	return e
}

func (e *testEnv) compute(t *testing.T, m Metric) *models.MetricResult {
	t.Helper()
	res, err := m.Compute(context.Background(), testSymbol, e.env)
	require.NoError(t, err)
	return res
}

// failingFacts fails every read.
type failingFacts struct{}

var errBoom = errors.New("boom")

func (failingFacts) FactsForConcept(context.Context, string, string, ...models.FactOption) ([]models.FactRecord, error) {
	return nil, errBoom
}

func (failingFacts) LatestFact(context.Context, string, string) (*models.FactRecord, error) {
	return nil, errBoom
}
