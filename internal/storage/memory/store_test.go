package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

func rec(concept, period, end, filed string, v float64) models.FactRecord {
	return models.FactRecord{
		Concept:      concept,
		FiscalPeriod: period,
		EndDate:      end,
		Filed:        filed,
		Unit:         "USD",
		Value:        models.Float64Ptr(v),
	}
}

func TestFactStore_ReplaceFacts(t *testing.T) {
	ctx := context.Background()
	s := NewFactStore()

	n, err := s.ReplaceFacts(ctx, "AAA.US", []models.FactRecord{
		rec("Assets", "FY", "2023-12-31", "2024-02-01", 1),
		rec("Assets", "FY", "2023-12-31", "2024-03-01", 2),
		rec("Assets", "FY", "2024-12-31", "2025-02-01", 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n, "duplicate keys collapse")

	got, err := s.FactsForConcept(ctx, "AAA.US", "Assets")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-12-31", got[0].EndDate)
	assert.Equal(t, 2.0, got[1].Float(), "last record per key wins")
	assert.Equal(t, "AAA.US", got[0].Symbol)

	n, err = s.ReplaceFacts(ctx, "AAA.US", []models.FactRecord{rec("Liabilities", "FY", "2024-12-31", "", 9)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	got, err = s.FactsForConcept(ctx, "AAA.US", "Assets")
	require.NoError(t, err)
	assert.Empty(t, got, "replace drops prior facts")

	_, err = s.ReplaceFacts(ctx, "AAA.US", nil)
	require.NoError(t, err)
	symbols, err := s.ListSymbols(ctx)
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestFactStore_QueryOptions(t *testing.T) {
	ctx := context.Background()
	s := NewFactStore()
	_, err := s.ReplaceFacts(ctx, "AAA.US", []models.FactRecord{
		rec("EPS", "Q1", "2025-03-31", "2025-05-01", 1),
		rec("EPS", "FY", "2024-12-31", "2025-02-01", 4),
		rec("EPS", "fy", "2023-12-31", "2024-02-01", 3),
		rec("EPS", "FY", "2022-12-31", "2023-02-01", 2),
	})
	require.NoError(t, err)

	fy, err := s.FactsForConcept(ctx, "AAA.US", "EPS", models.WithFiscalPeriod(models.PeriodFY), models.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, fy, 2)
	assert.Equal(t, "2024-12-31", fy[0].EndDate)
	assert.Equal(t, "2023-12-31", fy[1].EndDate)

	latest, err := s.LatestFact(ctx, "AAA.US", "EPS")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Q1", latest.FiscalPeriod)

	missing, err := s.LatestFact(ctx, "BBB.US", "EPS")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFactStore_SameEndDateOrdersByFiled(t *testing.T) {
	ctx := context.Background()
	s := NewFactStore()
	older := rec("EPS", "FY", "2024-12-31", "2025-01-15", 1)
	newer := rec("EPS", "FY", "2024-12-31", "2025-02-15", 2)
	newer.Unit = "USD/shares"
	_, err := s.ReplaceFacts(ctx, "AAA.US", []models.FactRecord{older, newer})
	require.NoError(t, err)

	got, err := s.FactsForConcept(ctx, "AAA.US", "EPS")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-02-15", got[0].Filed)
}

func TestMetricsStore(t *testing.T) {
	ctx := context.Background()
	s := NewMetricsStore()

	missing, err := s.Fetch(ctx, "AAA.US", "eps_ttm")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Upsert(ctx, "AAA.US", "eps_ttm", 1, "2024-12-31"))
	require.NoError(t, s.Upsert(ctx, "AAA.US", "eps_ttm", 2, "2025-03-31"))
	require.NoError(t, s.Upsert(ctx, "AAA.US", "current_ratio", 1.5, "2025-03-31"))

	got, err := s.Fetch(ctx, "AAA.US", "eps_ttm")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.0, got.Value)
	assert.Equal(t, "2025-03-31", got.AsOf)
	assert.False(t, got.ComputedAt.IsZero())

	all, err := s.ListForSymbol(ctx, "AAA.US")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "current_ratio", all[0].MetricID)
}

func TestMarketAndRawStores(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	assert.Equal(t, "memory", m.Backend())

	snap, err := m.MarketStore().LatestSnapshot(ctx, "AAA.US")
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, m.MarketStore().UpsertSnapshot(ctx, &models.PriceSnapshot{Symbol: "AAA.US", Price: 10, AsOf: "2025-06-27"}))
	snap, err = m.MarketStore().LatestSnapshot(ctx, "AAA.US")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 10.0, snap.Price)

	raw, err := m.RawStore().GetRaw(ctx, models.ProviderSEC, "AAA.US")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, m.RawStore().SaveRaw(ctx, &models.RawPayload{Provider: models.ProviderSEC, Symbol: "AAA.US", Data: []byte(`{}`)}))
	raw, err = m.RawStore().GetRaw(ctx, models.ProviderSEC, "AAA.US")
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.Equal(t, []byte(`{}`), raw.Data)
	assert.NoError(t, m.Close())
}
