package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

func investedCapitalFacts() []models.FactRecord {
	return join(
		quarterly("ShortTermDebt", 10, 10),
		quarterly("LongTermDebt", 90, 90),
		quarterly("StockholdersEquity", 320, 280),
		quarterly("CashAndShortTermInvestments", 20, 0),
	)
}

func TestReturnOnInvestedCapital(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("OperatingIncomeLoss", 25, 25, 25, 25),
		quarterly("IncomeTaxExpense", 5, 5, 5, 5),
		quarterly("IncomeBeforeIncomeTaxes", 25, 25, 25, 25),
		investedCapitalFacts(),
	))
	res := env.compute(t, newReturnOnInvestedCapital())
	require.NotNil(t, res)
	// NOPAT 100*(1-0.2)=80 over average capital (400+380)/2.
	assert.InDelta(t, 80.0/390.0, res.Value, 1e-12)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestReturnOnInvestedCapital_DefaultTaxRate(t *testing.T) {
	tests := []struct {
		name  string
		extra []models.FactRecord
	}{
		{"missing tax facts", nil},
		{"rate above one", join(
			quarterly("IncomeTaxExpense", 50, 50, 50, 50),
			quarterly("IncomeBeforeIncomeTaxes", 25, 25, 25, 25),
		)},
		{"non-positive pretax", join(
			quarterly("IncomeTaxExpense", 5, 5, 5, 5),
			quarterly("IncomeBeforeIncomeTaxes", -25, 0, 0, 0),
		)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, join(
				quarterly("OperatingIncomeLoss", 25, 25, 25, 25),
				investedCapitalFacts(),
				tt.extra,
			))
			res := env.compute(t, newReturnOnInvestedCapital())
			require.NotNil(t, res)
			assert.InDelta(t, 79.0/390.0, res.Value, 1e-12)
		})
	}
}

func TestReturnOnInvestedCapital_FallsBackToFYCapital(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("OperatingIncomeLoss", 25, 25, 25, 25),
		fySeries("ShortTermDebt", 2024, 10, 10),
		fySeries("LongTermDebt", 2024, 90, 90),
		fySeries("StockholdersEquity", 2024, 300, 300),
		fySeries("CashAndShortTermInvestments", 2024, 0, 0),
	))
	res := env.compute(t, newReturnOnInvestedCapital())
	require.NotNil(t, res)
	assert.InDelta(t, 79.0/400.0, res.Value, 1e-12)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestReturnOnInvestedCapital_SingleCapitalPoint(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("OperatingIncomeLoss", 25, 25, 25, 25),
		quarterly("ShortTermDebt", 10),
		quarterly("LongTermDebt", 90),
		quarterly("StockholdersEquity", 300),
		quarterly("CashAndShortTermInvestments", 0),
	))
	assert.Nil(t, env.compute(t, newReturnOnInvestedCapital()))
}

func TestROCGreenblatt(t *testing.T) {
	env := newTestEnv(t, join(
		fySeries("OperatingIncomeLoss", 2024, 100, 80, 60),
		fySeries("PropertyPlantAndEquipmentNet", 2024, 300, 300, 50),
		fySeries("AssetsCurrent", 2024, 200, 200, 50),
		fySeries("LiabilitiesCurrent", 2024, 100, 100, 200),
	))
	res := env.compute(t, newROCGreenblatt())
	require.NotNil(t, res)
	// 2022 has non-positive tangible capital and is skipped.
	assert.InDelta(t, (0.25+0.2)/2, res.Value, 1e-12)
	assert.Equal(t, "2024-12-31", res.AsOf)
}

func TestROCGreenblatt_UsesEBITFallbackConcept(t *testing.T) {
	env := newTestEnv(t, join(
		fySeries("OperatingProfitLoss", 2024, 100),
		fySeries("NetPropertyPlantAndEquipment", 2024, 300),
		fySeries("AssetsCurrent", 2024, 200),
		fySeries("LiabilitiesCurrent", 2024, 100),
	))
	res := env.compute(t, newROCGreenblatt())
	require.NotNil(t, res)
	assert.InDelta(t, 0.25, res.Value, 1e-12)
}

func TestROEGreenblatt(t *testing.T) {
	env := newTestEnv(t, join(
		fySeries("NetIncomeLossAvailableToCommonStockholdersBasic", 2024, 100, 80),
		fySeries("CommonStockholdersEquity", 2024, 1000, 600, 400),
	))
	res := env.compute(t, newROEGreenblatt())
	require.NotNil(t, res)
	assert.InDelta(t, (100.0/800+80.0/500)/2, res.Value, 1e-12)
	assert.Equal(t, "2024-12-31", res.AsOf)
}

func TestROEGreenblatt_DerivesCommonFigures(t *testing.T) {
	env := newTestEnv(t, join(
		fySeries("NetIncomeLoss", 2024, 110, 90),
		fySeries("StockholdersEquity", 2024, 1050, 650),
		[]models.FactRecord{
			fact("PreferredStockDividends", models.PeriodFY, "2024-12-31", 10),
			fact("PreferredStock", models.PeriodFY, "2024-12-31", 50),
		},
	))
	res := env.compute(t, newROEGreenblatt())
	require.NotNil(t, res)
	// Only 2024 has equity for both the year and the prior year.
	assert.InDelta(t, 100.0/800, res.Value, 1e-12)
}

func TestROEGreenblatt_NeedsTwoYears(t *testing.T) {
	env := newTestEnv(t, join(
		fySeries("NetIncomeLossAvailableToCommonStockholdersBasic", 2024, 100),
		fySeries("CommonStockholdersEquity", 2024, 1000, 600),
	))
	assert.Nil(t, env.compute(t, newROEGreenblatt()))
}
