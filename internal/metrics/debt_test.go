package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

func debtFacts(short, long float64) []models.FactRecord {
	return []models.FactRecord{
		fact("ShortTermDebt", "Q1", "2025-03-31", short),
		fact("LongTermDebt", "Q1", "2025-03-31", long),
	}
}

func TestDebtPaydownYears(t *testing.T) {
	env := newTestEnv(t, join(
		debtFacts(50, 100),
		quarterly("NetCashProvidedByUsedInOperatingActivities", 20, 20, 20, 20),
		quarterly("CapitalExpenditures", 5, 5, 5, 5),
	))
	res := env.compute(t, newDebtPaydownYears())
	require.NotNil(t, res)
	assert.InDelta(t, 2.5, res.Value, 1e-12)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestDebtPaydownYears_MissingCapexCountsAsZero(t *testing.T) {
	env := newTestEnv(t, join(
		debtFacts(50, 100),
		quarterly("NetCashProvidedByUsedInOperatingActivities", 15, 15, 15, 15),
	))
	res := env.compute(t, newDebtPaydownYears())
	require.NotNil(t, res)
	assert.InDelta(t, 2.5, res.Value, 1e-12)
}

func TestDebtPaydownYears_NonPositiveFCF(t *testing.T) {
	env := newTestEnv(t, join(
		debtFacts(50, 100),
		quarterly("NetCashProvidedByUsedInOperatingActivities", 5, 5, 5, 5),
		quarterly("CapitalExpenditures", 10, 10, 10, 10),
	))
	assert.Nil(t, env.compute(t, newDebtPaydownYears()))
}

func TestNetDebtToEBITDA(t *testing.T) {
	env := newTestEnv(t, join(
		debtFacts(20, 100),
		[]models.FactRecord{fact("CashAndShortTermInvestments", "Q1", "2025-03-31", 40)},
		quarterly("EBITDA", 25, 25, 25, 25),
	))
	res := env.compute(t, newNetDebtToEBITDA())
	require.NotNil(t, res)
	assert.InDelta(t, 0.8, res.Value, 1e-12)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestNetDebtToEBITDA_NegativeEBITDA(t *testing.T) {
	env := newTestEnv(t, join(
		debtFacts(20, 100),
		[]models.FactRecord{fact("CashAndShortTermInvestments", "Q1", "2025-03-31", 40)},
		quarterly("EBITDA", -25, 5, 5, 5),
	))
	assert.Nil(t, env.compute(t, newNetDebtToEBITDA()))
}

func TestInterestCoverage(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("OperatingIncomeLoss", 100, 100, 100, 100, 100),
		quarterly("InterestExpense", 25, 25, 25, 25),
	))
	res := env.compute(t, newInterestCoverage())
	require.NotNil(t, res)
	assert.Equal(t, 4.0, res.Value)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestInterestCoverage_RequiresFourAlignedQuarters(t *testing.T) {
	interest := quarterly("InterestExpense", 25, 25, 25, 25)
	interest[3].EndDate = "2024-07-01"
	env := newTestEnv(t, join(
		quarterly("OperatingIncomeLoss", 100, 100, 100, 100),
		interest,
	))
	assert.Nil(t, env.compute(t, newInterestCoverage()))
}
