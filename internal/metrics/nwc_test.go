package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// fyNWC builds FY balances whose working capital equals values, newest first.
func fyNWC(newest int, values ...float64) []models.FactRecord {
	zeros := make([]float64, len(values))
	return join(
		fySeries("AssetsCurrent", newest, values...),
		fySeries("LiabilitiesCurrent", newest, zeros...),
		fySeries("CashAndShortTermInvestments", newest, zeros...),
	)
}

func TestNWCMostRecentQuarter(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("AssetsCurrent", 500, 480),
		quarterly("LiabilitiesCurrent", 300, 300),
		quarterly("CashAndShortTermInvestments", 100, 100),
		quarterly("ShortTermDebt", 50, 50),
	))
	res := env.compute(t, newNWCMostRecentQuarter())
	require.NotNil(t, res)
	assert.Equal(t, 150.0, res.Value)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestNWCMostRecentQuarter_CashFallback(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("AssetsCurrent", 500),
		quarterly("LiabilitiesCurrent", 300),
		quarterly("CashAndCashEquivalents", 60),
		quarterly("ShortTermInvestments", 40),
		quarterly("ShortTermDebt", 50),
	))
	res := env.compute(t, newNWCMostRecentQuarter())
	require.NotNil(t, res)
	assert.Equal(t, 150.0, res.Value)
}

func TestNWCMostRecentQuarter_DebtAboveLiabilitiesFloors(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("AssetsCurrent", 500),
		quarterly("LiabilitiesCurrent", 100),
		quarterly("CashAndShortTermInvestments", 100),
		quarterly("ShortTermDebt", 150),
	))
	res := env.compute(t, newNWCMostRecentQuarter())
	require.NotNil(t, res)
	assert.Equal(t, 400.0, res.Value)
}

func TestNWCMostRecentQuarter_MissingCashSkipsDate(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("AssetsCurrent", 500),
		quarterly("LiabilitiesCurrent", 300),
	))
	assert.Nil(t, env.compute(t, newNWCMostRecentQuarter()))
}

func TestNWCFY(t *testing.T) {
	env := newTestEnv(t, fyNWC(2024, 190, 150))
	res := env.compute(t, newNWCFY())
	require.NotNil(t, res)
	assert.Equal(t, 190.0, res.Value)
	assert.Equal(t, "2024-12-31", res.AsOf)

	stale := newTestEnv(t, fyNWC(2021, 190))
	assert.Nil(t, stale.compute(t, newNWCFY()))
}

func TestDeltaNWCFY(t *testing.T) {
	env := newTestEnv(t, fyNWC(2024, 190, 150))
	res := env.compute(t, newDeltaNWCFY())
	require.NotNil(t, res)
	assert.Equal(t, 40.0, res.Value)

	gap := newTestEnv(t, join(fyNWC(2024, 190), fyNWC(2022, 150)))
	assert.Nil(t, gap.compute(t, newDeltaNWCFY()))
}

func TestDeltaNWCTTM_MatchesFiscalPeriod(t *testing.T) {
	env := newTestEnv(t, join(
		quarterly("AssetsCurrent", 500, 470, 460, 450, 420),
		quarterly("LiabilitiesCurrent", 0, 0, 0, 0, 0),
		quarterly("CashAndShortTermInvestments", 0, 0, 0, 0, 0),
	))
	res := env.compute(t, newDeltaNWCTTM())
	require.NotNil(t, res)
	// 2025 Q1 against 2024 Q1.
	assert.Equal(t, 80.0, res.Value)
	assert.Equal(t, "2025-03-31", res.AsOf)
}

func TestDeltaNWCMaint(t *testing.T) {
	env := newTestEnv(t, fyNWC(2024, 190, 150, 130, 100))
	res := env.compute(t, newDeltaNWCMaint())
	require.NotNil(t, res)
	assert.InDelta(t, 30.0, res.Value, 1e-12)
	assert.Equal(t, "2024-12-31", res.AsOf)
}

func TestDeltaNWCMaint_FloorsAtZero(t *testing.T) {
	env := newTestEnv(t, fyNWC(2024, 100, 130, 150, 190))
	res := env.compute(t, newDeltaNWCMaint())
	require.NotNil(t, res)
	assert.Equal(t, 0.0, res.Value)
}

func TestDeltaNWCMaint_NeedsFourYears(t *testing.T) {
	env := newTestEnv(t, fyNWC(2024, 190, 150, 130))
	assert.Nil(t, env.compute(t, newDeltaNWCMaint()))
}
