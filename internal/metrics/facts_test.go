package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

func endDates(records []models.FactRecord) []string {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.EndDate)
	}
	return out
}

func TestFilterQuarterly(t *testing.T) {
	noValue := fact("Revenues", "Q2", "2024-06-30", 0)
	noValue.Value = nil

	records := []models.FactRecord{
		fact("Revenues", "q4", "2024-12-31", 4),
		fact("Revenues", "Q4", "2024-12-31", 99),
		fact("Revenues", models.PeriodFY, "2024-12-31", 400),
		fact("Revenues", "Q3", "2024-09-30", 3),
		noValue,
		fact("Revenues", "Q1", "2024-03-31", 1),
	}

	got := filterQuarterly(records)
	assert.Equal(t, []string{"2024-12-31", "2024-09-30", "2024-03-31"}, endDates(got))
	assert.Equal(t, 4.0, got[0].Float())
}

func TestFilterUniqueFY(t *testing.T) {
	q4 := fyFact("Revenues", 2023, 10)
	q4.Frame = "CY2023Q4"
	unframed := fyFact("Revenues", 2021, 30)
	unframed.Frame = ""

	records := []models.FactRecord{
		fyFact("Revenues", 2024, 1),
		fyFact("Revenues", 2024, 2),
		q4,
		fyFact("Revenues", 2022, 20),
		unframed,
	}

	got := filterUniqueFY(records)
	assert.Equal(t, []string{"2024-12-31", "2022-12-31"}, endDates(got))
	assert.Equal(t, 1.0, got[0].Float())
}

func TestFilterFY(t *testing.T) {
	records := []models.FactRecord{
		fact("Revenues", "fy", "2024-12-31", 1),
		fact("Revenues", models.PeriodFY, "2024-12-31", 2),
		fact("Revenues", "Q4", "2024-12-31", 3),
		fact("Revenues", models.PeriodFY, "2023-12-31", 4),
	}

	got := filterFY(records)
	assert.Equal(t, []string{"2024-12-31", "2023-12-31"}, endDates(got))
}
