package metrics

import (
	"math"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// amount is a currency-normalized value with the date it was observed.
type amount struct {
	value    float64
	currency string
	asOf     string
}

func amountOf(rec models.FactRecord) amount {
	v, c := models.NormalizeAmount(rec.Float(), rec.Currency)
	return amount{value: v, currency: c, asOf: rec.EndDate}
}

func absAmount(a amount) amount {
	a.value = math.Abs(a.value)
	return a
}

// currencyOf merges the currencies of amounts; ok is false on conflict.
func currencyOf(amounts ...amount) (string, bool) {
	codes := make([]string, len(amounts))
	for i, a := range amounts {
		codes[i] = a.currency
	}
	return models.MergeCurrencies(codes...)
}

// sumAmounts adds amounts sharing one currency. The result is dated at the
// latest input.
func sumAmounts(amounts ...amount) (amount, bool) {
	currency, ok := currencyOf(amounts...)
	if !ok {
		return amount{}, false
	}
	out := amount{currency: currency}
	for _, a := range amounts {
		out.value += a.value
		out.asOf = maxDate(out.asOf, a.asOf)
	}
	return out, true
}

// sumRecords normalizes and sums records.
func sumRecords(records []models.FactRecord) (amount, bool) {
	amounts := make([]amount, len(records))
	for i, rec := range records {
		amounts[i] = amountOf(rec)
	}
	return sumAmounts(amounts...)
}

// ttm sums the four newest quarterly values of the first concept that has
// them recent and in one currency. reason is empty on success.
func (r *reader) ttm(concepts []string) (amount, string) {
	reason := ReasonMissingData
	for _, concept := range concepts {
		quarterly := filterQuarterly(r.facts(concept))
		if r.err != nil {
			return amount{}, ReasonMissingData
		}
		if len(quarterly) < 4 {
			continue
		}
		if !r.recent(quarterly[0].EndDate, maxFactAge) {
			reason = ReasonStaleData
			continue
		}
		total, ok := sumRecords(quarterly[:4])
		if !ok {
			reason = ReasonCurrencyConflict
			continue
		}
		total.asOf = quarterly[0].EndDate
		return total, ""
	}
	return amount{}, reason
}

// latestRecent returns the newest recent amount for the first concept that
// has a value. reason is empty on success.
func (r *reader) latestRecent(maxAgeDays int, concepts ...string) (amount, string) {
	rec := r.latestOf(concepts...)
	if rec == nil {
		return amount{}, ReasonMissingData
	}
	if !r.recent(rec.EndDate, maxAgeDays) {
		return amount{}, ReasonStaleData
	}
	return amountOf(*rec), ""
}
