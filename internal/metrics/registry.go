package metrics

import (
	"fmt"
	"sort"
)

// Registry maps metric ids to calculators. It is built once and never mutated.
type Registry struct {
	metrics map[string]Metric
}

// NewRegistry returns a registry holding every metric.
func NewRegistry() *Registry {
	all := []Metric{
		newWorkingCapital(),
		newCurrentRatio(),
		newLongTermDebt(),
		newShortTermDebtShare(),
		newEPSTTM(),
		newEPSAverage(),
		newGrahamEPSCAGR(),
		newEPSStreak(),
		newDebtPaydownYears(),
		newNetDebtToEBITDA(),
		newInterestCoverage(),
		newReturnOnInvestedCapital(),
		newROCGreenblatt(),
		newROEGreenblatt(),
		newMcapexFY(),
		newMcapex5Y(),
		newMcapexTTM(),
		newNWCMostRecentQuarter(),
		newNWCFY(),
		newDeltaNWCTTM(),
		newDeltaNWCFY(),
		newDeltaNWCMaint(),
		newOwnerEarningsEquityTTM(),
		newOwnerEarningsEquity5Y(),
		newOwnerEarningsYield(),
		newOwnerEarningsYield5Y(),
		newPriceToFCF(),
		newEarningsYield(),
		newGrahamMultiplier(),
		newMarketCap(),
	}
	reg := &Registry{metrics: make(map[string]Metric, len(all))}
	for _, m := range all {
		reg.metrics[m.ID()] = m
	}
	return reg
}

// Get returns the metric registered under id.
func (r *Registry) Get(id string) (Metric, bool) {
	m, ok := r.metrics[id]
	return m, ok
}

// IDs returns every registered id in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.metrics))
	for id := range r.metrics {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Select resolves ids to metrics; an empty list selects all of them.
func (r *Registry) Select(ids []string) ([]Metric, error) {
	if len(ids) == 0 {
		ids = r.IDs()
	}
	out := make([]Metric, 0, len(ids))
	for _, id := range ids {
		m, ok := r.metrics[id]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", id)
		}
		out = append(out, m)
	}
	return out, nil
}
