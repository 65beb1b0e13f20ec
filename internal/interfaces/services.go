package interfaces

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// IngestService fetches provider payloads and replaces a symbol's facts.
type IngestService interface {
	IngestSEC(ctx context.Context, symbol, cik string) (int, error)
	IngestEODHD(ctx context.Context, symbol string) (int, error)
	NormalizeStored(ctx context.Context, provider, symbol string) (int, error)
}

// MarketDataService refreshes price snapshots.
type MarketDataService interface {
	Refresh(ctx context.Context, symbol string) (*models.PriceSnapshot, error)
}

// ComputeRequest selects symbols and metrics for a run. Empty MetricIDs
// means every registered metric.
type ComputeRequest struct {
	Symbols   []string
	MetricIDs []string
}

// RunSummary reports the outcome of a compute run.
type RunSummary struct {
	RunID    string `json:"run_id"`
	Symbols  int    `json:"symbols"`
	Computed int    `json:"computed"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// ComputeService computes and persists metrics.
type ComputeService interface {
	Run(ctx context.Context, req ComputeRequest) (*RunSummary, error)
}
