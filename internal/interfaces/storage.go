// Package interfaces defines service contracts for pyvalue
package interfaces

import (
	"context"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// StorageManager coordinates the storage backends
type StorageManager interface {
	FactStore() FactStore
	MetricsStore() MetricsRepository
	MarketStore() MarketDataStore
	RawStore() RawPayloadStore

	// Backend names the active engine ("badger" or "surrealdb").
	Backend() string

	Close() error
}

// FactRepository is the read side used by metric calculators. It must be
// safe for concurrent use.
type FactRepository interface {
	// FactsForConcept returns records newest end_date first, then newest
	// filed first. An unknown symbol or concept yields an empty slice.
	FactsForConcept(ctx context.Context, symbol, concept string, opts ...models.FactOption) ([]models.FactRecord, error)

	// LatestFact returns the first record FactsForConcept would return, or nil.
	LatestFact(ctx context.Context, symbol, concept string) (*models.FactRecord, error)
}

// FactStore adds the ingestion write path.
type FactStore interface {
	FactRepository

	// ReplaceFacts deletes every fact for symbol and writes records. An empty
	// batch still clears the symbol. Returns the number of records stored.
	ReplaceFacts(ctx context.Context, symbol string, records []models.FactRecord) (int, error)

	// ListSymbols returns every symbol with at least one stored fact.
	ListSymbols(ctx context.Context) ([]string, error)
}

// MarketDataRepository reads price snapshots.
type MarketDataRepository interface {
	LatestSnapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error)
}

// MarketDataStore adds the price refresh write path.
type MarketDataStore interface {
	MarketDataRepository
	UpsertSnapshot(ctx context.Context, snapshot *models.PriceSnapshot) error
}

// MetricsRepository persists computed metrics keyed by (symbol, metric id).
type MetricsRepository interface {
	Upsert(ctx context.Context, symbol, metricID string, value float64, asOf string) error

	// Fetch returns nil when the metric was never stored.
	Fetch(ctx context.Context, symbol, metricID string) (*models.MetricRecord, error)

	ListForSymbol(ctx context.Context, symbol string) ([]*models.MetricRecord, error)
}

// RawPayloadStore keeps provider responses so facts can be re-normalized offline.
type RawPayloadStore interface {
	SaveRaw(ctx context.Context, payload *models.RawPayload) error

	// GetRaw returns nil when nothing was stored.
	GetRaw(ctx context.Context, provider, symbol string) (*models.RawPayload, error)
}

// FXRateStore converts amounts between currencies.
type FXRateStore interface {
	// Convert returns amount unchanged when from and to match, and false when
	// either code is empty or no rate series covers the pair.
	Convert(amount float64, from, to, asOf string) (float64, bool)
}
