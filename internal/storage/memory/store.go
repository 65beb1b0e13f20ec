// Package memory provides in-process implementations of the storage
// interfaces. It backs tests and one-shot CLI runs that need no persistence.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// Manager bundles the in-memory stores.
type Manager struct {
	facts   *FactStore
	metrics *MetricsStore
	market  *MarketStore
	raw     *RawStore
}

// NewManager creates empty stores.
func NewManager() *Manager {
	return &Manager{
		facts:   NewFactStore(),
		metrics: NewMetricsStore(),
		market:  NewMarketStore(),
		raw:     NewRawStore(),
	}
}

func (m *Manager) FactStore() interfaces.FactStore            { return m.facts }
func (m *Manager) MetricsStore() interfaces.MetricsRepository { return m.metrics }
func (m *Manager) MarketStore() interfaces.MarketDataStore    { return m.market }
func (m *Manager) RawStore() interfaces.RawPayloadStore       { return m.raw }
func (m *Manager) Backend() string                            { return "memory" }
func (m *Manager) Close() error                               { return nil }

// FactStore keeps facts per symbol.
type FactStore struct {
	mu    sync.RWMutex
	facts map[string][]models.FactRecord
}

// NewFactStore creates an empty FactStore.
func NewFactStore() *FactStore {
	return &FactStore{facts: make(map[string][]models.FactRecord)}
}

// ReplaceFacts drops the symbol's facts and stores records, keeping the last
// record per key.
func (s *FactStore) ReplaceFacts(_ context.Context, symbol string, records []models.FactRecord) (int, error) {
	index := make(map[models.FactKey]int, len(records))
	stored := make([]models.FactRecord, 0, len(records))
	for _, rec := range records {
		rec.Symbol = symbol
		if i, ok := index[rec.Key()]; ok {
			stored[i] = rec
			continue
		}
		index[rec.Key()] = len(stored)
		stored = append(stored, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(stored) == 0 {
		delete(s.facts, symbol)
		return 0, nil
	}
	s.facts[symbol] = stored
	return len(stored), nil
}

// FactsForConcept returns matching records newest first.
func (s *FactStore) FactsForConcept(_ context.Context, symbol, concept string, opts ...models.FactOption) ([]models.FactRecord, error) {
	s.mu.RLock()
	var matched []models.FactRecord
	for _, rec := range s.facts[symbol] {
		if rec.Concept == concept {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()
	return models.ApplyFactQuery(matched, models.NewFactQuery(opts...)), nil
}

// LatestFact returns the newest record for concept, or nil.
func (s *FactStore) LatestFact(ctx context.Context, symbol, concept string) (*models.FactRecord, error) {
	records, err := s.FactsForConcept(ctx, symbol, concept, models.WithLimit(1))
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

// ListSymbols returns stored symbols sorted.
func (s *FactStore) ListSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.facts))
	for symbol := range s.facts {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out, nil
}

// MetricsStore keeps metric values by (symbol, metric id).
type MetricsStore struct {
	mu      sync.RWMutex
	records map[string]*models.MetricRecord
	now     func() time.Time
}

// NewMetricsStore creates an empty MetricsStore.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{records: make(map[string]*models.MetricRecord), now: time.Now}
}

func (s *MetricsStore) Upsert(_ context.Context, symbol, metricID string, value float64, asOf string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[models.MetricRecordID(symbol, metricID)] = &models.MetricRecord{
		Symbol:     symbol,
		MetricID:   metricID,
		Value:      value,
		AsOf:       asOf,
		ComputedAt: s.now(),
	}
	return nil
}

func (s *MetricsStore) Fetch(_ context.Context, symbol, metricID string) (*models.MetricRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[models.MetricRecordID(symbol, metricID)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *MetricsStore) ListForSymbol(_ context.Context, symbol string) ([]*models.MetricRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.MetricRecord
	for _, rec := range s.records {
		if rec.Symbol == symbol {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetricID < out[j].MetricID })
	return out, nil
}

// MarketStore keeps the latest snapshot per symbol.
type MarketStore struct {
	mu        sync.RWMutex
	snapshots map[string]*models.PriceSnapshot
}

// NewMarketStore creates an empty MarketStore.
func NewMarketStore() *MarketStore {
	return &MarketStore{snapshots: make(map[string]*models.PriceSnapshot)}
}

func (s *MarketStore) LatestSnapshot(_ context.Context, symbol string) (*models.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[symbol]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (s *MarketStore) UpsertSnapshot(_ context.Context, snapshot *models.PriceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *snapshot
	s.snapshots[snapshot.Symbol] = &cp
	return nil
}

// RawStore keeps provider payloads.
type RawStore struct {
	mu       sync.RWMutex
	payloads map[string]*models.RawPayload
}

// NewRawStore creates an empty RawStore.
func NewRawStore() *RawStore {
	return &RawStore{payloads: make(map[string]*models.RawPayload)}
}

func (s *RawStore) SaveRaw(_ context.Context, payload *models.RawPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *payload
	s.payloads[models.RawPayloadID(payload.Provider, payload.Symbol)] = &cp
	return nil
}

func (s *RawStore) GetRaw(_ context.Context, provider, symbol string) (*models.RawPayload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payloads[models.RawPayloadID(provider, symbol)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

var (
	_ interfaces.StorageManager    = (*Manager)(nil)
	_ interfaces.FactStore         = (*FactStore)(nil)
	_ interfaces.MetricsRepository = (*MetricsStore)(nil)
	_ interfaces.MarketDataStore   = (*MarketStore)(nil)
	_ interfaces.RawPayloadStore   = (*RawStore)(nil)
)
