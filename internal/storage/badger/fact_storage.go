package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/timshannon/badgerhold/v4"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

type factStorage struct {
	store  *Store
	logger *common.Logger
}

// ReplaceFacts removes every stored fact of symbol, then upserts records
// keyed by FactKey. Later records in the batch overwrite earlier ones with
// the same key.
func (s *factStorage) ReplaceFacts(_ context.Context, symbol string, records []models.FactRecord) (int, error) {
	if err := s.store.db.DeleteMatching(models.FactRecord{}, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")); err != nil {
		return 0, fmt.Errorf("failed to clear facts for %s: %w", symbol, err)
	}

	keys := make(map[string]bool, len(records))
	for i := range records {
		rec := records[i]
		rec.Symbol = symbol
		id := rec.Key().ID()
		if err := s.store.db.Upsert(id, rec); err != nil {
			return 0, fmt.Errorf("failed to save fact %s: %w", id, err)
		}
		keys[id] = true
	}

	s.logger.Debug().Str("symbol", symbol).Int("facts", len(keys)).Msg("Facts replaced")
	return len(keys), nil
}

func (s *factStorage) FactsForConcept(_ context.Context, symbol, concept string, opts ...models.FactOption) ([]models.FactRecord, error) {
	var records []models.FactRecord
	query := badgerhold.Where("Symbol").Eq(symbol).Index("Symbol").And("Concept").Eq(concept)
	if err := s.store.db.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query %s facts for %s: %w", concept, symbol, err)
	}
	return models.ApplyFactQuery(records, models.NewFactQuery(opts...)), nil
}

func (s *factStorage) LatestFact(ctx context.Context, symbol, concept string) (*models.FactRecord, error) {
	records, err := s.FactsForConcept(ctx, symbol, concept, models.WithLimit(1))
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

func (s *factStorage) ListSymbols(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	err := s.store.db.ForEach(nil, func(rec *models.FactRecord) error {
		seen[rec.Symbol] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list fact symbols: %w", err)
	}
	out := make([]string, 0, len(seen))
	for symbol := range seen {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out, nil
}

var _ interfaces.FactStore = (*factStorage)(nil)
