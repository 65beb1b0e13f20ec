package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

const factSelectFields = `symbol, cik, concept, fiscal_period, end_date, unit, currency, value,
	accn, filed, frame, start_date, accounting_standard, provider`

// FactStore implements interfaces.FactStore using SurrealDB.
type FactStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewFactStore(db *surrealdb.DB, logger *common.Logger) *FactStore {
	return &FactStore{db: db, logger: logger}
}

func (s *FactStore) ReplaceFacts(ctx context.Context, symbol string, records []models.FactRecord) (int, error) {
	if _, err := surrealdb.Query[any](ctx, s.db, "DELETE fact WHERE symbol = $symbol", map[string]any{"symbol": symbol}); err != nil {
		return 0, fmt.Errorf("failed to clear facts for %s: %w", symbol, err)
	}

	keys := make(map[string]bool, len(records))
	for i := range records {
		rec := records[i]
		rec.Symbol = symbol
		id := rec.Key().ID()
		if err := upsert(ctx, s.db, tableFact, id, &rec); err != nil {
			return 0, err
		}
		keys[id] = true
	}

	s.logger.Debug().Str("symbol", symbol).Int("facts", len(keys)).Msg("Facts replaced")
	return len(keys), nil
}

func (s *FactStore) FactsForConcept(ctx context.Context, symbol, concept string, opts ...models.FactOption) ([]models.FactRecord, error) {
	sql := "SELECT " + factSelectFields + " FROM fact WHERE symbol = $symbol AND concept = $concept"
	rows, err := queryRows[models.FactRecord](ctx, s.db, sql, map[string]any{"symbol": symbol, "concept": concept})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s facts for %s: %w", concept, symbol, err)
	}
	return models.ApplyFactQuery(rows, models.NewFactQuery(opts...)), nil
}

func (s *FactStore) LatestFact(ctx context.Context, symbol, concept string) (*models.FactRecord, error) {
	records, err := s.FactsForConcept(ctx, symbol, concept, models.WithLimit(1))
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return &records[0], nil
}

func (s *FactStore) ListSymbols(ctx context.Context) ([]string, error) {
	type symbolRow struct {
		Symbol string `json:"symbol"`
	}
	rows, err := queryRows[symbolRow](ctx, s.db, "SELECT symbol FROM fact GROUP BY symbol ORDER BY symbol", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list fact symbols: %w", err)
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Symbol)
	}
	return out, nil
}

var _ interfaces.FactStore = (*FactStore)(nil)
