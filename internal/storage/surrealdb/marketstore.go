package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// MarketStore keeps one price snapshot per symbol.
type MarketStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewMarketStore(db *surrealdb.DB, logger *common.Logger) *MarketStore {
	return &MarketStore{db: db, logger: logger}
}

func (s *MarketStore) LatestSnapshot(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	snap, err := surrealdb.Select[models.PriceSnapshot](ctx, s.db, surrealmodels.NewRecordID(tableSnapshot, symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to select snapshot for %s: %w", symbol, err)
	}
	return snap, nil
}

func (s *MarketStore) UpsertSnapshot(ctx context.Context, snapshot *models.PriceSnapshot) error {
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	if err := upsert(ctx, s.db, tableSnapshot, snapshot.Symbol, snapshot); err != nil {
		return err
	}
	s.logger.Debug().Str("symbol", snapshot.Symbol).Str("as_of", snapshot.AsOf).Msg("Price snapshot saved")
	return nil
}

// RawStore keeps the latest provider payload per (provider, symbol).
type RawStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewRawStore(db *surrealdb.DB, logger *common.Logger) *RawStore {
	return &RawStore{db: db, logger: logger}
}

func (s *RawStore) SaveRaw(ctx context.Context, payload *models.RawPayload) error {
	if payload.FetchedAt.IsZero() {
		payload.FetchedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	id := models.RawPayloadID(payload.Provider, payload.Symbol)
	if err := upsert(ctx, s.db, tableRaw, id, payload); err != nil {
		return err
	}
	s.logger.Debug().Str("id", id).Int("bytes", len(payload.Data)).Msg("Raw payload saved")
	return nil
}

func (s *RawStore) GetRaw(ctx context.Context, provider, symbol string) (*models.RawPayload, error) {
	id := models.RawPayloadID(provider, symbol)
	payload, err := surrealdb.Select[models.RawPayload](ctx, s.db, surrealmodels.NewRecordID(tableRaw, id))
	if err != nil {
		return nil, fmt.Errorf("failed to select raw payload %s: %w", id, err)
	}
	return payload, nil
}

var (
	_ interfaces.MarketDataStore = (*MarketStore)(nil)
	_ interfaces.RawPayloadStore = (*RawStore)(nil)
)
