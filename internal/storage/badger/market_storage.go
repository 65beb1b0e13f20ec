package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// marketStorage keeps one price snapshot per symbol.
type marketStorage struct {
	store  *Store
	logger *common.Logger
}

func (s *marketStorage) LatestSnapshot(_ context.Context, symbol string) (*models.PriceSnapshot, error) {
	var snap models.PriceSnapshot
	if err := s.store.db.Get(symbol, &snap); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot for %s: %w", symbol, err)
	}
	return &snap, nil
}

func (s *marketStorage) UpsertSnapshot(_ context.Context, snapshot *models.PriceSnapshot) error {
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}
	if err := s.store.db.Upsert(snapshot.Symbol, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", snapshot.Symbol, err)
	}
	s.logger.Debug().Str("symbol", snapshot.Symbol).Str("as_of", snapshot.AsOf).Msg("Price snapshot saved")
	return nil
}

// rawStorage keeps the latest provider payload per (provider, symbol).
type rawStorage struct {
	store  *Store
	logger *common.Logger
}

func (s *rawStorage) SaveRaw(_ context.Context, payload *models.RawPayload) error {
	if payload.FetchedAt.IsZero() {
		payload.FetchedAt = time.Now()
	}
	id := models.RawPayloadID(payload.Provider, payload.Symbol)
	if err := s.store.db.Upsert(id, payload); err != nil {
		return fmt.Errorf("failed to save raw payload %s: %w", id, err)
	}
	s.logger.Debug().Str("id", id).Int("bytes", len(payload.Data)).Msg("Raw payload saved")
	return nil
}

func (s *rawStorage) GetRaw(_ context.Context, provider, symbol string) (*models.RawPayload, error) {
	var payload models.RawPayload
	id := models.RawPayloadID(provider, symbol)
	if err := s.store.db.Get(id, &payload); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get raw payload %s: %w", id, err)
	}
	return &payload, nil
}

var (
	_ interfaces.MarketDataStore = (*marketStorage)(nil)
	_ interfaces.RawPayloadStore = (*rawStorage)(nil)
)
