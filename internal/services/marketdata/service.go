// Package marketdata refreshes per-symbol price snapshots.
package marketdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// ShareConcepts are tried in order when a snapshot carries no market cap.
var ShareConcepts = []string{"EntityCommonStockSharesOutstanding", "CommonStockSharesOutstanding"}

// Service implements interfaces.MarketDataService.
type Service struct {
	storage interfaces.StorageManager
	eodhd   interfaces.EODHDClient
	logger  *common.Logger
}

// NewService creates a market data service.
func NewService(storage interfaces.StorageManager, eodhd interfaces.EODHDClient, logger *common.Logger) *Service {
	return &Service{storage: storage, eodhd: eodhd, logger: logger}
}

// Refresh fetches the latest close for symbol, fills in currency and market
// cap and stores the snapshot.
func (s *Service) Refresh(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	if s.eodhd == nil {
		return nil, fmt.Errorf("EODHD client not configured")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	snap, err := s.eodhd.GetLatestPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest price for %s: %w", symbol, err)
	}
	snap.Symbol = symbol

	currency := snap.Currency
	if currency == "" {
		currency = models.ExchangeCurrency(models.ExchangeOf(symbol))
	}
	snap.Price, snap.Currency = models.NormalizeAmount(snap.Price, currency)
	if snap.MarketCap > 0 {
		snap.MarketCap, _ = models.NormalizeAmount(snap.MarketCap, currency)
	}

	if snap.MarketCap <= 0 {
		shares, err := s.LatestShareCount(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if shares > 0 && snap.Price > 0 {
			snap.MarketCap = shares * snap.Price
		}
	}

	if err := s.storage.MarketStore().UpsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to store snapshot for %s: %w", symbol, err)
	}

	s.logger.Info().
		Str("symbol", symbol).
		Str("as_of", snap.AsOf).
		Float64("price", snap.Price).
		Str("currency", snap.Currency).
		Float64("market_cap", snap.MarketCap).
		Msg("Stored market data")
	return snap, nil
}

// LatestShareCount returns the newest usable share count, or 0 when none is stored.
func (s *Service) LatestShareCount(ctx context.Context, symbol string) (float64, error) {
	for _, concept := range ShareConcepts {
		fact, err := s.storage.FactStore().LatestFact(ctx, symbol, concept)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s for %s: %w", concept, symbol, err)
		}
		if fact != nil && fact.HasValue() {
			return fact.Float(), nil
		}
	}
	return 0, nil
}

var _ interfaces.MarketDataService = (*Service)(nil)
