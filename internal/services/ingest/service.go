// Package ingest fetches provider payloads, keeps them as raw documents and
// replaces a symbol's normalized facts.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
	"github.com/emretezel/pyvalue-sub000/internal/normalization"
)

// Service implements interfaces.IngestService.
type Service struct {
	storage interfaces.StorageManager
	sec     interfaces.SECClient
	eodhd   interfaces.EODHDClient
	secNorm *normalization.SECNormalizer
	eodNorm *normalization.EODHDNormalizer
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates an ingest service. Either client may be nil when the
// corresponding provider is not configured.
func NewService(storage interfaces.StorageManager, sec interfaces.SECClient, eodhd interfaces.EODHDClient, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		sec:     sec,
		eodhd:   eodhd,
		secNorm: normalization.NewSECNormalizer(),
		eodNorm: normalization.NewEODHDNormalizer(),
		logger:  logger,
		now:     time.Now,
	}
}

// IngestSEC downloads companyfacts for symbol and replaces its facts. An
// empty cik is resolved from the SEC ticker map.
func (s *Service) IngestSEC(ctx context.Context, symbol, cik string) (int, error) {
	if s.sec == nil {
		return 0, fmt.Errorf("SEC client not configured")
	}
	symbol = normalizeSymbol(symbol)
	if cik == "" {
		info, err := s.sec.ResolveCompany(ctx, symbol)
		if err != nil {
			return 0, fmt.Errorf("failed to resolve CIK for %s: %w", symbol, err)
		}
		cik = info.CIK
	}

	data, err := s.sec.FetchCompanyFacts(ctx, cik)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch company facts for %s: %w", symbol, err)
	}
	if err := s.saveRaw(ctx, models.ProviderSEC, symbol, data); err != nil {
		return 0, err
	}
	return s.replace(ctx, models.ProviderSEC, symbol, cik, data)
}

// IngestEODHD downloads fundamentals for symbol and replaces its facts.
func (s *Service) IngestEODHD(ctx context.Context, symbol string) (int, error) {
	if s.eodhd == nil {
		return 0, fmt.Errorf("EODHD client not configured")
	}
	symbol = normalizeSymbol(symbol)

	data, err := s.eodhd.GetFundamentals(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch fundamentals for %s: %w", symbol, err)
	}
	if err := s.saveRaw(ctx, models.ProviderEODHD, symbol, data); err != nil {
		return 0, err
	}
	return s.replace(ctx, models.ProviderEODHD, symbol, "", data)
}

// NormalizeStored re-normalizes the last stored payload without a network call.
func (s *Service) NormalizeStored(ctx context.Context, provider, symbol string) (int, error) {
	provider = strings.ToUpper(provider)
	symbol = normalizeSymbol(symbol)

	raw, err := s.storage.RawStore().GetRaw(ctx, provider, symbol)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return 0, fmt.Errorf("no stored %s payload for %s", provider, symbol)
	}
	return s.replace(ctx, provider, symbol, "", raw.Data)
}

func (s *Service) saveRaw(ctx context.Context, provider, symbol string, data []byte) error {
	payload := &models.RawPayload{Provider: provider, Symbol: symbol, Data: data, FetchedAt: s.now()}
	if err := s.storage.RawStore().SaveRaw(ctx, payload); err != nil {
		return fmt.Errorf("failed to save %s payload for %s: %w", provider, symbol, err)
	}
	return nil
}

// replace decodes data, normalizes it for provider and swaps the symbol's facts.
func (s *Service) replace(ctx context.Context, provider, symbol, cik string, data []byte) (int, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("failed to decode %s payload for %s: %w", provider, symbol, err)
	}

	var records []models.FactRecord
	switch provider {
	case models.ProviderSEC:
		records = s.secNorm.Normalize(payload, symbol, cik)
	case models.ProviderEODHD:
		records = s.eodNorm.Normalize(payload, symbol, "")
	default:
		return 0, fmt.Errorf("unknown provider %q", provider)
	}

	stored, err := s.storage.FactStore().ReplaceFacts(ctx, symbol, records)
	if err != nil {
		return 0, fmt.Errorf("failed to store facts for %s: %w", symbol, err)
	}

	s.logger.Info().
		Str("provider", provider).
		Str("symbol", symbol).
		Int("facts", stored).
		Msg("Facts replaced")
	return stored, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

var _ interfaces.IngestService = (*Service)(nil)
