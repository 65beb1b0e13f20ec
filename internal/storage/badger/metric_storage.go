package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

type metricStorage struct {
	store  *Store
	logger *common.Logger
	now    func() time.Time
}

func newMetricStorage(store *Store, logger *common.Logger) *metricStorage {
	return &metricStorage{store: store, logger: logger, now: time.Now}
}

func (s *metricStorage) Upsert(_ context.Context, symbol, metricID string, value float64, asOf string) error {
	rec := &models.MetricRecord{
		Symbol:     symbol,
		MetricID:   metricID,
		Value:      value,
		AsOf:       asOf,
		ComputedAt: s.now(),
	}
	if err := s.store.db.Upsert(models.MetricRecordID(symbol, metricID), rec); err != nil {
		return fmt.Errorf("failed to save metric %s for %s: %w", metricID, symbol, err)
	}
	return nil
}

func (s *metricStorage) Fetch(_ context.Context, symbol, metricID string) (*models.MetricRecord, error) {
	var rec models.MetricRecord
	if err := s.store.db.Get(models.MetricRecordID(symbol, metricID), &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get metric %s for %s: %w", metricID, symbol, err)
	}
	return &rec, nil
}

func (s *metricStorage) ListForSymbol(_ context.Context, symbol string) ([]*models.MetricRecord, error) {
	var records []models.MetricRecord
	if err := s.store.db.Find(&records, badgerhold.Where("Symbol").Eq(symbol).Index("Symbol")); err != nil {
		return nil, fmt.Errorf("failed to list metrics for %s: %w", symbol, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].MetricID < records[j].MetricID })

	out := make([]*models.MetricRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out, nil
}

var _ interfaces.MetricsRepository = (*metricStorage)(nil)
