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

const metricSelectFields = "symbol, metric_id, value, as_of, computed_at"

// MetricStore implements interfaces.MetricsRepository using SurrealDB.
type MetricStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	now    func() time.Time
}

func NewMetricStore(db *surrealdb.DB, logger *common.Logger) *MetricStore {
	return &MetricStore{db: db, logger: logger, now: time.Now}
}

func (s *MetricStore) Upsert(ctx context.Context, symbol, metricID string, value float64, asOf string) error {
	rec := &models.MetricRecord{
		Symbol:     symbol,
		MetricID:   metricID,
		Value:      value,
		AsOf:       asOf,
		ComputedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	return upsert(ctx, s.db, tableMetric, models.MetricRecordID(symbol, metricID), rec)
}

func (s *MetricStore) Fetch(ctx context.Context, symbol, metricID string) (*models.MetricRecord, error) {
	rec, err := surrealdb.Select[models.MetricRecord](ctx, s.db, surrealmodels.NewRecordID(tableMetric, models.MetricRecordID(symbol, metricID)))
	if err != nil {
		return nil, fmt.Errorf("failed to select metric %s for %s: %w", metricID, symbol, err)
	}
	return rec, nil
}

func (s *MetricStore) ListForSymbol(ctx context.Context, symbol string) ([]*models.MetricRecord, error) {
	sql := "SELECT " + metricSelectFields + " FROM metric WHERE symbol = $symbol ORDER BY metric_id"
	rows, err := queryRows[models.MetricRecord](ctx, s.db, sql, map[string]any{"symbol": symbol})
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics for %s: %w", symbol, err)
	}
	out := make([]*models.MetricRecord, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

var _ interfaces.MetricsRepository = (*MetricStore)(nil)
