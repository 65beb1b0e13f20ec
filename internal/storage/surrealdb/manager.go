// Package surrealdb provides the SurrealDB storage backend.
package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
)

// BackendName identifies this engine in config and logs.
const BackendName = "surrealdb"

// Table names.
const (
	tableFact     = "fact"
	tableMetric   = "metric"
	tableSnapshot = "price_snapshot"
	tableRaw      = "raw_payload"
)

// saveRetries bounds UPSERT attempts on transient websocket errors.
const saveRetries = 3

// Manager implements interfaces.StorageManager using SurrealDB.
type Manager struct {
	db     *surrealdb.DB
	logger *common.Logger

	factStore   *FactStore
	metricStore *MetricStore
	marketStore *MarketStore
	rawStore    *RawStore
}

// NewManager connects, signs in, selects the namespace/database and defines
// the tables and indexes.
func NewManager(logger *common.Logger, config *common.SurrealConfig) (*Manager, error) {
	ctx := context.Background()

	db, err := surrealdb.New(config.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, map[string]interface{}{
		"user": config.Username,
		"pass": config.Password,
	}); err != nil {
		return nil, fmt.Errorf("failed to sign in to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, config.Namespace, config.Database); err != nil {
		return nil, fmt.Errorf("failed to select namespace/database: %w", err)
	}

	m, err := newManager(ctx, db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("address", config.Address).
		Str("namespace", config.Namespace).
		Str("database", config.Database).
		Msg("SurrealDB storage manager initialized")

	return m, nil
}

// newManager defines the schema on an already connected db.
func newManager(ctx context.Context, db *surrealdb.DB, logger *common.Logger) (*Manager, error) {
	if err := defineSchema(ctx, db); err != nil {
		return nil, err
	}
	return &Manager{
		db:          db,
		logger:      logger,
		factStore:   NewFactStore(db, logger),
		metricStore: NewMetricStore(db, logger),
		marketStore: NewMarketStore(db, logger),
		rawStore:    NewRawStore(db, logger),
	}, nil
}

// SurrealDB v3 errors on querying tables that were never defined.
func defineSchema(ctx context.Context, db *surrealdb.DB) error {
	statements := []string{
		"DEFINE TABLE IF NOT EXISTS " + tableFact + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableMetric + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableSnapshot + " SCHEMALESS",
		"DEFINE TABLE IF NOT EXISTS " + tableRaw + " SCHEMALESS",
		"DEFINE INDEX IF NOT EXISTS fact_symbol_concept ON " + tableFact + " FIELDS symbol, concept",
		"DEFINE INDEX IF NOT EXISTS metric_symbol ON " + tableMetric + " FIELDS symbol",
	}
	for _, sql := range statements {
		if _, err := surrealdb.Query[any](ctx, db, sql, nil); err != nil {
			return fmt.Errorf("failed to run %q: %w", sql, err)
		}
	}
	return nil
}

func (m *Manager) FactStore() interfaces.FactStore            { return m.factStore }
func (m *Manager) MetricsStore() interfaces.MetricsRepository { return m.metricStore }
func (m *Manager) MarketStore() interfaces.MarketDataStore    { return m.marketStore }
func (m *Manager) RawStore() interfaces.RawPayloadStore       { return m.rawStore }
func (m *Manager) Backend() string                            { return BackendName }

func (m *Manager) Close() error {
	m.db.Close(context.Background())
	return nil
}

// upsert writes data under table:id, retrying transient failures.
func upsert[T any](ctx context.Context, db *surrealdb.DB, table, id string, data *T) error {
	sql := "UPSERT type::record($table, $id) CONTENT $data"
	vars := map[string]any{"table": table, "id": id, "data": data}

	var lastErr error
	for attempt := 1; attempt <= saveRetries; attempt++ {
		_, err := surrealdb.Query[[]T](ctx, db, sql, vars)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save %s:%s after retries: %w", table, id, lastErr)
}

// queryRows runs sql and returns the rows of its first statement.
func queryRows[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) ([]T, error) {
	results, err := surrealdb.Query[[]T](ctx, db, sql, vars)
	if err != nil {
		return nil, err
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
