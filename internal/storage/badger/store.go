// Package badger provides the embedded BadgerHold backend for facts, metrics,
// price snapshots and raw provider payloads.
package badger

import (
	"fmt"
	"os"

	"github.com/timshannon/badgerhold/v4"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
)

// BackendName identifies this engine in config and logs.
const BackendName = "badger"

// Store wraps a BadgerHold database connection.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
	path   string

	facts   *factStorage
	metrics *metricStorage
	market  *marketStorage
	raw     *rawStorage
}

// NewStore opens (or creates) the database at path and wires the typed
// stores on top of it.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create badger directory %s: %w", path, err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil // Disable default badger logger

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", path).Msg("BadgerHold store opened")

	s := &Store{db: db, logger: logger, path: path}
	s.facts = &factStorage{store: s, logger: logger}
	s.metrics = newMetricStorage(s, logger)
	s.market = &marketStorage{store: s, logger: logger}
	s.raw = &rawStorage{store: s, logger: logger}
	return s, nil
}

// DB returns the underlying badgerhold store.
func (s *Store) DB() *badgerhold.Store {
	return s.db
}

func (s *Store) FactStore() interfaces.FactStore            { return s.facts }
func (s *Store) MetricsStore() interfaces.MetricsRepository { return s.metrics }
func (s *Store) MarketStore() interfaces.MarketDataStore    { return s.market }
func (s *Store) RawStore() interfaces.RawPayloadStore       { return s.raw }
func (s *Store) Backend() string                            { return BackendName }

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		s.logger.Debug().Str("path", s.path).Msg("BadgerHold store closing")
		return s.db.Close()
	}
	return nil
}

var _ interfaces.StorageManager = (*Store)(nil)
