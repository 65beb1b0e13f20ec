// Package storage selects and opens the configured persistence backend.
package storage

import (
	"fmt"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/storage/badger"
	"github.com/emretezel/pyvalue-sub000/internal/storage/surrealdb"
)

// NewStorageManager opens the backend named by config.Backend.
// Supported backends: "badger" (default), "surrealdb".
func NewStorageManager(logger *common.Logger, config *common.StorageConfig) (interfaces.StorageManager, error) {
	backend := config.Backend
	if backend == "" {
		backend = badger.BackendName
	}

	switch backend {
	case badger.BackendName:
		store, err := badger.NewStore(logger, config.Badger.Path)
		if err != nil {
			return nil, err
		}
		return store, nil

	case surrealdb.BackendName:
		mgr, err := surrealdb.NewManager(logger, &config.SurrealDB)
		if err != nil {
			return nil, err
		}
		return mgr, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, surrealdb)", backend)
	}
}
