// Package app wires configuration, storage, clients and services into a
// single value shared by the CLI commands and the HTTP server.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/emretezel/pyvalue-sub000/internal/clients/eodhd"
	"github.com/emretezel/pyvalue-sub000/internal/clients/sec"
	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/fx"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/metrics"
	"github.com/emretezel/pyvalue-sub000/internal/services/compute"
	"github.com/emretezel/pyvalue-sub000/internal/services/ingest"
	"github.com/emretezel/pyvalue-sub000/internal/services/marketdata"
	"github.com/emretezel/pyvalue-sub000/internal/services/screen"
	"github.com/emretezel/pyvalue-sub000/internal/storage"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	SECClient   interfaces.SECClient
	EODHDClient interfaces.EODHDClient
	FX          interfaces.FXRateStore
	Registry    *metrics.Registry

	IngestService     *ingest.Service
	MarketDataService *marketdata.Service
	ComputeService    *compute.Service
	ScreenService     *screen.Service

	StartupTime time.Time

	scheduler *cron.Cron
	cycleMu   sync.Mutex
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp loads configuration and initializes the App. When configPath is
// empty, PYVALUE_CONFIG, then pyvalue.toml next to the binary, then
// config/pyvalue.toml are tried.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	if configPath == "" {
		configPath = os.Getenv("PYVALUE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "pyvalue.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/pyvalue.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return New(config, common.NewLoggerFromConfig(config.Logging))
}

// New initializes the App from an already loaded configuration.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewStorageManager(logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Registry:    metrics.NewRegistry(),
		StartupTime: startupStart,
	}

	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		logger.Warn().Msg("EODHD API key not configured - prices and EODHD ingestion unavailable")
	} else {
		a.EODHDClient = eodhd.NewClient(eodhdKey,
			eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
			eodhd.WithLogger(logger),
			eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
			eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		)
	}

	secClient, err := sec.NewClient(config.Clients.SEC.UserAgent,
		sec.WithBaseURL(config.Clients.SEC.BaseURL),
		sec.WithLogger(logger),
		sec.WithRateLimit(config.Clients.SEC.RateLimit),
		sec.WithTimeout(config.Clients.SEC.GetTimeout()),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("SEC client unavailable")
	} else {
		a.SECClient = secClient
	}

	if config.FX.Path != "" {
		fxStore, err := fx.NewStore(config.FX.Path, config.FX.CacheSize, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("FX rates unavailable")
		} else {
			a.FX = fxStore
		}
	}

	a.IngestService = ingest.NewService(storageManager, a.SECClient, a.EODHDClient, logger)
	a.MarketDataService = marketdata.NewService(storageManager, a.EODHDClient, logger)
	a.ComputeService = compute.NewService(storageManager, a.Registry, a.FX, config.WorkerCount(), logger)
	a.ScreenService = screen.NewService(storageManager, a.Registry, a.FX, logger)

	logger.Info().
		Str("backend", storageManager.Backend()).
		Int("metrics", len(a.Registry.IDs())).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	a.StopScheduler()
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
}
