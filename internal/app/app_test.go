package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/services/ingest"
)

const companyFacts = `{
  "cik": 320193,
  "entityName": "Apple Inc.",
  "facts": {
    "us-gaap": {
      "NetIncomeLoss": {
        "units": {
          "USD": [
            {"start": "2022-09-25", "end": "2023-09-30", "val": 96995000000, "accn": "0000320193-23-000106",
             "fy": 2023, "fp": "FY", "form": "10-K", "filed": "2023-11-03", "frame": "CY2023"}
          ]
        }
      }
    }
  }
}`

type stubSEC struct{}

func (stubSEC) ResolveCompany(_ context.Context, ticker string) (*interfaces.CompanyInfo, error) {
	if ticker != "AAPL.US" {
		return nil, errors.New("unknown ticker")
	}
	return &interfaces.CompanyInfo{Symbol: ticker, CIK: "0000320193"}, nil
}

func (stubSEC) FetchCompanyFacts(context.Context, string) ([]byte, error) {
	return []byte(companyFacts), nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("EODHD_API_KEY", "")
	t.Setenv("PYVALUE_EODHD_API_KEY", "")

	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir()
	config.FX.Path = t.TempDir()
	config.Compute.Workers = 2

	a, err := New(config, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNew_InitializesServices(t *testing.T) {
	a := newTestApp(t)

	assert.Equal(t, "badger", a.Storage.Backend())
	assert.NotNil(t, a.SECClient)
	assert.Nil(t, a.EODHDClient)
	assert.NotNil(t, a.FX)
	assert.NotNil(t, a.Registry)
	assert.NotNil(t, a.IngestService)
	assert.NotNil(t, a.MarketDataService)
	assert.NotNil(t, a.ComputeService)
	assert.NotNil(t, a.ScreenService)
}

func TestNew_EODHDKeyEnablesClient(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Storage.Badger.Path = t.TempDir()
	config.Clients.EODHD.APIKey = "demo"
	t.Setenv("EODHD_API_KEY", "")
	t.Setenv("PYVALUE_EODHD_API_KEY", "")

	a, err := New(config, common.NewSilentLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.EODHDClient)
}

func TestNew_UnknownBackend(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Storage.Backend = "sqlite"

	_, err := New(config, common.NewSilentLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestRunCycle_NoSymbols(t *testing.T) {
	a := newTestApp(t)

	_, err := a.RunCycle(context.Background())
	require.Error(t, err)
}

func TestRunCycle_IngestsThenComputes(t *testing.T) {
	a := newTestApp(t)
	a.IngestService = ingest.NewService(a.Storage, stubSEC{}, nil, a.Logger)
	a.Config.Schedule.Symbols = []string{"AAPL.US", "NOPE.US"}

	summary, err := a.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Priced)

	require.NotNil(t, summary.Compute)
	assert.Equal(t, 1, summary.Compute.Symbols)
	total := len(a.Registry.IDs())
	assert.Equal(t, total, summary.Compute.Computed+summary.Compute.Skipped+summary.Compute.Failed)

	symbols, err := a.Storage.FactStore().ListSymbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL.US"}, symbols)
}

func TestStartScheduler(t *testing.T) {
	tests := []struct {
		name    string
		cron    string
		wantErr bool
	}{
		{name: "empty spec", cron: "", wantErr: true},
		{name: "invalid spec", cron: "every tuesday", wantErr: true},
		{name: "valid spec", cron: "0 6 * * 1-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t)
			a.Config.Schedule.Cron = tt.cron

			err := a.StartScheduler(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, a.scheduler)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, a.scheduler)
			assert.Error(t, a.StartScheduler(context.Background()))

			a.StopScheduler()
			assert.Nil(t, a.scheduler)
		})
	}
}
