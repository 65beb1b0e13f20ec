package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/app"
	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/metrics"
	"github.com/emretezel/pyvalue-sub000/internal/models"
	"github.com/emretezel/pyvalue-sub000/internal/storage/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Manager) {
	t.Helper()
	store := memory.NewManager()
	a := &app.App{
		Config:   common.NewDefaultConfig(),
		Logger:   common.NewSilentLogger(),
		Storage:  store,
		Registry: metrics.NewRegistry(),
	}
	return NewServer(a), store
}

func serve(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestNewServer_Addr(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, "127.0.0.1:8580", s.Addr())
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(t, s, http.MethodPost, "/api/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestHandleVersion(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var body common.VersionInfo
	decode(t, rec, &body)
	assert.Equal(t, common.GetVersion(), body.Version)
}

func TestCorrelationID_Propagated(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Correlation-ID"))
}

func TestCORS_Preflight(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(t, s, http.MethodOptions, "/api/metrics/AAPL.US")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleMetrics(t *testing.T) {
	ctx := context.Background()
	s, store := newTestServer(t)
	require.NoError(t, store.MetricsStore().Upsert(ctx, "AAPL.US", "working_capital", 200, "2023-09-30"))
	require.NoError(t, store.MetricsStore().Upsert(ctx, "AAPL.US", "current_ratio", 1.5, "2023-09-30"))

	t.Run("list for symbol", func(t *testing.T) {
		rec := serve(t, s, http.MethodGet, "/api/metrics/aapl.us")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Symbol  string                `json:"symbol"`
			Metrics []models.MetricRecord `json:"metrics"`
		}
		decode(t, rec, &body)
		assert.Equal(t, "AAPL.US", body.Symbol)
		assert.Len(t, body.Metrics, 2)
	})

	t.Run("single metric", func(t *testing.T) {
		rec := serve(t, s, http.MethodGet, "/api/metrics/AAPL.US/working_capital")
		require.Equal(t, http.StatusOK, rec.Code)

		var body models.MetricRecord
		decode(t, rec, &body)
		assert.Equal(t, 200.0, body.Value)
		assert.Equal(t, "2023-09-30", body.AsOf)
	})

	t.Run("missing metric", func(t *testing.T) {
		rec := serve(t, s, http.MethodGet, "/api/metrics/AAPL.US/roc_greenblatt_5y_avg")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown symbol is empty", func(t *testing.T) {
		rec := serve(t, s, http.MethodGet, "/api/metrics/NONE.US")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"metrics":[]`)
	})
}

func TestHandleMetricCatalog(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metrics []string `json:"metrics"`
	}
	decode(t, rec, &body)
	assert.Equal(t, metrics.NewRegistry().IDs(), body.Metrics)
}

func TestHandleFacts(t *testing.T) {
	ctx := context.Background()
	s, store := newTestServer(t)
	_, err := store.FactStore().ReplaceFacts(ctx, "AAPL.US", []models.FactRecord{
		{Symbol: "AAPL.US", Concept: "Assets", FiscalPeriod: "FY", EndDate: "2022-09-24", Unit: "USD", Value: models.Float64Ptr(1)},
		{Symbol: "AAPL.US", Concept: "Assets", FiscalPeriod: "FY", EndDate: "2023-09-30", Unit: "USD", Value: models.Float64Ptr(2)},
		{Symbol: "AAPL.US", Concept: "Assets", FiscalPeriod: "Q3", EndDate: "2023-07-01", Unit: "USD", Value: models.Float64Ptr(3)},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantEnds []string
	}{
		{name: "all newest first", target: "/api/facts/AAPL.US/Assets", wantCode: http.StatusOK, wantEnds: []string{"2023-09-30", "2023-07-01", "2022-09-24"}},
		{name: "period filter", target: "/api/facts/AAPL.US/Assets?period=fy", wantCode: http.StatusOK, wantEnds: []string{"2023-09-30", "2022-09-24"}},
		{name: "period and limit", target: "/api/facts/AAPL.US/Assets?period=FY&limit=1", wantCode: http.StatusOK, wantEnds: []string{"2023-09-30"}},
		{name: "unknown concept", target: "/api/facts/AAPL.US/Liabilities", wantCode: http.StatusOK, wantEnds: []string{}},
		{name: "bad limit", target: "/api/facts/AAPL.US/Assets?limit=-1", wantCode: http.StatusBadRequest},
		{name: "missing concept", target: "/api/facts/AAPL.US", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, s, http.MethodGet, tt.target)
			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}

			var body struct {
				Facts []models.FactRecord `json:"facts"`
			}
			decode(t, rec, &body)
			ends := make([]string, 0, len(body.Facts))
			for _, f := range body.Facts {
				ends = append(ends, f.EndDate)
			}
			assert.Equal(t, tt.wantEnds, ends)
		})
	}
}

func TestHandleSymbols(t *testing.T) {
	ctx := context.Background()
	s, store := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/symbols")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbols":[]`)

	_, err := store.FactStore().ReplaceFacts(ctx, "MSFT.US", []models.FactRecord{
		{Symbol: "MSFT.US", Concept: "Assets", FiscalPeriod: "FY", EndDate: "2023-06-30", Unit: "USD", Value: models.Float64Ptr(1)},
	})
	require.NoError(t, err)

	rec = serve(t, s, http.MethodGet, "/api/symbols")
	var body struct {
		Symbols []string `json:"symbols"`
	}
	decode(t, rec, &body)
	assert.Equal(t, []string{"MSFT.US"}, body.Symbols)
}

func TestHandlePrice(t *testing.T) {
	ctx := context.Background()
	s, store := newTestServer(t)

	rec := serve(t, s, http.MethodGet, "/api/prices/AAPL.US")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, store.MarketStore().UpsertSnapshot(ctx, &models.PriceSnapshot{
		Symbol: "AAPL.US", Price: 171.48, AsOf: "2024-03-28", Currency: "USD", MarketCap: 2.6e12,
	}))

	rec = serve(t, s, http.MethodGet, "/api/prices/aapl.us")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap models.PriceSnapshot
	decode(t, rec, &snap)
	assert.Equal(t, 171.48, snap.Price)
	assert.Equal(t, "USD", snap.Currency)
}

func TestRequestScope(t *testing.T) {
	tests := []struct {
		path                   string
		resource, symbol, item string
	}{
		{"/api/health", "health", "", ""},
		{"/api/metrics", "metrics", "", ""},
		{"/api/metrics/aapl.us", "metrics", "AAPL.US", ""},
		{"/api/metrics/aapl.us/current_ratio", "metrics", "AAPL.US", "current_ratio"},
		{"/api/facts/MSFT.US/Assets/", "facts", "MSFT.US", "Assets"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resource, symbol, item := requestScope(tt.path)
			assert.Equal(t, tt.resource, resource)
			assert.Equal(t, tt.symbol, symbol)
			assert.Equal(t, tt.item, item)
		})
	}
}

func TestCorrelationID_OnRequestContext(t *testing.T) {
	var seen string
	h := correlationIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/prices/AAPL.US", nil)
	req.Header.Set("X-Correlation-ID", "corr-7")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "corr-7", seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Len(t, seen, 8)
	assert.Equal(t, rec.Header().Get("X-Correlation-ID"), seen)
	assert.Empty(t, correlationID(context.Background()))
}
