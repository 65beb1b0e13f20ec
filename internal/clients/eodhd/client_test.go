package eodhd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestFormatTicker(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"aapl", "AAPL.US"},
		{" shel.lse ", "SHEL.LSE"},
		{"BHP.AU", "BHP.AU"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatTicker(tt.in); got != tt.want {
			t.Errorf("FormatTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetEOD_ParsesFlexibleNumbers(t *testing.T) {
	var capturedPath, capturedOrder, capturedToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedOrder = r.URL.Query().Get("order")
		capturedToken = r.URL.Query().Get("api_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date": "2024-03-28", "open": "42.10", "high": 43.5, "low": 41.8, "close": 43.25, "adjusted_close": 43.25, "volume": 5000000},
			{"date": "not-a-date", "close": 1}
		]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	bars, err := client.GetEOD(context.Background(), "bhp.au")
	if err != nil {
		t.Fatalf("GetEOD failed: %v", err)
	}

	if capturedPath != "/eod/BHP.AU" {
		t.Errorf("expected path /eod/BHP.AU, got %s", capturedPath)
	}
	if capturedOrder != "d" {
		t.Errorf("expected descending order, got %q", capturedOrder)
	}
	if capturedToken != "test-key" {
		t.Errorf("expected api_token test-key, got %q", capturedToken)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	if bars[0].Open != 42.10 {
		t.Errorf("expected open 42.10, got %.2f", bars[0].Open)
	}
	if bars[0].Volume != 5000000 {
		t.Errorf("expected volume 5000000, got %d", bars[0].Volume)
	}
}

func TestGetLatestPrice_PicksNewestClose(t *testing.T) {
	now := time.Date(2024, 3, 29, 12, 0, 0, 0, time.UTC)
	var capturedFrom, capturedTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedFrom = r.URL.Query().Get("from")
		capturedTo = r.URL.Query().Get("to")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"date": "2024-03-27", "close": 41.0, "volume": 100},
			{"date": "2024-03-28", "close": 43.25, "volume": 200},
			{"date": "2024-03-29", "close": 0},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	client.now = func() time.Time { return now }

	snap, err := client.GetLatestPrice(context.Background(), "bhp.au")
	if err != nil {
		t.Fatalf("GetLatestPrice failed: %v", err)
	}
	if snap.Symbol != "BHP.AU" {
		t.Errorf("expected symbol BHP.AU, got %s", snap.Symbol)
	}
	if snap.Price != 43.25 || snap.AsOf != "2024-03-28" || snap.Volume != 200 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if capturedFrom != "2024-03-15" || capturedTo != "2024-03-29" {
		t.Errorf("unexpected window %s..%s", capturedFrom, capturedTo)
	}
}

func TestGetLatestPrice_NoBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	if _, err := client.GetLatestPrice(context.Background(), "AAPL.US"); err == nil {
		t.Fatal("expected error for empty EOD response")
	}
}

func TestGetFundamentals_ReturnsRawDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fundamentals/AAPL.US" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"General": {"Code": "AAPL", "CurrencyCode": "USD"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	body, err := client.GetFundamentals(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetFundamentals failed: %v", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if _, ok := doc["General"]; !ok {
		t.Error("expected General section in raw document")
	}
}

func TestGetFundamentals_RejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	if _, err := client.GetFundamentals(context.Background(), "AAPL.US"); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestAPIError_OnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid api token"))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := client.GetFundamentals(context.Background(), "AAPL.US")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid api token" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if apiErr.Endpoint != "/fundamentals/AAPL.US" {
		t.Errorf("unexpected endpoint %q", apiErr.Endpoint)
	}
}

func TestGet_RespectsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1))
	if _, err := client.GetEOD(ctx, "AAPL.US"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
