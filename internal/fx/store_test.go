package fx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emretezel/pyvalue-sub000/internal/common"
)

func writeSeries(t *testing.T, dir, pair, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, pair+".csv"), []byte(body), 0o644))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir, 4, common.NewSilentLogger())
	require.NoError(t, err)
	return s, dir
}

func TestConvert_ClosestDate(t *testing.T) {
	s, dir := newTestStore(t)
	writeSeries(t, dir, "EURUSD", "date,rate\n2025-01-10,1.10\n2025-01-01,1.00\n2025-01-20,1.20\n")

	tests := []struct {
		asOf string
		want float64
	}{
		{"2025-01-01", 100},
		{"2025-01-04", 100},
		{"2025-01-09", 110},
		{"2025-03-01", 120},
		{"2024-06-01", 100},
		{"2025-01-15", 110}, // equidistant, earlier wins
	}
	for _, tt := range tests {
		t.Run(tt.asOf, func(t *testing.T) {
			got, ok := s.Convert(100, "EUR", "USD", tt.asOf)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestConvert_InversePair(t *testing.T) {
	s, dir := newTestStore(t)
	writeSeries(t, dir, "GBPUSD", "Date,Close\n2025-01-02,1.25\n")

	got, ok := s.Convert(125, "usd", "gbp", "2025-01-02")
	require.True(t, ok)
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestConvert_Passthrough(t *testing.T) {
	s, _ := newTestStore(t)
	got, ok := s.Convert(42, "USD", " usd ", "not-a-date")
	require.True(t, ok)
	assert.Equal(t, 42.0, got)
}

func TestConvert_Unavailable(t *testing.T) {
	s, dir := newTestStore(t)
	writeSeries(t, dir, "EURUSD", "date,rate\n2025-01-01,1.1\n")

	tests := []struct {
		name           string
		from, to, asOf string
	}{
		{"empty from", "", "USD", "2025-01-01"},
		{"empty to", "EUR", "", "2025-01-01"},
		{"bad date", "EUR", "USD", "yesterday"},
		{"no series", "JPY", "USD", "2025-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := s.Convert(1, tt.from, tt.to, tt.asOf)
			assert.False(t, ok)
		})
	}
}

func TestParseSeries_Columns(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []float64
	}{
		{"rate column", "date,open,rate\n2025-01-01,9,1.5\n", []float64{1.5}},
		{"value column", "as_of,value\n2025-01-01,2\n", []float64{2}},
		{"first numeric column", "datetime,label,close\n2025-01-01T00:00:00Z,x,3\n", []float64{3}},
		{"trade date column", "trade_date,price\n2025-01-01,4\n", []float64{4}},
		{"unparsable rate skipped", "date,rate\n2025-01-01,n/a\n2025-01-02,5\n", []float64{5}},
		{"unparsable date skipped", "date,rate\nsoon,1\n2025-01-02,6\n", []float64{6}},
		{"header only", "date,rate\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := parseSeries(strings.NewReader(tt.body))
			require.NoError(t, err)
			var got []float64
			for _, r := range series {
				got = append(got, r.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRate_CachesMissingSeries(t *testing.T) {
	s, dir := newTestStore(t)
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := s.Rate("CHF", "USD", day)
	assert.False(t, ok)

	// The empty result is cached until evicted.
	writeSeries(t, dir, "CHFUSD", "date,rate\n2025-01-01,1.1\n")
	_, ok = s.Rate("CHF", "USD", day)
	assert.False(t, ok)

	fresh, err := NewStore(dir, 4, nil)
	require.NoError(t, err)
	r, ok := fresh.Rate("CHF", "USD", day)
	require.True(t, ok)
	assert.Equal(t, 1.1, r)
}
