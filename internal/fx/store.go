// Package fx converts amounts between currencies using daily rate series
// stored as CSV files named <BASE><QUOTE>.csv.
package fx

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
)

const defaultCacheSize = 64

// rate is one observation of a pair.
type rate struct {
	asOf  time.Time
	value float64
}

// Store loads pair series lazily from root and keeps the most recently used
// ones in an LRU cache. Missing files cache as empty series.
type Store struct {
	root   string
	cache  *lru.Cache
	logger *common.Logger
}

var _ interfaces.FXRateStore = (*Store)(nil)

// NewStore creates a Store reading from root.
func NewStore(root string, cacheSize int, logger *common.Logger) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create fx cache: %w", err)
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{root: root, cache: cache, logger: logger}, nil
}

// Convert moves amount from one currency to another at the rate closest to
// asOf. The direct pair is tried first, then the inverse of the reverse pair.
func (s *Store) Convert(amount float64, from, to, asOf string) (float64, bool) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return 0, false
	}
	if from == to {
		return amount, true
	}
	target, ok := parseDate(asOf)
	if !ok {
		return 0, false
	}
	if r, ok := s.Rate(from, to, target); ok {
		return amount * r, true
	}
	if inverse, ok := s.Rate(to, from, target); ok && inverse != 0 {
		return amount / inverse, true
	}
	s.logger.Debug().Str("from", from).Str("to", to).Str("as_of", asOf).Msg("No FX rate for pair")
	return 0, false
}

// Rate returns the base→quote rate whose date is closest to target. On equal
// distance the earlier observation wins.
func (s *Store) Rate(base, quote string, target time.Time) (float64, bool) {
	series := s.series(strings.ToUpper(base + quote))
	if len(series) == 0 {
		return 0, false
	}
	best := series[0]
	bestDelta := absDays(best.asOf, target)
	for _, r := range series[1:] {
		if d := absDays(r.asOf, target); d < bestDelta {
			best, bestDelta = r, d
		}
	}
	return best.value, true
}

func (s *Store) series(pair string) []rate {
	if cached, ok := s.cache.Get(pair); ok {
		return cached.([]rate)
	}
	path := filepath.Join(s.root, pair+".csv")
	series, err := loadSeries(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("pair", pair).Msg("Failed to load FX series")
	}
	s.cache.Add(pair, series)
	return series
}

// loadSeries reads a CSV with a header row, sorted by date ascending. Rows
// without a parsable date or rate are skipped.
func loadSeries(path string) ([]rate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseSeries(f)
}

func parseSeries(r io.Reader) ([]rate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.ToLower(strings.TrimSpace(h))
	}
	dateCols := dateColumns(cols)

	var out []rate
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		asOf, ok := rowDate(row, dateCols)
		if !ok {
			continue
		}
		value, ok := rowRate(row, cols)
		if !ok {
			continue
		}
		out = append(out, rate{asOf: asOf, value: value})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].asOf.Before(out[j].asOf) })
	return out, nil
}

// dateColumns lists candidate date column indexes: known names first, then
// any column whose name contains "date".
func dateColumns(cols []string) []int {
	var out []int
	for _, name := range []string{"date", "as_of", "asof", "datetime"} {
		for i, c := range cols {
			if c == name {
				out = append(out, i)
			}
		}
	}
	for i, c := range cols {
		if strings.Contains(c, "date") && c != "date" && c != "datetime" {
			out = append(out, i)
		}
	}
	return out
}

func rowDate(row []string, dateCols []int) (time.Time, bool) {
	for _, i := range dateCols {
		if i >= len(row) {
			continue
		}
		if d, ok := parseDate(row[i]); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// rowRate reads the rate, value or price column when one exists; otherwise
// the first numeric column that is not a date.
func rowRate(row []string, cols []string) (float64, bool) {
	for _, name := range []string{"rate", "value", "price"} {
		for i, c := range cols {
			if c != name {
				continue
			}
			if i >= len(row) {
				return 0, false
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			return v, err == nil
		}
	}
	for i, c := range cols {
		if i >= len(row) || c == "date" || c == "as_of" {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse(common.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func absDays(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
