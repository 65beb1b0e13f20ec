// Package sec provides a client for SEC EDGAR company facts
package sec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
)

const (
	DefaultBaseURL    = "https://data.sec.gov"
	DefaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	DefaultTimeout    = 30 * time.Second
	DefaultRateLimit  = 8 // SEC fair-access limit is 10 req/s
)

// ErrUnknownTicker is returned when the SEC ticker map has no entry.
var ErrUnknownTicker = errors.New("ticker not found in SEC mapping")

// Client downloads companyfacts documents and the ticker → CIK map.
type Client struct {
	baseURL    string
	tickersURL string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *common.Logger

	mu      sync.Mutex
	tickers map[string]*interfaces.CompanyInfo
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the companyfacts host
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTickersURL sets the ticker map location
func WithTickersURL(u string) ClientOption {
	return func(c *Client) {
		c.tickersURL = u
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client. The SEC rejects anonymous requests, so an
// empty user agent is an error.
func NewClient(userAgent string, opts ...ClientOption) (*Client, error) {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("SEC user agent is required (set clients.sec.user_agent or SEC_USER_AGENT)")
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		tickersURL: DefaultTickersURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// APIError represents a non-200 SEC response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("SEC API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", reqURL).Msg("SEC request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Endpoint: reqURL}
	}
	return body, nil
}

// FormatCIK renders a CIK as CIK##########. It accepts bare digits, padded
// digits and CIK-prefixed values.
func FormatCIK(cik string) (string, error) {
	digits := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(cik)), "CIK")
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "", fmt.Errorf("invalid CIK %q: no digits", cik)
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return "", fmt.Errorf("invalid CIK %q", cik)
	}
	return fmt.Sprintf("CIK%010d", n), nil
}

type tickerEntry struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// ResolveCompany looks up the CIK of ticker. A trailing exchange suffix
// (AAPL.US) is ignored. The ticker map is downloaded once per client.
func (c *Client) ResolveCompany(ctx context.Context, ticker string) (*interfaces.CompanyInfo, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))
	if i := strings.LastIndex(normalized, "."); i > 0 {
		normalized = normalized[:i]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tickers == nil {
		c.logger.Info().Msg("Fetching ticker mapping from SEC")
		body, err := c.get(ctx, c.tickersURL)
		if err != nil {
			return nil, fmt.Errorf("fetch ticker map: %w", err)
		}
		var raw map[string]tickerEntry
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("decode ticker map: %w", err)
		}
		tickers := make(map[string]*interfaces.CompanyInfo, len(raw))
		for _, entry := range raw {
			cik, err := FormatCIK(entry.CIK.String())
			if err != nil {
				continue
			}
			symbol := strings.ToUpper(entry.Ticker)
			tickers[symbol] = &interfaces.CompanyInfo{Symbol: symbol, CIK: cik, Name: entry.Title}
		}
		c.tickers = tickers
	}

	info, ok := c.tickers[normalized]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, ErrUnknownTicker)
	}
	cp := *info
	return &cp, nil
}

// FetchCompanyFacts downloads the companyfacts document for cik.
func (c *Client) FetchCompanyFacts(ctx context.Context, cik string) ([]byte, error) {
	formatted, err := FormatCIK(cik)
	if err != nil {
		return nil, err
	}
	reqURL := fmt.Sprintf("%s/api/xbrl/companyfacts/%s.json", c.baseURL, formatted)

	c.logger.Info().Str("cik", formatted).Msg("Downloading company facts")
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("company facts for %s: response is not JSON", formatted)
	}
	return body, nil
}

// Ensure Client implements SECClient
var _ interfaces.SECClient = (*Client)(nil)
