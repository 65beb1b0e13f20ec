// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/emretezel/pyvalue-sub000/internal/common"
	"github.com/emretezel/pyvalue-sub000/internal/interfaces"
	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second

	// latestPriceLookback bounds the EOD window fetched for a latest price.
	latestPriceLookback = 14 * 24 * time.Hour
)

// Client implements the EODHDClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
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

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// getRaw performs a rate-limited GET request and returns the body
func (c *Client) getRaw(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

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
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	return body, nil
}

// get performs a GET request and decodes the JSON body into result
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	body, err := c.getRaw(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// FormatTicker upper-cases symbol and defaults bare tickers to the US exchange.
func FormatTicker(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}

// GetEOD retrieves end-of-day price data, newest first by default
func (c *Client) GetEOD(ctx context.Context, ticker string, opts ...interfaces.EODOption) ([]models.EODBar, error) {
	params := &interfaces.EODParams{
		Period: "d",
		Order:  "d", // descending (most recent first)
	}

	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("period", params.Period)
	urlParams.Set("order", params.Order)

	if !params.From.IsZero() {
		urlParams.Set("from", params.From.Format(common.DateLayout))
	}
	if !params.To.IsZero() {
		urlParams.Set("to", params.To.Format(common.DateLayout))
	}

	path := fmt.Sprintf("/eod/%s", FormatTicker(ticker))

	var bars []eodBarResponse
	if err := c.get(ctx, path, urlParams, &bars); err != nil {
		return nil, err
	}

	result := make([]models.EODBar, 0, len(bars))
	for _, bar := range bars {
		date, err := time.Parse(common.DateLayout, bar.Date)
		if err != nil {
			continue
		}
		result = append(result, models.EODBar{
			Date:     date,
			Open:     float64(bar.Open),
			High:     float64(bar.High),
			Low:      float64(bar.Low),
			Close:    float64(bar.Close),
			AdjClose: float64(bar.AdjustedClose),
			Volume:   int64(bar.Volume),
		})
	}

	return result, nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string      `json:"date"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	AdjustedClose flexFloat64 `json:"adjusted_close"`
	Volume        flexFloat64 `json:"volume"`
}

// GetLatestPrice returns the most recent close within the lookback window.
// The snapshot carries no currency or market cap; callers fill those in.
func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	now := c.now()
	bars, err := c.GetEOD(ctx, symbol, interfaces.WithDateRange(now.Add(-latestPriceLookback), now))
	if err != nil {
		return nil, err
	}

	var latest *models.EODBar
	for i := range bars {
		if bars[i].Close <= 0 {
			continue
		}
		if latest == nil || bars[i].Date.After(latest.Date) {
			latest = &bars[i]
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no EOD close for %s", symbol)
	}

	return &models.PriceSnapshot{
		Symbol:    strings.ToUpper(strings.TrimSpace(symbol)),
		Price:     latest.Close,
		AsOf:      latest.Date.Format(common.DateLayout),
		Volume:    latest.Volume,
		FetchedAt: now,
	}, nil
}

// GetFundamentals retrieves the raw fundamentals document
func (c *Client) GetFundamentals(ctx context.Context, ticker string) ([]byte, error) {
	path := fmt.Sprintf("/fundamentals/%s", FormatTicker(ticker))

	body, err := c.getRaw(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fundamentals for %s: response is not JSON", ticker)
	}

	c.logger.Debug().Str("ticker", ticker).Int("bytes", len(body)).Msg("EODHD fundamentals fetched")
	return body, nil
}

// Ensure Client implements EODHDClient
var _ interfaces.EODHDClient = (*Client)(nil)
