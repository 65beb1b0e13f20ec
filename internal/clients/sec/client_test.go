package sec

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tickersJSON = `{
	"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."},
	"1": {"cik_str": 789019, "ticker": "MSFT", "title": "MICROSOFT CORP"}
}`

func newMockedClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	c, err := NewClient("pyvalue-tests test@example.com",
		WithHTTPClient(&http.Client{Transport: transport}),
		WithRateLimit(100),
	)
	require.NoError(t, err)
	return c, transport
}

func TestNewClient_RequiresUserAgent(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}

func TestFormatCIK(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"320193", "CIK0000320193", false},
		{"0000320193", "CIK0000320193", false},
		{"cik320193", "CIK0000320193", false},
		{"CIK0000000000", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		got, err := FormatCIK(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolveCompany_CachesTickerMap(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, DefaultTickersURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "pyvalue-tests test@example.com", req.Header.Get("User-Agent"))
		return httpmock.NewStringResponse(http.StatusOK, tickersJSON), nil
	})

	info, err := c.ResolveCompany(context.Background(), "aapl.us")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", info.Symbol)
	assert.Equal(t, "CIK0000320193", info.CIK)
	assert.Equal(t, "Apple Inc.", info.Name)

	info, err = c.ResolveCompany(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "CIK0000789019", info.CIK)

	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestResolveCompany_UnknownTicker(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, DefaultTickersURL, httpmock.NewStringResponder(http.StatusOK, tickersJSON))

	_, err := c.ResolveCompany(context.Background(), "ZZZZ")
	assert.True(t, errors.Is(err, ErrUnknownTicker))
}

func TestFetchCompanyFacts(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, "https://data.sec.gov/api/xbrl/companyfacts/CIK0000320193.json",
		httpmock.NewStringResponder(http.StatusOK, `{"cik": 320193, "facts": {}}`))

	body, err := c.FetchCompanyFacts(context.Background(), "320193")
	require.NoError(t, err)
	assert.JSONEq(t, `{"cik": 320193, "facts": {}}`, string(body))
}

func TestFetchCompanyFacts_APIError(t *testing.T) {
	c, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodGet, "https://data.sec.gov/api/xbrl/companyfacts/CIK0000000042.json",
		httpmock.NewStringResponder(http.StatusNotFound, "NoSuchKey"))

	_, err := c.FetchCompanyFacts(context.Background(), "CIK42")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NoSuchKey", apiErr.Message)
}

func TestFetchCompanyFacts_InvalidCIK(t *testing.T) {
	c, transport := newMockedClient(t)

	_, err := c.FetchCompanyFacts(context.Background(), "not-a-cik")
	assert.Error(t, err)
	assert.Zero(t, transport.GetTotalCallCount())
}
