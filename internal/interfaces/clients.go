package interfaces

import (
	"context"
	"time"

	"github.com/emretezel/pyvalue-sub000/internal/models"
)

// EODHDClient provides access to EODHD API
type EODHDClient interface {
	// GetEOD retrieves end-of-day price data
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) ([]models.EODBar, error)

	// GetLatestPrice returns the newest EOD bar as a snapshot.
	GetLatestPrice(ctx context.Context, symbol string) (*models.PriceSnapshot, error)

	// GetFundamentals retrieves the raw fundamentals document.
	GetFundamentals(ctx context.Context, ticker string) ([]byte, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD data
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// CompanyInfo is a ticker to CIK mapping entry.
type CompanyInfo struct {
	Symbol string `json:"symbol"`
	CIK    string `json:"cik"`
	Name   string `json:"name"`
}

// SECClient downloads SEC EDGAR company facts.
type SECClient interface {
	ResolveCompany(ctx context.Context, ticker string) (*CompanyInfo, error)
	FetchCompanyFacts(ctx context.Context, cik string) ([]byte, error)
}
