package models

import "time"

// PriceSnapshot is the latest market observation for a symbol. MarketCap is
// zero when unknown.
type PriceSnapshot struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	AsOf      string    `json:"as_of"`
	Currency  string    `json:"currency,omitempty"`
	Volume    int64     `json:"volume,omitempty"`
	MarketCap float64   `json:"market_cap,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// RawPayload is a provider response kept for re-normalization.
type RawPayload struct {
	Provider  string    `json:"provider"`
	Symbol    string    `json:"symbol"`
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

// RawPayloadID is the storage key for a provider payload.
func RawPayloadID(provider, symbol string) string {
	return provider + "|" + symbol
}
