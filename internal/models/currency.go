package models

import "strings"

// NormalizeCurrencyCode upper-cases and trims a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsPenceCurrency reports whether code denotes pence sterling.
func IsPenceCurrency(code string) bool {
	switch NormalizeCurrencyCode(code) {
	case "GBX", "GBP0.01":
		return true
	}
	return false
}

// NormalizeAmount scales pence values to pounds and recodes them as GBP.
// Other codes are only canonicalized. Applying it twice changes nothing.
func NormalizeAmount(value float64, code string) (float64, string) {
	c := NormalizeCurrencyCode(code)
	if IsPenceCurrency(c) {
		return value / 100, "GBP"
	}
	return value, c
}

// MergeCurrencies resolves one currency from codes, ignoring empty entries.
// ok is false when two non-empty codes disagree. An empty result with ok
// true means no currency was known.
func MergeCurrencies(codes ...string) (string, bool) {
	merged := ""
	for _, code := range codes {
		c := NormalizeCurrencyCode(code)
		if c == "" {
			continue
		}
		if merged == "" {
			merged = c
			continue
		}
		if merged != c {
			return "", false
		}
	}
	return merged, true
}

// CurrenciesMatch is true when either side is unknown or both agree.
func CurrenciesMatch(a, b string) bool {
	_, ok := MergeCurrencies(a, b)
	return ok
}

// ExchangeOf returns the upper-cased exchange suffix of an EODHD symbol
// ("SHEL.LSE" -> "LSE"), or "" when the symbol has none.
func ExchangeOf(symbol string) string {
	idx := strings.LastIndex(symbol, ".")
	if idx < 0 || idx == len(symbol)-1 {
		return ""
	}
	return strings.ToUpper(symbol[idx+1:])
}

// ExchangeCurrency returns the quote currency of an EODHD exchange code.
// London quotes are in pence. Unknown exchanges return "".
func ExchangeCurrency(exchange string) string {
	switch strings.ToUpper(exchange) {
	case "US", "NYSE", "NASDAQ":
		return "USD"
	case "LSE", "LON":
		return "GBX"
	case "AU", "ASX":
		return "AUD"
	case "TO", "V":
		return "CAD"
	case "XETRA", "F", "PA", "AS", "MI", "MC", "BR", "LS":
		return "EUR"
	case "SW":
		return "CHF"
	case "HK":
		return "HKD"
	}
	return ""
}
