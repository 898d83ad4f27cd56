package ticker

import (
	"time"
)

// Ticker represents a tracked symbol on the watchlist.
// Maps to the tickers table.
type Ticker struct {
	ID      int       `json:"id" db:"id"`
	Symbol  string    `json:"symbol" db:"symbol"`
	Name    string    `json:"name" db:"name"`
	AddedAt time.Time `json:"added_date" db:"added_at"`
}

// QuoteSnapshot is a typed view of the fields a quote provider exposes for a
// symbol. It feeds the symbol validation predicates and the ticker-info API.
type QuoteSnapshot struct {
	Symbol        string   `json:"symbol"`
	ShortName     string   `json:"short_name,omitempty"`
	LongName      string   `json:"long_name,omitempty"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Bid           *float64 `json:"bid,omitempty"`
	Ask           *float64 `json:"ask,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	Exchange      string   `json:"exchange,omitempty"`
	QuoteType     string   `json:"quote_type,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`

	// FieldCount is the number of populated fields the provider returned,
	// including ones not mapped above. Shell listings come back nearly empty.
	FieldCount int `json:"field_count"`
	// HasRecentHistory reports whether the provider returned any daily bars
	// for the last few sessions. False for delisted symbols.
	HasRecentHistory bool `json:"has_recent_history"`
}

// Name returns the best available display name, falling back to the symbol.
func (q QuoteSnapshot) Name() string {
	if q.LongName != "" {
		return q.LongName
	}
	if q.ShortName != "" {
		return q.ShortName
	}
	return q.Symbol
}

// BestPrice returns the first positive price field, in order of preference.
func (q QuoteSnapshot) BestPrice() (float64, bool) {
	for _, p := range []*float64{q.CurrentPrice, q.PreviousClose, q.Ask, q.Bid} {
		if p != nil && *p > 0 {
			return *p, true
		}
	}
	return 0, false
}

// Info is the detailed ticker information served by the ticker-info API.
type Info struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PreviousClose *float64 `json:"previous_close,omitempty"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	Exchange      string   `json:"exchange,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Sector        string   `json:"sector,omitempty"`
	Industry      string   `json:"industry,omitempty"`
}
