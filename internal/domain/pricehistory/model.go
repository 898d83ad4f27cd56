package pricehistory

import (
	"context"
	"strings"
	"time"
)

// Sample represents one observed daily closing price.
// Maps to the price_history table; rows are immutable once stored.
type Sample struct {
	Symbol string    `json:"symbol" db:"symbol"`
	Date   time.Time `json:"date" db:"price_date"`
	Close  float64   `json:"close" db:"close_price"`
}

// Point is one entry of a served price series.
// Dates use the YYYY-MM-DD wire format, closes are rounded to 2 decimals.
type Point struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// NormalizeSymbol normalizes an instrument identifier (uppercase, trimmed).
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Store defines the price cache persistence contract.
// (symbol, date) is unique; inserting an existing pair is a no-op, not an error.
type Store interface {
	// Query returns all cached samples for symbol within r, ordered by date ascending.
	// An empty range is an empty slice, not an error.
	Query(ctx context.Context, symbol string, r DateRange) ([]Sample, error)

	// UpsertMany persists a batch of samples for symbol with insert-if-absent
	// semantics. A mid-batch failure leaves already-written rows committed.
	UpsertMany(ctx context.Context, symbol string, samples []Sample) error
}

// QuoteSource fetches daily closing prices from a remote provider.
// The returned samples carry no ordering guarantee; callers sort.
type QuoteSource interface {
	FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]Sample, error)
}
