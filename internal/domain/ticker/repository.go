package ticker

import "context"

// Repository defines interface for watchlist persistence
type Repository interface {
	// List returns all tracked tickers ordered by symbol.
	List(ctx context.Context) ([]Ticker, error)

	// GetBySymbol returns one ticker or ErrNotFound.
	GetBySymbol(ctx context.Context, symbol string) (*Ticker, error)

	// Create inserts a new ticker. Returns ErrAlreadyExists on a duplicate symbol.
	Create(ctx context.Context, symbol, name string) (*Ticker, error)

	// Delete removes a ticker by symbol. Returns ErrNotFound when absent.
	Delete(ctx context.Context, symbol string) error
}

// SnapshotSource fetches a quote snapshot for the validation heuristic.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context, symbol string) (*QuoteSnapshot, error)
}
