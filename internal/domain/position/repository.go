package position

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// OpenInput carries the fields needed to open a position.
type OpenInput struct {
	Symbol             string
	EntryDate          time.Time
	EntryValue         decimal.Decimal
	EntryPricePerShare decimal.Decimal
	EntryCurrency      string
}

// CloseInput carries the fields needed to close a position.
type CloseInput struct {
	PositionID   int64
	ExitDate     time.Time
	ExitValue    decimal.Decimal
	ExitCurrency string
}

// Repository defines interface for position and trade persistence
type Repository interface {
	// Create inserts a position together with its BUY trade in one transaction.
	Create(ctx context.Context, in OpenInput) (*Position, error)

	// Close marks an open position closed and records the SELL trade in one
	// transaction. Returns ErrNotFound or ErrAlreadyClosed.
	Close(ctx context.Context, in CloseInput, exitPricePerShare decimal.Decimal) (*Position, error)

	// Get returns one position or ErrNotFound.
	Get(ctx context.Context, id int64) (*Position, error)

	// ListByStatus returns positions with the given status, newest entry first.
	ListByStatus(ctx context.Context, status string) ([]Position, error)

	// ListTrades returns all trades of a position ordered by trade date.
	ListTrades(ctx context.Context, positionID int64) ([]Trade, error)
}
