package position

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position status
const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// Trade types
const (
	TradeBuy  = "BUY"
	TradeSell = "SELL"
)

// ValidateCurrency validates a position currency.
// Currency is recorded as entered; no conversion is performed anywhere.
func ValidateCurrency(currency string) bool {
	return currency == "EUR" || currency == "USD"
}

// Position represents one equity position, open or closed.
// Maps to the positions table.
type Position struct {
	ID                 int64           `json:"id" db:"id"`
	Symbol             string          `json:"ticker" db:"symbol"`
	Status             string          `json:"status" db:"status"`
	EntryDate          time.Time       `json:"entry_date" db:"entry_date"`
	EntryValue         decimal.Decimal `json:"entry_value_eur" db:"entry_value"`
	EntryPricePerShare decimal.Decimal `json:"entry_price_per_share" db:"entry_price_per_share"`
	EntryCurrency      string          `json:"entry_currency" db:"entry_currency"`

	ExitDate     *time.Time       `json:"exit_date,omitempty" db:"exit_date"`
	ExitValue    *decimal.Decimal `json:"exit_value_eur,omitempty" db:"exit_value"`
	ExitCurrency *string          `json:"exit_currency,omitempty" db:"exit_currency"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Trade records one side of a position, mirroring the entry/exit bookkeeping.
// Maps to the trades table.
type Trade struct {
	ID            int64           `json:"id" db:"id"`
	PositionID    int64           `json:"position_id" db:"position_id"`
	Symbol        string          `json:"ticker" db:"symbol"`
	Type          string          `json:"trade_type" db:"trade_type"`
	TradeDate     time.Time       `json:"trade_date" db:"trade_date"`
	Amount        decimal.Decimal `json:"amount_eur" db:"amount"`
	PricePerShare decimal.Decimal `json:"price_per_share" db:"price_per_share"`
	Currency      string          `json:"currency" db:"currency"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Shares derives the share count from the entry leg.
func (p Position) Shares() decimal.Decimal {
	if p.EntryPricePerShare.IsZero() {
		return decimal.Zero
	}
	return p.EntryValue.Div(p.EntryPricePerShare)
}

// ExitPricePerShare derives the exit price from the exit value and the entry
// share count. Only meaningful for closed positions.
func (p Position) ExitPricePerShare() decimal.Decimal {
	shares := p.Shares()
	if p.ExitValue == nil || shares.IsZero() {
		return decimal.Zero
	}
	return p.ExitValue.DivRound(shares, 8)
}

// RealizedProfit returns the absolute and percentage profit of a closed
// position, both rounded to 2 decimals. Zero values for open positions.
func (p Position) RealizedProfit() (profit, percent decimal.Decimal) {
	if p.ExitValue == nil || p.EntryValue.IsZero() {
		return decimal.Zero, decimal.Zero
	}
	profit = p.ExitValue.Sub(p.EntryValue)
	percent = profit.Div(p.EntryValue).Mul(decimal.NewFromInt(100))
	return profit.Round(2), percent.Round(2)
}

// HoldingDays returns the number of calendar days the position was held.
// Zero when the position is still open.
func (p Position) HoldingDays() int {
	if p.ExitDate == nil {
		return 0
	}
	return int(p.ExitDate.Sub(p.EntryDate).Hours() / 24)
}
