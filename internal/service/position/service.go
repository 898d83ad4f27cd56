package position

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/OliverWithClaude/Finsite/internal/domain/position"
	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
)

// PriceSource supplies the most recent cached close for valuation.
type PriceSource interface {
	LatestClose(ctx context.Context, symbol string) (float64, bool)
}

// OpenPosition is an open position enriched with its current valuation.
type OpenPosition struct {
	position.Position
	Shares               decimal.Decimal  `json:"shares"`
	CurrentPrice         *decimal.Decimal `json:"current_price,omitempty"`
	CurrentValue         *decimal.Decimal `json:"current_value,omitempty"`
	UnrealizedPnL        *decimal.Decimal `json:"unrealized_pnl,omitempty"`
	UnrealizedPnLPercent *decimal.Decimal `json:"unrealized_pnl_percent,omitempty"`
}

// ClosedPosition is a closed position enriched with its realized outcome.
type ClosedPosition struct {
	position.Position
	Shares            decimal.Decimal `json:"shares"`
	ExitPricePerShare decimal.Decimal `json:"exit_price_per_share"`
	Profit            decimal.Decimal `json:"profit"`
	ProfitPercent     decimal.Decimal `json:"profit_percent"`
	HoldingDays       int             `json:"holding_days"`
}

// Service implements the position ledger on top of the repository and the
// price cache.
type Service struct {
	repo   position.Repository
	prices PriceSource
}

func NewService(repo position.Repository, prices PriceSource) *Service {
	return &Service{repo: repo, prices: prices}
}

// Open validates and records a new position with its BUY trade.
func (s *Service) Open(ctx context.Context, in position.OpenInput) (*position.Position, error) {
	in.Symbol = pricehistory.NormalizeSymbol(in.Symbol)
	if in.Symbol == "" {
		return nil, position.ErrInvalidEntry
	}
	if !in.EntryValue.IsPositive() || !in.EntryPricePerShare.IsPositive() {
		return nil, position.ErrInvalidEntry
	}
	if !position.ValidateCurrency(strings.ToUpper(in.EntryCurrency)) {
		return nil, position.ErrInvalidCurrency
	}
	in.EntryCurrency = strings.ToUpper(in.EntryCurrency)

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create position: %w", err)
	}

	log.Info().
		Int64("position_id", p.ID).
		Str("symbol", p.Symbol).
		Str("entry_value", p.EntryValue.String()).
		Msg("Position opened")
	return p, nil
}

// Close validates and closes an open position, recording the SELL trade.
// The exit price per share is derived from the exit value and the share
// count of the entry leg.
func (s *Service) Close(ctx context.Context, in position.CloseInput) (*position.Position, error) {
	if !in.ExitValue.IsPositive() {
		return nil, position.ErrInvalidEntry
	}
	if !position.ValidateCurrency(strings.ToUpper(in.ExitCurrency)) {
		return nil, position.ErrInvalidCurrency
	}
	in.ExitCurrency = strings.ToUpper(in.ExitCurrency)

	current, err := s.repo.Get(ctx, in.PositionID)
	if err != nil {
		return nil, err
	}
	if current.Status != position.StatusOpen {
		return nil, position.ErrAlreadyClosed
	}
	if in.ExitDate.Before(current.EntryDate) {
		return nil, position.ErrInvalidEntry
	}

	shares := current.Shares()
	exitPrice := decimal.Zero
	if !shares.IsZero() {
		exitPrice = in.ExitValue.DivRound(shares, 8)
	}

	p, err := s.repo.Close(ctx, in, exitPrice)
	if err != nil {
		return nil, err
	}

	profit, percent := p.RealizedProfit()
	log.Info().
		Int64("position_id", p.ID).
		Str("symbol", p.Symbol).
		Str("profit", profit.String()).
		Str("profit_percent", percent.String()).
		Msg("Position closed")
	return p, nil
}

// Get returns one position by id.
func (s *Service) Get(ctx context.Context, id int64) (*position.Position, error) {
	return s.repo.Get(ctx, id)
}

// Trades returns the trade legs of a position, entry first.
func (s *Service) Trades(ctx context.Context, id int64) ([]position.Trade, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTrades(ctx, id)
}

// ListOpen returns open positions with a best-effort current valuation.
// Symbols without a recent cached close are served without one.
func (s *Service) ListOpen(ctx context.Context) ([]OpenPosition, error) {
	rows, err := s.repo.ListByStatus(ctx, position.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list open positions: %w", err)
	}

	out := make([]OpenPosition, 0, len(rows))
	for _, p := range rows {
		op := OpenPosition{Position: p, Shares: p.Shares().Round(8)}
		if close, ok := s.prices.LatestClose(ctx, p.Symbol); ok {
			price := decimal.NewFromFloat(close)
			value := op.Shares.Mul(price).Round(2)
			pnl := value.Sub(p.EntryValue).Round(2)
			op.CurrentPrice = &price
			op.CurrentValue = &value
			op.UnrealizedPnL = &pnl
			if !p.EntryValue.IsZero() {
				percent := pnl.Div(p.EntryValue).Mul(decimal.NewFromInt(100)).Round(2)
				op.UnrealizedPnLPercent = &percent
			}
		} else {
			log.Debug().Str("symbol", p.Symbol).Msg("No recent close for valuation")
		}
		out = append(out, op)
	}
	return out, nil
}

// ListClosed returns closed positions with their realized outcomes.
func (s *Service) ListClosed(ctx context.Context) ([]ClosedPosition, error) {
	rows, err := s.repo.ListByStatus(ctx, position.StatusClosed)
	if err != nil {
		return nil, fmt.Errorf("list closed positions: %w", err)
	}

	out := make([]ClosedPosition, 0, len(rows))
	for _, p := range rows {
		profit, percent := p.RealizedProfit()
		out = append(out, ClosedPosition{
			Position:          p,
			Shares:            p.Shares().Round(8),
			ExitPricePerShare: p.ExitPricePerShare(),
			Profit:            profit,
			ProfitPercent:     percent,
			HoldingDays:       p.HoldingDays(),
		})
	}
	return out, nil
}
