package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/OliverWithClaude/Finsite/internal/domain/position"
)

// PositionRepository implements position.Repository on the positions and
// trades tables.
type PositionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

const positionColumns = `
	id, symbol, status, entry_date, entry_value, entry_price_per_share,
	entry_currency, exit_date, exit_value, exit_currency, created_at
`

func scanPosition(row pgx.Row) (*position.Position, error) {
	var p position.Position
	err := row.Scan(
		&p.ID, &p.Symbol, &p.Status, &p.EntryDate, &p.EntryValue,
		&p.EntryPricePerShare, &p.EntryCurrency,
		&p.ExitDate, &p.ExitValue, &p.ExitCurrency, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a position and its BUY trade in one transaction.
func (r *PositionRepository) Create(ctx context.Context, in position.OpenInput) (*position.Position, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO positions (symbol, status, entry_date, entry_value, entry_price_per_share, entry_currency)
		VALUES ($1, 'OPEN', $2, $3, $4, $5)
		RETURNING `+positionColumns,
		in.Symbol, in.EntryDate, in.EntryValue, in.EntryPricePerShare, in.EntryCurrency,
	)
	p, err := scanPosition(row)
	if err != nil {
		return nil, fmt.Errorf("insert position: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trades (position_id, symbol, trade_type, trade_date, amount, price_per_share, currency)
		VALUES ($1, $2, 'BUY', $3, $4, $5, $6)`,
		p.ID, in.Symbol, in.EntryDate, in.EntryValue, in.EntryPricePerShare, in.EntryCurrency,
	)
	if err != nil {
		return nil, fmt.Errorf("insert buy trade: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

// Close marks an open position closed and records the SELL trade.
func (r *PositionRepository) Close(ctx context.Context, in position.CloseInput, exitPricePerShare decimal.Decimal) (*position.Position, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE positions
		SET status = 'CLOSED', exit_date = $2, exit_value = $3, exit_currency = $4
		WHERE id = $1 AND status = 'OPEN'
		RETURNING `+positionColumns,
		in.PositionID, in.ExitDate, in.ExitValue, in.ExitCurrency,
	)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the id is unknown or the position is already closed;
			// a plain lookup tells the two apart.
			if _, getErr := r.Get(ctx, in.PositionID); getErr != nil {
				return nil, getErr
			}
			return nil, position.ErrAlreadyClosed
		}
		return nil, fmt.Errorf("close position: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO trades (position_id, symbol, trade_type, trade_date, amount, price_per_share, currency)
		VALUES ($1, $2, 'SELL', $3, $4, $5, $6)`,
		p.ID, p.Symbol, in.ExitDate, in.ExitValue, exitPricePerShare, in.ExitCurrency,
	)
	if err != nil {
		return nil, fmt.Errorf("insert sell trade: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return p, nil
}

// Get returns one position by id.
func (r *PositionRepository) Get(ctx context.Context, id int64) (*position.Position, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+positionColumns+` FROM positions WHERE id = $1`, id)
	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, position.ErrNotFound
		}
		return nil, fmt.Errorf("query position: %w", err)
	}
	return p, nil
}

// ListByStatus returns positions with the given status, newest entry first.
func (r *PositionRepository) ListByStatus(ctx context.Context, status string) ([]position.Position, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE status = $1 ORDER BY entry_date DESC, id DESC`,
		status,
	)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	positions := []position.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		positions = append(positions, *p)
	}

	return positions, rows.Err()
}

// ListTrades returns all trades of a position ordered by trade date.
func (r *PositionRepository) ListTrades(ctx context.Context, positionID int64) ([]position.Trade, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, position_id, symbol, trade_type, trade_date, amount, price_per_share, currency, created_at
		FROM trades
		WHERE position_id = $1
		ORDER BY trade_date ASC, id ASC`,
		positionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	trades := []position.Trade{}
	for rows.Next() {
		var t position.Trade
		if err := rows.Scan(
			&t.ID, &t.PositionID, &t.Symbol, &t.Type, &t.TradeDate,
			&t.Amount, &t.PricePerShare, &t.Currency, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		trades = append(trades, t)
	}

	return trades, rows.Err()
}
