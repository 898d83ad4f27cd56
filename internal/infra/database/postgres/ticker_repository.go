package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
)

// TickerRepository implements ticker.Repository on the tickers table.
type TickerRepository struct {
	pool *pgxpool.Pool
}

// NewTickerRepository creates a new ticker repository
func NewTickerRepository(pool *pgxpool.Pool) *TickerRepository {
	return &TickerRepository{pool: pool}
}

// List returns all tracked tickers ordered by symbol.
func (r *TickerRepository) List(ctx context.Context) ([]ticker.Ticker, error) {
	query := `
		SELECT id, symbol, name, added_at
		FROM tickers
		ORDER BY symbol ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tickers: %w", err)
	}
	defer rows.Close()

	tickers := []ticker.Ticker{}
	for rows.Next() {
		var t ticker.Ticker
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Name, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}

	return tickers, rows.Err()
}

// GetBySymbol returns one ticker by symbol.
func (r *TickerRepository) GetBySymbol(ctx context.Context, symbol string) (*ticker.Ticker, error) {
	query := `
		SELECT id, symbol, name, added_at
		FROM tickers
		WHERE symbol = $1
	`

	var t ticker.Ticker
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&t.ID, &t.Symbol, &t.Name, &t.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ticker.ErrNotFound
		}
		return nil, fmt.Errorf("query ticker: %w", err)
	}

	return &t, nil
}

// Create inserts a new ticker.
func (r *TickerRepository) Create(ctx context.Context, symbol, name string) (*ticker.Ticker, error) {
	query := `
		INSERT INTO tickers (symbol, name)
		VALUES ($1, $2)
		RETURNING id, symbol, name, added_at
	`

	var t ticker.Ticker
	err := r.pool.QueryRow(ctx, query, symbol, name).Scan(&t.ID, &t.Symbol, &t.Name, &t.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ticker.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert ticker: %w", err)
	}

	return &t, nil
}

// Delete removes a ticker by symbol.
func (r *TickerRepository) Delete(ctx context.Context, symbol string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickers WHERE symbol = $1`, symbol)
	if err != nil {
		return fmt.Errorf("delete ticker: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ticker.ErrNotFound
	}
	return nil
}
