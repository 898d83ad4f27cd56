package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
)

// PriceRepository implements pricehistory.Store on the price_history table.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// Query returns cached samples for symbol within the range, oldest first.
func (r *PriceRepository) Query(ctx context.Context, symbol string, dr pricehistory.DateRange) ([]pricehistory.Sample, error) {
	query := `
		SELECT symbol, price_date, close_price
		FROM price_history
		WHERE symbol = $1 AND price_date >= $2 AND price_date <= $3
		ORDER BY price_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, dr.Start, dr.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pricehistory.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	samples := []pricehistory.Sample{}
	for rows.Next() {
		var s pricehistory.Sample
		if err := rows.Scan(&s.Symbol, &s.Date, &s.Close); err != nil {
			return nil, fmt.Errorf("%w: %v", pricehistory.ErrDatabaseQuery, err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", pricehistory.ErrDatabaseQuery, err)
	}

	return samples, nil
}

// UpsertMany persists samples with insert-if-absent semantics. An existing
// (symbol, price_date) row is left untouched, which makes re-fetching
// overlapping ranges safe. On a mid-batch failure the rows already written
// stay committed.
func (r *PriceRepository) UpsertMany(ctx context.Context, symbol string, samples []pricehistory.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO price_history (symbol, price_date, close_price)
		VALUES ($1, $2, $3)
		ON CONFLICT (symbol, price_date) DO NOTHING
	`

	for _, s := range samples {
		batch.Queue(query, symbol, s.Date, s.Close)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range samples {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("%w: %v", pricehistory.ErrDatabaseInsert, err)
		}
	}

	return nil
}
