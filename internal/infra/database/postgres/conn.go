package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/OliverWithClaude/Finsite/internal/pkg/config"
)

// Pool wraps pgxpool.Pool
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new PostgreSQL connection pool and bootstraps the schema.
// The pool is constructed explicitly and passed to repositories; there is no
// process-wide database handle.
func NewPool(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Pool{Pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("PostgreSQL connected")
	return p, nil
}

// migrate creates the schema when missing. Statements are idempotent, so the
// bootstrap is safe to run at every start.
func (p *Pool) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tickers (
			id         SERIAL PRIMARY KEY,
			symbol     TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			added_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS positions (
			id                    BIGSERIAL PRIMARY KEY,
			symbol                TEXT NOT NULL,
			status                TEXT NOT NULL CHECK (status IN ('OPEN', 'CLOSED')),
			entry_date            DATE NOT NULL,
			entry_value           NUMERIC(18,4) NOT NULL,
			entry_price_per_share NUMERIC(18,4) NOT NULL,
			entry_currency        TEXT NOT NULL CHECK (entry_currency IN ('EUR', 'USD')),
			exit_date             DATE,
			exit_value            NUMERIC(18,4),
			exit_currency         TEXT CHECK (exit_currency IN ('EUR', 'USD')),
			created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id              BIGSERIAL PRIMARY KEY,
			position_id     BIGINT NOT NULL REFERENCES positions(id),
			symbol          TEXT NOT NULL,
			trade_type      TEXT NOT NULL CHECK (trade_type IN ('BUY', 'SELL')),
			trade_date      DATE NOT NULL,
			amount          NUMERIC(18,4) NOT NULL,
			price_per_share NUMERIC(18,4) NOT NULL,
			currency        TEXT NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_position ON trades(position_id)`,

		`CREATE TABLE IF NOT EXISTS price_history (
			id          BIGSERIAL PRIMARY KEY,
			symbol      TEXT NOT NULL,
			price_date  DATE NOT NULL,
			close_price DOUBLE PRECISION NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (symbol, price_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_symbol_date ON price_history(symbol, price_date)`,
	}

	for _, s := range stmts {
		if _, err := p.Exec(ctx, s); err != nil {
			return fmt.Errorf("exec %.40q: %w", s, err)
		}
	}
	return nil
}

// Close closes the connection pool
func (p *Pool) Close() {
	log.Info().Msg("Closing PostgreSQL connection pool...")
	p.Pool.Close()
}
