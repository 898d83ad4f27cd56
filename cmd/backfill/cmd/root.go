// Package cmd - backfill CLI commands
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
	"github.com/OliverWithClaude/Finsite/internal/infra/database/postgres"
	"github.com/OliverWithClaude/Finsite/internal/infra/yahoo"
	"github.com/OliverWithClaude/Finsite/internal/pkg/config"
	"github.com/OliverWithClaude/Finsite/internal/pkg/logger"
	pricesvc "github.com/OliverWithClaude/Finsite/internal/service/pricehistory"
)

var (
	startFlag string
	endFlag   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "backfill [symbol...]",
	Short: "Warm the price cache for watched symbols",
	Long: `Warm the closing-price cache by reconciling it against the quote source.

With no arguments every symbol on the watchlist is backfilled; otherwise only
the given symbols are. The default window is the trailing year.`,
	RunE: runBackfill,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	now := time.Now().UTC()
	rootCmd.Flags().StringVar(&startFlag, "start", now.AddDate(-1, 0, 0).Format(pricehistory.DateFormat), "first date to backfill (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&endFlag, "end", now.Format(pricehistory.DateFormat), "last date to backfill (YYYY-MM-DD)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{
		Level:       level,
		Format:      "console",
		ServiceName: "finsite-backfill",
	}); err != nil {
		return err
	}

	r, err := pricehistory.ParseDateRange(startFlag, endFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer dbPool.Close()

	quotes := yahoo.NewClient(cfg.Yahoo.BaseURL, cfg.Yahoo.Timeout)
	prices := pricesvc.NewService(postgres.NewPriceRepository(dbPool.Pool), quotes)

	symbols := args
	if len(symbols) == 0 {
		tickers, err := postgres.NewTickerRepository(dbPool.Pool).List(ctx)
		if err != nil {
			return fmt.Errorf("load watchlist: %w", err)
		}
		for _, t := range tickers {
			symbols = append(symbols, t.Symbol)
		}
	}
	if len(symbols) == 0 {
		log.Warn().Msg("Watchlist is empty, nothing to backfill")
		return nil
	}

	failed := 0
	for _, symbol := range symbols {
		points, err := prices.GetSeries(ctx, symbol, r)
		if err != nil {
			failed++
			log.Error().Err(err).Str("symbol", symbol).Msg("Backfill failed")
			continue
		}
		log.Info().
			Str("symbol", symbol).
			Int("points", len(points)).
			Str("start", startFlag).
			Str("end", endFlag).
			Msg("Backfill complete")
	}

	if failed > 0 {
		return fmt.Errorf("backfill failed for %d of %d symbols", failed, len(symbols))
	}
	return nil
}
