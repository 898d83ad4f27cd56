package tickerinfo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
)

// Service manages the watchlist and serves quote-derived ticker details.
type Service struct {
	repo   ticker.Repository
	source ticker.SnapshotSource
}

func NewService(repo ticker.Repository, source ticker.SnapshotSource) *Service {
	return &Service{repo: repo, source: source}
}

// List returns the watchlist ordered by symbol.
func (s *Service) List(ctx context.Context) ([]ticker.Ticker, error) {
	return s.repo.List(ctx)
}

// Get returns one watched ticker.
func (s *Service) Get(ctx context.Context, symbol string) (*ticker.Ticker, error) {
	return s.repo.GetBySymbol(ctx, pricehistory.NormalizeSymbol(symbol))
}

// Add validates the symbol against the quote provider and adds it to the
// watchlist. When no display name is given, the provider's company name is
// used, falling back to the symbol itself.
func (s *Service) Add(ctx context.Context, symbol, name string) (*ticker.Ticker, error) {
	symbol = pricehistory.NormalizeSymbol(symbol)

	valid, snapshot := s.validate(ctx, symbol)
	if !valid {
		return nil, ticker.ErrInvalidSymbol
	}

	if name == "" {
		name = symbol
		if snapshot != nil {
			name = snapshot.Name()
		}
	}

	t, err := s.repo.Create(ctx, symbol, name)
	if err != nil {
		return nil, err
	}

	log.Info().Str("symbol", symbol).Str("name", name).Msg("Ticker added to watchlist")
	return t, nil
}

// Remove deletes a ticker from the watchlist.
func (s *Service) Remove(ctx context.Context, symbol string) error {
	symbol = pricehistory.NormalizeSymbol(symbol)
	if err := s.repo.Delete(ctx, symbol); err != nil {
		return err
	}
	log.Info().Str("symbol", symbol).Msg("Ticker removed from watchlist")
	return nil
}

// Validate reports whether the symbol passes the validation heuristic.
func (s *Service) Validate(ctx context.Context, symbol string) bool {
	valid, _ := s.validate(ctx, pricehistory.NormalizeSymbol(symbol))
	return valid
}

// Search resolves a query as a symbol and returns it with its company name,
// or ErrInvalidSymbol when the heuristic rejects it.
func (s *Service) Search(ctx context.Context, query string) (symbol, name string, err error) {
	symbol = pricehistory.NormalizeSymbol(query)

	valid, snapshot := s.validate(ctx, symbol)
	if !valid {
		return "", "", ticker.ErrInvalidSymbol
	}

	name = symbol
	if snapshot != nil {
		name = snapshot.Name()
	}
	return symbol, name, nil
}

// Info fetches detailed quote information for a symbol. Provider failures
// surface as errors; a near-empty payload means the symbol has no data.
func (s *Service) Info(ctx context.Context, symbol string) (*ticker.Info, error) {
	symbol = pricehistory.NormalizeSymbol(symbol)

	snapshot, err := s.source.FetchSnapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch quote for %s: %w", symbol, err)
	}
	if snapshot.FieldCount <= 1 {
		return nil, ticker.ErrInvalidSymbol
	}

	info := &ticker.Info{
		Symbol:        symbol,
		Name:          snapshot.Name(),
		CurrentPrice:  snapshot.CurrentPrice,
		PreviousClose: snapshot.PreviousClose,
		MarketCap:     snapshot.MarketCap,
		Exchange:      snapshot.Exchange,
		Currency:      snapshot.Currency,
		Sector:        snapshot.Sector,
		Industry:      snapshot.Industry,
	}
	if info.Currency == "" {
		info.Currency = "USD"
	}
	if info.CurrentPrice != nil && info.PreviousClose != nil && *info.PreviousClose > 0 {
		change := round2(*info.CurrentPrice - *info.PreviousClose)
		percent := round2(change / *info.PreviousClose * 100)
		info.Change = &change
		info.ChangePercent = &percent
	}
	return info, nil
}

func (s *Service) validate(ctx context.Context, symbol string) (bool, *ticker.QuoteSnapshot) {
	if _, blacklisted := blacklistedSymbols[symbol]; blacklisted {
		log.Info().Str("symbol", symbol).Msg("Symbol is blacklisted")
		return false, nil
	}
	if invalidPattern(symbol) {
		log.Info().Str("symbol", symbol).Msg("Symbol has an invalid pattern")
		return false, nil
	}

	snapshot, err := s.source.FetchSnapshot(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("Failed to fetch quote snapshot")
		return false, nil
	}
	return validateSnapshot(symbol, snapshot), snapshot
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
