package pricehistory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
)

// Service reconciles the local price cache against the remote quote source
// and serves gap-filled daily closing series. It is stateless; the store is
// the single source of truth, so concurrent calls for the same symbol are
// safe (duplicate fetches are wasted work, not corruption, because the store
// insert is idempotent).
type Service struct {
	store  pricehistory.Store
	source pricehistory.QuoteSource
}

// NewService creates a new price history service
func NewService(store pricehistory.Store, source pricehistory.QuoteSource) *Service {
	return &Service{store: store, source: source}
}

// GetSeries returns the closing-price series for symbol over the range.
//
// Cached samples are served directly; the candidate trading days (weekdays
// only) that are absent from the cache trigger one fetch of the full range
// from the quote source, whose surviving samples are persisted and merged.
// A remote failure degrades to whatever was cached; only a cache read
// failure is returned as an error, since without the cache contents the
// missing set cannot be computed. An empty series is a valid result.
func (s *Service) GetSeries(ctx context.Context, symbol string, r pricehistory.DateRange) ([]pricehistory.Point, error) {
	symbol = pricehistory.NormalizeSymbol(symbol)

	tradingDays := r.TradingDays()

	cached, err := s.store.Query(ctx, symbol, r)
	if err != nil {
		return nil, fmt.Errorf("query price cache for %s: %w", symbol, err)
	}

	closes := make(map[string]float64, len(cached))
	for _, smp := range cached {
		closes[smp.Date.Format(pricehistory.DateFormat)] = smp.Close
	}

	var missing []string
	for _, d := range tradingDays {
		key := d.Format(pricehistory.DateFormat)
		if _, ok := closes[key]; !ok {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		log.Info().
			Str("symbol", symbol).
			Int("missing", len(missing)).
			Msg("Price cache gap, fetching from quote source")

		s.refill(ctx, symbol, r, closes)
	}

	// The served set is filtered by range membership only. A weekend sample
	// that reached the cache through another path would still surface here;
	// weekends never become gaps because they are excluded from the missing
	// set above, not from the result.
	points := make([]pricehistory.Point, 0, len(closes))
	for key, close := range closes {
		d, err := pricehistory.ParseDate(key)
		if err != nil || !r.Contains(d) {
			continue
		}
		points = append(points, pricehistory.Point{Date: key, Close: round2(close)})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	return points, nil
}

// refill fetches the full range from the quote source, persists the
// surviving samples, and merges them into closes without overriding
// anything already cached. All failures are logged and swallowed: the
// request proceeds on cached data.
func (s *Service) refill(ctx context.Context, symbol string, r pricehistory.DateRange, closes map[string]float64) {
	fetched, err := s.source.FetchDailyCloses(ctx, symbol, r.Start, r.End)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("Quote source fetch failed, serving cached data only")
		return
	}

	fresh := make([]pricehistory.Sample, 0, len(fetched))
	for _, smp := range fetched {
		// Non-positive closes are placeholder data and must never reach
		// the cache. Out-of-range samples come from the extended outbound
		// request and are dropped here.
		if smp.Close <= 0 || !r.Contains(smp.Date) {
			continue
		}
		fresh = append(fresh, smp)
	}
	if len(fresh) == 0 {
		return
	}

	if err := s.store.UpsertMany(ctx, symbol, fresh); err != nil {
		// The merged in-memory series is still served; losing the write
		// costs a re-fetch on the next request, not correctness.
		log.Error().Err(err).Str("symbol", symbol).Msg("Failed to persist fetched prices")
	}

	for _, smp := range fresh {
		key := smp.Date.Format(pricehistory.DateFormat)
		if _, ok := closes[key]; !ok {
			closes[key] = smp.Close
		}
	}

	log.Info().Str("symbol", symbol).Int("fetched", len(fresh)).Msg("Price cache refilled")
}

// LatestClose returns the most recent reconciled closing price within a
// trailing two-week window. Used by position valuation.
func (s *Service) LatestClose(ctx context.Context, symbol string) (float64, bool) {
	now := time.Now().UTC()
	r := pricehistory.NewDateRange(now.AddDate(0, 0, -14), now)

	points, err := s.GetSeries(ctx, symbol, r)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("Latest close lookup failed")
		return 0, false
	}
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Close, true
}

// round2 rounds half away from zero to 2 decimals: 150.005 -> 150.01.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
