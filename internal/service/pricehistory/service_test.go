package pricehistory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
)

// memStore is an in-memory pricehistory.Store with insert-if-absent
// semantics matching the Postgres implementation.
type memStore struct {
	mu         sync.Mutex
	rows       map[string]map[string]float64 // symbol -> date -> close
	queryErr   error
	upsertErr  error
	inserted   int // rows actually written, duplicates excluded
	lastSymbol string
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]map[string]float64)}
}

func (m *memStore) put(symbol, date string, close float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[symbol] == nil {
		m.rows[symbol] = make(map[string]float64)
	}
	m.rows[symbol][date] = close
}

func (m *memStore) Query(ctx context.Context, symbol string, r pricehistory.DateRange) ([]pricehistory.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSymbol = symbol
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	var dates []string
	for date := range m.rows[symbol] {
		d, err := pricehistory.ParseDate(date)
		if err != nil {
			return nil, err
		}
		if r.Contains(d) {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	samples := make([]pricehistory.Sample, 0, len(dates))
	for _, date := range dates {
		d, _ := pricehistory.ParseDate(date)
		samples = append(samples, pricehistory.Sample{Symbol: symbol, Date: d, Close: m.rows[symbol][date]})
	}
	return samples, nil
}

func (m *memStore) UpsertMany(ctx context.Context, symbol string, samples []pricehistory.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.rows[symbol] == nil {
		m.rows[symbol] = make(map[string]float64)
	}
	for _, s := range samples {
		key := s.Date.Format(pricehistory.DateFormat)
		if _, ok := m.rows[symbol][key]; ok {
			continue
		}
		m.rows[symbol][key] = s.Close
		m.inserted++
	}
	return nil
}

// fakeSource is a scripted pricehistory.QuoteSource.
type fakeSource struct {
	samples []pricehistory.Sample
	err     error
	calls   int
}

func (f *fakeSource) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]pricehistory.Sample, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.samples, nil
}

func sample(t *testing.T, date string, close float64) pricehistory.Sample {
	t.Helper()
	d, err := pricehistory.ParseDate(date)
	require.NoError(t, err)
	return pricehistory.Sample{Date: d, Close: close}
}

func mustRange(t *testing.T, start, end string) pricehistory.DateRange {
	t.Helper()
	r, err := pricehistory.ParseDateRange(start, end)
	require.NoError(t, err)
	return r
}

func dates(points []pricehistory.Point) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, p.Date)
	}
	return out
}

// 2024-01-01 is a Monday; 01-06/01-07 are the weekend.
func TestGetSeriesBackfillsAndServesHolidayGap(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-01", 100.10),
		sample(t, "2024-01-02", 101.20),
		// 01-03 is a market holiday: the source has nothing for it.
		sample(t, "2024-01-04", 103.40),
		sample(t, "2024-01-05", 104.50),
	}}
	svc := NewService(store, source)

	r := mustRange(t, "2024-01-01", "2024-01-05")

	points, err := svc.GetSeries(context.Background(), "AAPL", r)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05"}, dates(points))
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 4, store.inserted)

	// The holiday stays missing forever, so every call re-attempts the
	// fetch, but the idempotent store gains no new rows.
	points, err = svc.GetSeries(context.Background(), "AAPL", r)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05"}, dates(points))
	assert.Equal(t, 2, source.calls)
	assert.Equal(t, 4, store.inserted)
}

func TestGetSeriesWeekendNeverFetched(t *testing.T) {
	store := newMemStore()
	store.put("AAPL", "2024-01-04", 103.40)
	store.put("AAPL", "2024-01-05", 104.50)
	source := &fakeSource{}
	svc := NewService(store, source)

	// Thursday through Sunday: both weekdays cached, weekend excluded from
	// the trading-day set, so nothing is missing.
	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-04", "2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-04", "2024-01-05"}, dates(points))
	assert.Equal(t, 0, source.calls)

	// A weekend-only range has no candidate trading days at all.
	points, err = svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-06", "2024-01-07"))
	require.NoError(t, err)
	assert.Empty(t, points)
	assert.Equal(t, 0, source.calls)
}

func TestGetSeriesServesPreexistingWeekendSample(t *testing.T) {
	// The result set is filtered by range membership only: a Saturday row
	// cached through another path still surfaces, even though Saturdays
	// are never fetched. This pins the historical behavior.
	store := newMemStore()
	store.put("AAPL", "2024-01-05", 104.50) // Friday
	store.put("AAPL", "2024-01-06", 105.00) // Saturday
	source := &fakeSource{}
	svc := NewService(store, source)

	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-05", "2024-01-07"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-05", "2024-01-06"}, dates(points))
	assert.Equal(t, 0, source.calls)
}

func TestGetSeriesDegradesOnRemoteFailure(t *testing.T) {
	store := newMemStore()
	store.put("AAPL", "2024-01-02", 101.20)
	source := &fakeSource{err: errors.New("rate limited")}
	svc := NewService(store, source)

	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-02"}, dates(points))
	assert.Equal(t, 1, source.calls)
}

func TestGetSeriesEmptyResultIsNotAnError(t *testing.T) {
	svc := NewService(newMemStore(), &fakeSource{err: errors.New("unknown symbol")})

	points, err := svc.GetSeries(context.Background(), "NOPE", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestGetSeriesRejectsNonPositiveCloses(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-01", 100.10),
		sample(t, "2024-01-02", -5.0),
		sample(t, "2024-01-03", 0),
	}}
	svc := NewService(store, source)

	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01"}, dates(points))
	_, cached := store.rows["AAPL"]["2024-01-02"]
	assert.False(t, cached)
}

func TestGetSeriesDropsOutOfRangeFetches(t *testing.T) {
	// The outbound request covers the end date by extending the remote
	// range; anything the source returns beyond the inclusive range is
	// filtered back out before persisting.
	store := newMemStore()
	source := &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-05", 104.50),
		sample(t, "2024-01-08", 108.00), // next Monday, outside the range
	}}
	svc := NewService(store, source)

	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-05"}, dates(points))
	_, cached := store.rows["AAPL"]["2024-01-08"]
	assert.False(t, cached)
}

func TestGetSeriesFetchNeverOverridesCache(t *testing.T) {
	store := newMemStore()
	store.put("AAPL", "2024-01-02", 101.20)
	source := &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-02", 999.99),
		sample(t, "2024-01-03", 102.30),
	}}
	svc := NewService(store, source)

	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)

	byDate := map[string]float64{}
	for _, p := range points {
		byDate[p.Date] = p.Close
	}
	assert.Equal(t, 101.20, byDate["2024-01-02"])
	assert.Equal(t, 102.30, byDate["2024-01-03"])
	assert.Equal(t, 101.20, store.rows["AAPL"]["2024-01-02"])
}

func TestGetSeriesCacheOnlyGrows(t *testing.T) {
	store := newMemStore()
	source := &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-01", 100.10),
	}}
	svc := NewService(store, source)
	r := mustRange(t, "2024-01-01", "2024-01-05")

	first, err := svc.GetSeries(context.Background(), "AAPL", r)
	require.NoError(t, err)

	// The source later learns about more days.
	source.samples = append(source.samples,
		sample(t, "2024-01-02", 101.20),
		sample(t, "2024-01-04", 103.40),
	)

	second, err := svc.GetSeries(context.Background(), "AAPL", r)
	require.NoError(t, err)
	assert.Subset(t, dates(second), dates(first))
	assert.GreaterOrEqual(t, len(second), len(first))
}

func TestGetSeriesStoreWriteFailureStillServes(t *testing.T) {
	store := newMemStore()
	store.upsertErr = errors.New("disk full")
	source := &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-01", 100.10),
		sample(t, "2024-01-02", 101.20),
	}}
	svc := NewService(store, source)

	// Read availability wins over cache durability: the merged series is
	// served even though nothing could be persisted.
	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, dates(points))
	assert.Equal(t, 0, store.inserted)
}

func TestGetSeriesStoreReadFailureIsFatal(t *testing.T) {
	store := newMemStore()
	store.queryErr = errors.New("connection refused")
	svc := NewService(store, &fakeSource{})

	_, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	assert.Error(t, err)
}

func TestGetSeriesRoundsHalfAwayFromZero(t *testing.T) {
	store := newMemStore()
	store.put("AAPL", "2024-01-02", 150.005)
	store.put("AAPL", "2024-01-03", 150.505)
	store.put("AAPL", "2024-01-04", 150.504)
	svc := NewService(store, &fakeSource{samples: []pricehistory.Sample{
		sample(t, "2024-01-01", 99.999),
		sample(t, "2024-01-05", 104.50),
	}})

	points, err := svc.GetSeries(context.Background(), "AAPL", mustRange(t, "2024-01-01", "2024-01-05"))
	require.NoError(t, err)

	byDate := map[string]float64{}
	for _, p := range points {
		byDate[p.Date] = p.Close
	}
	assert.Equal(t, 100.0, byDate["2024-01-01"])
	assert.Equal(t, 150.01, byDate["2024-01-02"])
	assert.Equal(t, 150.51, byDate["2024-01-03"])
	assert.Equal(t, 150.5, byDate["2024-01-04"])
}

func TestGetSeriesNormalizesSymbol(t *testing.T) {
	store := newMemStore()
	store.put("AAPL", "2024-01-02", 101.20)
	svc := NewService(store, &fakeSource{})

	points, err := svc.GetSeries(context.Background(), "  aapl ", mustRange(t, "2024-01-02", "2024-01-02"))
	require.NoError(t, err)
	assert.Len(t, points, 1)
	assert.Equal(t, "AAPL", store.lastSymbol)
}

func TestLatestClose(t *testing.T) {
	store := newMemStore()
	now := time.Now().UTC()
	day := now.AddDate(0, 0, -1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, -1)
	}
	store.put("AAPL", day.Format(pricehistory.DateFormat), 185.64)
	svc := NewService(store, &fakeSource{err: errors.New("offline")})

	close, ok := svc.LatestClose(context.Background(), "AAPL")
	assert.True(t, ok)
	assert.Equal(t, 185.64, close)

	_, ok = svc.LatestClose(context.Background(), "MSFT")
	assert.False(t, ok)
}
