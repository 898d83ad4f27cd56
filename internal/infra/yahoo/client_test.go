package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDailyCloses(t *testing.T) {
	// 2024-01-01..2024-01-03 at 14:30 UTC, with a null close on the 2nd.
	chartBody := `{
		"chart": {
			"result": [{
				"timestamp": [1704119400, 1704205800, 1704292200],
				"indicators": {"quote": [{"close": [185.64, null, 184.25]}]}
			}],
			"error": null
		}
	}`

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		fmt.Fprint(w, chartBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	samples, err := c.FetchDailyCloses(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	// Null bar dropped.
	require.Len(t, samples, 2)
	assert.Equal(t, "2024-01-01", samples[0].Date.Format("2006-01-02"))
	assert.Equal(t, 185.64, samples[0].Close)
	assert.Equal(t, "2024-01-03", samples[1].Date.Format("2006-01-02"))

	// The remote end is exclusive, so the request must extend it by one day.
	wantPeriod2 := end.AddDate(0, 0, 1).Unix()
	assert.Contains(t, gotPath, fmt.Sprintf("period2=%d", wantPeriod2))
	assert.Contains(t, gotPath, "interval=1d")
}

func TestFetchDailyClosesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.FetchDailyCloses(context.Background(), "NOPE", time.Now().AddDate(0, 0, -5), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

func TestFetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v7/finance/quote") {
			fmt.Fprint(w, `{
				"quoteResponse": {
					"result": [{
						"shortName": "Apple Inc.",
						"longName": "Apple Inc.",
						"regularMarketPrice": 185.64,
						"regularMarketPreviousClose": 184.25,
						"marketCap": 2870000000000,
						"fullExchangeName": "NasdaqGS",
						"quoteType": "EQUITY",
						"currency": "USD"
					}],
					"error": null
				}
			}`)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/") {
			fmt.Fprint(w, `{
				"quoteSummary": {
					"result": [{
						"assetProfile": {
							"sector": "Technology",
							"industry": "Consumer Electronics"
						}
					}]
				}
			}`)
			return
		}
		// Recent-bars probe.
		fmt.Fprint(w, `{
			"chart": {
				"result": [{
					"timestamp": [1704119400],
					"indicators": {"quote": [{"close": [185.64]}]}
				}],
				"error": null
			}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	snap, err := c.FetchSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", snap.Name())
	require.NotNil(t, snap.CurrentPrice)
	assert.Equal(t, 185.64, *snap.CurrentPrice)
	assert.Equal(t, "NasdaqGS", snap.Exchange)
	assert.Equal(t, "EQUITY", snap.QuoteType)
	assert.Equal(t, 8, snap.FieldCount)
	assert.True(t, snap.HasRecentHistory)
	assert.Equal(t, "Technology", snap.Sector)
	assert.Equal(t, "Consumer Electronics", snap.Industry)

	price, ok := snap.BestPrice()
	assert.True(t, ok)
	assert.Equal(t, 185.64, price)
}

func TestFetchSnapshotWithoutProfile(t *testing.T) {
	// ETFs and indexes have no asset profile; the snapshot still succeeds
	// with empty sector and industry.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v7/finance/quote") {
			fmt.Fprint(w, `{
				"quoteResponse": {
					"result": [{
						"shortName": "SPDR S&P 500",
						"regularMarketPrice": 475.31,
						"quoteType": "ETF",
						"currency": "USD"
					}],
					"error": null
				}
			}`)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/") {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{
			"chart": {
				"result": [{
					"timestamp": [1704119400],
					"indicators": {"quote": [{"close": [475.31]}]}
				}],
				"error": null
			}
		}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	snap, err := c.FetchSnapshot(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Empty(t, snap.Sector)
	assert.Empty(t, snap.Industry)
	require.NotNil(t, snap.CurrentPrice)
	assert.Equal(t, 475.31, *snap.CurrentPrice)
}

func TestFetchSnapshotEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteResponse": {"result": [], "error": null}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.FetchSnapshot(context.Background(), "NOPE")
	assert.Error(t, err)
}
