package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
)

// Client fetches quotes and daily bars from the Yahoo Finance public API.
// It implements pricehistory.QuoteSource and ticker.SnapshotSource.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Yahoo client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// chartResponse is the response structure of the v8 chart API.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyCloses fetches daily closing prices for [start, end], both
// inclusive. The chart API treats period2 as exclusive, so the outbound
// request extends it by one day; callers still filter by their own range.
func (c *Client) FetchDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]pricehistory.Sample, error) {
	period1 := start.Unix()
	period2 := end.AddDate(0, 0, 1).Unix()

	addr := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(symbol), period1, period2)

	body, err := c.get(ctx, addr)
	if err != nil {
		return nil, err
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data for %s", symbol)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	samples := make([]pricehistory.Sample, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // null bar: holiday or missing data
		}
		t := time.Unix(ts, 0).UTC()
		samples = append(samples, pricehistory.Sample{
			Symbol: symbol,
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Close:  *closes[i],
		})
	}

	return samples, nil
}

// quoteResponse is the response structure of the v7 quote API.
type quoteResponse struct {
	QuoteResponse struct {
		Result []json.RawMessage `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type quoteFields struct {
	ShortName                   string   `json:"shortName"`
	LongName                    string   `json:"longName"`
	RegularMarketPrice          *float64 `json:"regularMarketPrice"`
	RegularMarketPreviousClose  *float64 `json:"regularMarketPreviousClose"`
	Bid                         *float64 `json:"bid"`
	Ask                         *float64 `json:"ask"`
	MarketCap                   *float64 `json:"marketCap"`
	FullExchangeName            string   `json:"fullExchangeName"`
	Exchange                    string   `json:"exchange"`
	QuoteType                   string   `json:"quoteType"`
	Currency                    string   `json:"currency"`
}

// FetchSnapshot fetches the quote fields for one symbol, plus a recent-bars
// probe used by the validation heuristic. A failed probe is treated as "no
// recent history", never as a snapshot error.
func (c *Client) FetchSnapshot(ctx context.Context, symbol string) (*ticker.QuoteSnapshot, error) {
	addr := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(symbol))

	body, err := c.get(ctx, addr)
	if err != nil {
		return nil, err
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if quote.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", quote.QuoteResponse.Error.Description)
	}
	if len(quote.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("yahoo: no quote for %s", symbol)
	}

	raw := quote.QuoteResponse.Result[0]

	var fields quoteFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("yahoo decode quote: %w", err)
	}

	// Shell listings come back with a handful of fields; real instruments
	// return dozens. The count feeds one of the validation predicates.
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("yahoo decode quote: %w", err)
	}

	exchange := fields.FullExchangeName
	if exchange == "" {
		exchange = fields.Exchange
	}

	snap := &ticker.QuoteSnapshot{
		Symbol:        symbol,
		ShortName:     fields.ShortName,
		LongName:      fields.LongName,
		CurrentPrice:  fields.RegularMarketPrice,
		PreviousClose: fields.RegularMarketPreviousClose,
		Bid:           fields.Bid,
		Ask:           fields.Ask,
		MarketCap:     fields.MarketCap,
		Exchange:      exchange,
		QuoteType:     fields.QuoteType,
		Currency:      fields.Currency,
		FieldCount:    len(all),
	}

	// Sector and industry live on the company profile, not the quote.
	// A missing profile (ETFs, indexes) just leaves them empty.
	if sector, industry, err := c.fetchProfile(ctx, symbol); err == nil {
		snap.Sector = sector
		snap.Industry = industry
	}

	snap.HasRecentHistory = c.hasRecentBars(ctx, symbol)

	return snap, nil
}

// summaryResponse is the response structure of the v10 quoteSummary API.
type summaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// fetchProfile fetches the asset profile of one symbol.
func (c *Client) fetchProfile(ctx context.Context, symbol string) (sector, industry string, err error) {
	addr := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile",
		c.baseURL, url.PathEscape(symbol))

	body, err := c.get(ctx, addr)
	if err != nil {
		return "", "", err
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return "", "", fmt.Errorf("yahoo decode profile: %w", err)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return "", "", fmt.Errorf("yahoo: no profile for %s", symbol)
	}

	profile := summary.QuoteSummary.Result[0].AssetProfile
	return profile.Sector, profile.Industry, nil
}

// hasRecentBars probes the chart API for the last few sessions.
func (c *Client) hasRecentBars(ctx context.Context, symbol string) bool {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)

	samples, err := c.FetchDailyCloses(ctx, symbol, start, end)
	return err == nil && len(samples) > 0
}

func (c *Client) get(ctx context.Context, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status=%d body=%s", resp.StatusCode, string(body))
	}

	return body, nil
}
