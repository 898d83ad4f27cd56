package tickerinfo

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
)

// Symbols the quote provider is known to answer for even though they are not
// real listings.
var blacklistedSymbols = map[string]struct{}{
	"TEST": {}, "TESTS": {}, "TESTING": {}, "DEMO": {}, "DUMMY": {},
	"FAKE": {}, "SAMPLE": {}, "EXAMPLE": {}, "XXX": {}, "ABC": {},
	"XYZ": {}, "TEMP": {}, "TMP": {}, "NULL": {}, "NONE": {},
}

var validExchanges = []string{
	"NMS", "NGM", "NCM", "NYQ", "NYSE", "NASDAQ", "AMEX", "BATS",
	"LSE", "TSE", "TSX", "FRA", "ETR", "PAR", "AMS", "SWX",
	"HKG", "SGX", "NSE", "BSE", "ASX", "NZE", "JSE",
}

var validQuoteTypes = map[string]struct{}{
	"EQUITY": {}, "ETF": {}, "MUTUALFUND": {}, "INDEX": {},
	"CURRENCY": {}, "CRYPTOCURRENCY": {},
}

// check is one named validation criterion over a quote snapshot.
type check struct {
	name string
	pass func(q *ticker.QuoteSnapshot) bool
}

var checks = []check{
	{"price", func(q *ticker.QuoteSnapshot) bool {
		_, ok := q.BestPrice()
		return ok
	}},
	{"exchange", func(q *ticker.QuoteSnapshot) bool {
		ex := strings.ToUpper(q.Exchange)
		if ex == "" {
			return false
		}
		for _, v := range validExchanges {
			if strings.Contains(ex, v) {
				return true
			}
		}
		return false
	}},
	{"company_info", func(q *ticker.QuoteSnapshot) bool {
		return q.ShortName != "" || q.LongName != "" || q.Sector != "" || q.Industry != ""
	}},
	{"valuation", func(q *ticker.QuoteSnapshot) bool {
		return q.MarketCap != nil && *q.MarketCap > 0
	}},
	{"quote_type", func(q *ticker.QuoteSnapshot) bool {
		_, ok := validQuoteTypes[q.QuoteType]
		return ok
	}},
	{"substantial_data", func(q *ticker.QuoteSnapshot) bool {
		return q.FieldCount > 20
	}},
}

// scoreSnapshot counts how many validation criteria the snapshot meets.
func scoreSnapshot(q *ticker.QuoteSnapshot) (score int, met []string) {
	for _, c := range checks {
		if c.pass(q) {
			score++
			met = append(met, c.name)
		}
	}
	return score, met
}

// validateSnapshot decides whether a snapshot describes a real listing.
// The provider answers for plenty of garbage symbols with a near-empty
// payload, so a single positive signal is not enough: at least 3 of the 6
// criteria must hold, raised to 4 when the symbol has no recent trading
// history and might be delisted.
func validateSnapshot(symbol string, q *ticker.QuoteSnapshot) bool {
	if q == nil || q.FieldCount <= 1 {
		return false
	}

	score, met := scoreSnapshot(q)
	required := 3
	if !q.HasRecentHistory {
		required = 4
	}
	valid := score >= required

	log.Info().
		Str("symbol", symbol).
		Int("score", score).
		Int("required", required).
		Strs("criteria", met).
		Bool("valid", valid).
		Msg("Symbol validation scored")
	return valid
}

// invalidPattern rejects symbols that cannot be listings without asking the
// provider: blank, digits-only, or longer than real exchange symbols get.
func invalidPattern(symbol string) bool {
	if symbol == "" || len(symbol) > 10 {
		return true
	}
	for _, r := range symbol {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
