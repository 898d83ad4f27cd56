package position

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestShares(t *testing.T) {
	p := Position{
		EntryValue:         decimal.NewFromInt(1000),
		EntryPricePerShare: decimal.NewFromInt(50),
	}
	assert.True(t, p.Shares().Equal(decimal.NewFromInt(20)), "got %s", p.Shares())

	zero := Position{EntryValue: decimal.NewFromInt(1000)}
	assert.True(t, zero.Shares().IsZero())
}

func TestExitPricePerShare(t *testing.T) {
	exit := decimal.NewFromInt(1200)
	p := Position{
		EntryValue:         decimal.NewFromInt(1000),
		EntryPricePerShare: decimal.NewFromInt(50),
		ExitValue:          &exit,
	}
	// 20 shares, 1200 exit value.
	assert.True(t, p.ExitPricePerShare().Equal(decimal.NewFromInt(60)), "got %s", p.ExitPricePerShare())

	open := Position{EntryValue: decimal.NewFromInt(1000), EntryPricePerShare: decimal.NewFromInt(50)}
	assert.True(t, open.ExitPricePerShare().IsZero())
}

func TestRealizedProfit(t *testing.T) {
	t.Run("gain", func(t *testing.T) {
		exit := decimal.NewFromFloat(1150.50)
		p := Position{EntryValue: decimal.NewFromInt(1000), ExitValue: &exit}

		profit, percent := p.RealizedProfit()
		assert.Equal(t, "150.5", profit.String())
		assert.Equal(t, "15.05", percent.String())
	})

	t.Run("loss", func(t *testing.T) {
		exit := decimal.NewFromInt(900)
		p := Position{EntryValue: decimal.NewFromInt(1000), ExitValue: &exit}

		profit, percent := p.RealizedProfit()
		assert.Equal(t, "-100", profit.String())
		assert.Equal(t, "-10", percent.String())
	})

	t.Run("open position", func(t *testing.T) {
		p := Position{EntryValue: decimal.NewFromInt(1000)}
		profit, percent := p.RealizedProfit()
		assert.True(t, profit.IsZero())
		assert.True(t, percent.IsZero())
	})
}

func TestHoldingDays(t *testing.T) {
	entry := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	exit := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	p := Position{EntryDate: entry, ExitDate: &exit}
	assert.Equal(t, 60, p.HoldingDays())

	open := Position{EntryDate: entry}
	assert.Equal(t, 0, open.HoldingDays())
}

func TestValidateCurrency(t *testing.T) {
	assert.True(t, ValidateCurrency("EUR"))
	assert.True(t, ValidateCurrency("USD"))
	assert.False(t, ValidateCurrency("GBP"))
	assert.False(t, ValidateCurrency("eur"))
}
