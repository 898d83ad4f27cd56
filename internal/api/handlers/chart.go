package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OliverWithClaude/Finsite/internal/api/response"
	"github.com/OliverWithClaude/Finsite/internal/domain/position"
	"github.com/OliverWithClaude/Finsite/internal/domain/pricehistory"
	positionsvc "github.com/OliverWithClaude/Finsite/internal/service/position"
	pricesvc "github.com/OliverWithClaude/Finsite/internal/service/pricehistory"
)

// ChartHandler serves reconciled closing-price series for charts
type ChartHandler struct {
	prices    *pricesvc.Service
	positions *positionsvc.Service
}

// NewChartHandler creates a new chart handler
func NewChartHandler(prices *pricesvc.Service, positions *positionsvc.Service) *ChartHandler {
	return &ChartHandler{prices: prices, positions: positions}
}

// SeriesResponse is a closing-price series for one symbol.
type SeriesResponse struct {
	Symbol string               `json:"symbol"`
	Start  string               `json:"start"`
	End    string               `json:"end"`
	Points []pricehistory.Point `json:"points"`
}

// Marker annotates a chart with a trade event.
type Marker struct {
	Type  string `json:"type"`
	Date  string `json:"date"`
	Price string `json:"price"`
}

// PositionChartResponse is a position's price series with its trade markers.
type PositionChartResponse struct {
	PositionID int64                `json:"position_id"`
	Symbol     string               `json:"symbol"`
	Points     []pricehistory.Point `json:"points"`
	Markers    []Marker             `json:"markers"`
}

// History returns the gap-free closing series for a symbol
// GET /api/price-history/:symbol?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *ChartHandler) History(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		// Default to the trailing month.
		now := time.Now().UTC()
		end = now.Format(pricehistory.DateFormat)
		start = now.AddDate(0, -1, 0).Format(pricehistory.DateFormat)
	}

	r, err := pricehistory.ParseDateRange(start, end)
	switch {
	case errors.Is(err, pricehistory.ErrInvalidDate):
		response.BadRequest(c, "start and end must be formatted YYYY-MM-DD")
		return
	case errors.Is(err, pricehistory.ErrInvalidRange):
		response.BadRequest(c, "start must not be after end")
		return
	case err != nil:
		response.BadRequest(c, err.Error())
		return
	}

	symbol := pricehistory.NormalizeSymbol(c.Param("symbol"))
	points, err := h.prices.GetSeries(c.Request.Context(), symbol, r)
	if err != nil {
		response.DatabaseError(c, err)
		return
	}

	response.Success(c, SeriesResponse{
		Symbol: symbol,
		Start:  r.Start.Format(pricehistory.DateFormat),
		End:    r.End.Format(pricehistory.DateFormat),
		Points: points,
	})
}

// PositionChart returns the price series spanning a position's lifetime,
// annotated with its entry and exit trades
// GET /api/positions/:id/chart
func (h *ChartHandler) PositionChart(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Position id must be a number")
		return
	}

	p, err := h.positions.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, position.ErrNotFound):
		response.NotFound(c, "Position not found")
		return
	case err != nil:
		response.DatabaseError(c, err)
		return
	}

	end := time.Now().UTC()
	if p.ExitDate != nil {
		end = *p.ExitDate
	}

	r := pricehistory.NewDateRange(p.EntryDate, end)

	points, err := h.prices.GetSeries(c.Request.Context(), p.Symbol, r)
	if err != nil {
		response.DatabaseError(c, err)
		return
	}

	markers := []Marker{{
		Type:  position.TradeBuy,
		Date:  p.EntryDate.Format(pricehistory.DateFormat),
		Price: p.EntryPricePerShare.String(),
	}}
	if p.ExitDate != nil {
		markers = append(markers, Marker{
			Type:  position.TradeSell,
			Date:  p.ExitDate.Format(pricehistory.DateFormat),
			Price: p.ExitPricePerShare().Round(4).String(),
		})
	}

	response.Success(c, PositionChartResponse{
		PositionID: p.ID,
		Symbol:     p.Symbol,
		Points:     points,
		Markers:    markers,
	})
}
