package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/OliverWithClaude/Finsite/internal/api/response"
	"github.com/OliverWithClaude/Finsite/internal/domain/ticker"
	"github.com/OliverWithClaude/Finsite/internal/service/tickerinfo"
)

// TickerHandler handles watchlist and ticker-info endpoints
type TickerHandler struct {
	service *tickerinfo.Service
}

// NewTickerHandler creates a new ticker handler
func NewTickerHandler(service *tickerinfo.Service) *TickerHandler {
	return &TickerHandler{service: service}
}

// CreateTickerRequest is the POST /api/tickers payload.
type CreateTickerRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Name   string `json:"name"`
}

// ValidateTickerRequest is the POST /api/validate-ticker payload.
type ValidateTickerRequest struct {
	Symbol string `json:"symbol" binding:"required"`
}

// ValidateTickerResponse reports the validation verdict for a symbol.
type ValidateTickerResponse struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
	Valid  bool   `json:"valid"`
}

// List returns the watchlist
// GET /api/tickers
func (h *TickerHandler) List(c *gin.Context) {
	tickers, err := h.service.List(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, err)
		return
	}
	response.SuccessList(c, tickers, len(tickers))
}

// Create validates a symbol and adds it to the watchlist
// POST /api/tickers
func (h *TickerHandler) Create(c *gin.Context) {
	var req CreateTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "symbol is required")
		return
	}

	t, err := h.service.Add(c.Request.Context(), req.Symbol, req.Name)
	switch {
	case errors.Is(err, ticker.ErrInvalidSymbol):
		response.BadRequest(c, "Symbol could not be validated as a real listing")
	case errors.Is(err, ticker.ErrAlreadyExists):
		response.Conflict(c, "Ticker is already on the watchlist")
	case err != nil:
		response.DatabaseError(c, err)
	default:
		response.Created(c, t, "Ticker added to watchlist")
	}
}

// Delete removes a symbol from the watchlist
// DELETE /api/tickers/:symbol
func (h *TickerHandler) Delete(c *gin.Context) {
	err := h.service.Remove(c.Request.Context(), c.Param("symbol"))
	switch {
	case errors.Is(err, ticker.ErrNotFound):
		response.NotFound(c, "Ticker is not on the watchlist")
	case err != nil:
		response.DatabaseError(c, err)
	default:
		response.NoContent(c)
	}
}

// Validate checks a symbol against the quote provider without persisting it
// POST /api/validate-ticker
func (h *TickerHandler) Validate(c *gin.Context) {
	var req ValidateTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "symbol is required")
		return
	}

	symbol, name, err := h.service.Search(c.Request.Context(), req.Symbol)
	if err != nil {
		response.Success(c, ValidateTickerResponse{Symbol: req.Symbol, Valid: false})
		return
	}
	response.Success(c, ValidateTickerResponse{Symbol: symbol, Name: name, Valid: true})
}

// Info returns detailed quote information for a symbol
// GET /api/ticker-info/:symbol
func (h *TickerHandler) Info(c *gin.Context) {
	info, err := h.service.Info(c.Request.Context(), c.Param("symbol"))
	switch {
	case errors.Is(err, ticker.ErrInvalidSymbol):
		response.NotFound(c, "No data available for this ticker")
	case err != nil:
		response.ExternalAPIError(c, "quote", err)
	default:
		response.Success(c, info)
	}
}
