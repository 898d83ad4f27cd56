package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/OliverWithClaude/Finsite/internal/api/response"
	"github.com/OliverWithClaude/Finsite/internal/domain/position"
	positionsvc "github.com/OliverWithClaude/Finsite/internal/service/position"
)

// PositionHandler handles position ledger endpoints
type PositionHandler struct {
	service *positionsvc.Service
}

// NewPositionHandler creates a new position handler
func NewPositionHandler(service *positionsvc.Service) *PositionHandler {
	return &PositionHandler{service: service}
}

// OpenPositionRequest is the POST /api/positions payload.
type OpenPositionRequest struct {
	Symbol             string          `json:"ticker" binding:"required"`
	EntryDate          string          `json:"entry_date" binding:"required"`
	EntryValue         decimal.Decimal `json:"entry_value" binding:"required"`
	EntryPricePerShare decimal.Decimal `json:"entry_price_per_share" binding:"required"`
	EntryCurrency      string          `json:"entry_currency" binding:"required"`
}

// ClosePositionRequest is the POST /api/positions/:id/close payload.
type ClosePositionRequest struct {
	ExitDate     string          `json:"exit_date" binding:"required"`
	ExitValue    decimal.Decimal `json:"exit_value" binding:"required"`
	ExitCurrency string          `json:"exit_currency" binding:"required"`
}

// Create opens a new position
// POST /api/positions
func (h *PositionHandler) Create(c *gin.Context) {
	var req OpenPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ticker, entry_date, entry_value, entry_price_per_share and entry_currency are required")
		return
	}

	entryDate, err := time.Parse("2006-01-02", req.EntryDate)
	if err != nil {
		response.BadRequest(c, "entry_date must be formatted YYYY-MM-DD")
		return
	}

	p, err := h.service.Open(c.Request.Context(), position.OpenInput{
		Symbol:             req.Symbol,
		EntryDate:          entryDate,
		EntryValue:         req.EntryValue,
		EntryPricePerShare: req.EntryPricePerShare,
		EntryCurrency:      req.EntryCurrency,
	})
	switch {
	case errors.Is(err, position.ErrInvalidCurrency):
		response.BadRequest(c, "Currency must be EUR or USD")
	case errors.Is(err, position.ErrInvalidEntry):
		response.BadRequest(c, "Entry value and price per share must be positive")
	case err != nil:
		response.DatabaseError(c, err)
	default:
		response.Created(c, p, "Position opened")
	}
}

// Close closes an open position
// POST /api/positions/:id/close
func (h *PositionHandler) Close(c *gin.Context) {
	id, ok := h.positionID(c)
	if !ok {
		return
	}

	var req ClosePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "exit_date, exit_value and exit_currency are required")
		return
	}

	exitDate, err := time.Parse("2006-01-02", req.ExitDate)
	if err != nil {
		response.BadRequest(c, "exit_date must be formatted YYYY-MM-DD")
		return
	}

	p, err := h.service.Close(c.Request.Context(), position.CloseInput{
		PositionID:   id,
		ExitDate:     exitDate,
		ExitValue:    req.ExitValue,
		ExitCurrency: req.ExitCurrency,
	})
	switch {
	case errors.Is(err, position.ErrNotFound):
		response.NotFound(c, "Position not found")
	case errors.Is(err, position.ErrAlreadyClosed):
		response.BusinessRuleViolation(c, "Position is already closed")
	case errors.Is(err, position.ErrInvalidCurrency):
		response.BadRequest(c, "Currency must be EUR or USD")
	case errors.Is(err, position.ErrInvalidEntry):
		response.BadRequest(c, "Exit value must be positive and exit date not before entry date")
	case err != nil:
		response.DatabaseError(c, err)
	default:
		response.SuccessWithMessage(c, p, "Position closed")
	}
}

// Get returns one position
// GET /api/positions/:id
func (h *PositionHandler) Get(c *gin.Context) {
	id, ok := h.positionID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, position.ErrNotFound):
		response.NotFound(c, "Position not found")
	case err != nil:
		response.DatabaseError(c, err)
	default:
		response.Success(c, p)
	}
}

// ListOpen returns open positions with current valuations
// GET /api/positions/open
func (h *PositionHandler) ListOpen(c *gin.Context) {
	positions, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, err)
		return
	}
	response.SuccessList(c, positions, len(positions))
}

// ListClosed returns closed positions with realized outcomes
// GET /api/positions/closed
func (h *PositionHandler) ListClosed(c *gin.Context) {
	positions, err := h.service.ListClosed(c.Request.Context())
	if err != nil {
		response.DatabaseError(c, err)
		return
	}
	response.SuccessList(c, positions, len(positions))
}

// Trades returns the trade legs of a position
// GET /api/positions/:id/trades
func (h *PositionHandler) Trades(c *gin.Context) {
	id, ok := h.positionID(c)
	if !ok {
		return
	}

	trades, err := h.service.Trades(c.Request.Context(), id)
	switch {
	case errors.Is(err, position.ErrNotFound):
		response.NotFound(c, "Position not found")
	case err != nil:
		response.DatabaseError(c, err)
	default:
		response.SuccessList(c, trades, len(trades))
	}
}

func (h *PositionHandler) positionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Position id must be a number")
		return 0, false
	}
	return id, true
}
