package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/OliverWithClaude/Finsite/internal/api/middleware"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeExternalAPIError = "EXTERNAL_API_ERROR"
	ErrCodeBusinessRule     = "BUSINESS_RULE_VIOLATION"
)

// Error sends an error response
func Error(c *gin.Context, statusCode int, code, message string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	log.Error().
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Int("status", statusCode).
		Msg("API error response")

	c.JSON(statusCode, resp)
}

// ErrorWithDetails sends an error response with additional details
func ErrorWithDetails(c *gin.Context, statusCode int, code, message, details string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	log.Error().
		Str("request_id", resp.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Str("details", details).
		Int("status", statusCode).
		Msg("API error response")

	c.JSON(statusCode, resp)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict sends a 409 Conflict error
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, ErrCodeConflict, message)
}

// BusinessRuleViolation sends a 422 Unprocessable Entity error
func BusinessRuleViolation(c *gin.Context, message string) {
	Error(c, http.StatusUnprocessableEntity, ErrCodeBusinessRule, message)
}

// DatabaseError sends a database error response
func DatabaseError(c *gin.Context, err error) {
	details := ""
	if err != nil {
		details = err.Error()
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Msg("Database error")
	}

	ErrorWithDetails(c, http.StatusInternalServerError, ErrCodeDatabaseError, "Database operation failed", details)
}

// ExternalAPIError sends an external API error response
func ExternalAPIError(c *gin.Context, serviceName string, err error) {
	message := "External service error"
	if serviceName != "" {
		message = serviceName + " service error"
	}

	details := ""
	if err != nil {
		details = err.Error()
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("service", serviceName).
			Msg("External API error")
	}

	ErrorWithDetails(c, http.StatusBadGateway, ErrCodeExternalAPIError, message, details)
}
