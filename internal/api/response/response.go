package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OliverWithClaude/Finsite/internal/api/middleware"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

// Meta represents metadata in response
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// Success sends a successful response with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	})
}

// SuccessWithMessage sends a successful response with data and message
func SuccessWithMessage(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
			Message:   message,
		},
	})
}

// SuccessList sends a successful response with list data and count
func SuccessList(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
			Count:     count,
		},
	})
}

// Created sends a 201 Created response
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
		Meta: Meta{
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
			Message:   message,
		},
	})
}

// NoContent sends a 204 No Content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
