package pricehistory

import "errors"

// Domain errors
var (
	ErrInvalidDate  = errors.New("invalid date: want YYYY-MM-DD")
	ErrInvalidRange = errors.New("invalid date range: start after end")

	// Repository errors
	ErrDatabaseQuery  = errors.New("database query failed")
	ErrDatabaseInsert = errors.New("database insert failed")
)
