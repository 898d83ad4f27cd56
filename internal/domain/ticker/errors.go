package ticker

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("ticker not found")
	ErrAlreadyExists = errors.New("ticker already exists")
	ErrInvalidSymbol = errors.New("invalid ticker symbol")
)
