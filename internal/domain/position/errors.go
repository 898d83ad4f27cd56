package position

import "errors"

// Domain errors
var (
	ErrNotFound        = errors.New("position not found")
	ErrAlreadyClosed   = errors.New("position is already closed")
	ErrInvalidCurrency = errors.New("currency must be EUR or USD")
	ErrInvalidEntry    = errors.New("entry value and price per share must be positive")
)
