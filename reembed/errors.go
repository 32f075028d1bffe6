package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts indicates a retry bound of zero or less.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")

	// ErrInvalidBatchSize indicates a batch size of zero or less.
	ErrInvalidBatchSize = errors.New("batch size must be greater than zero")
)
