package chat

import "errors"

var (
	// ErrNilIndex indicates the service was constructed without an index.
	ErrNilIndex = errors.New("meeting index is required")

	// ErrNilModel indicates the service was constructed without a chat model.
	ErrNilModel = errors.New("chat model is required")

	// ErrEmptyQuestion indicates a question with no text.
	ErrEmptyQuestion = errors.New("question is empty")
)
