package transcribe

import (
	"errors"
	"fmt"
)

var (
	// ErrAPIKeyRequired is returned when a client is constructed without an API key.
	ErrAPIKeyRequired = errors.New("transcription API key required")

	// ErrCacheMiss is returned by Cache.Get when no entry exists for the key.
	ErrCacheMiss = errors.New("transcript not cached")
)

// TranscriptionError indicates the external engine failed after retry
// exhaustion or returned an unusable response.
type TranscriptionError struct {
	Attempts int
	Cause    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *TranscriptionError) Unwrap() error { return e.Cause }

// CacheCorruptionError indicates an on-disk transcript file exists but could
// not be read or parsed. It is surfaced rather than treated as a miss so a
// damaged cache never silently produces an empty meeting.
type CacheCorruptionError struct {
	Path  string
	Cause error
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("corrupt transcript cache file %s: %v", e.Path, e.Cause)
}

func (e *CacheCorruptionError) Unwrap() error { return e.Cause }
