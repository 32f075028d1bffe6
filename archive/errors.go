package archive

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrZeroSource is returned when a resolver is constructed without a source.
	ErrZeroSource = errors.New("source required")

	// ErrFeedAbsent indicates a feed failed to fetch at construction time.
	ErrFeedAbsent = errors.New("feed was not fetched")

	// ErrNoAudioLink is returned when a feed entry carries no audio enclosure.
	ErrNoAudioLink = errors.New("feed entry has no audio link")

	// ErrNoVideoLink is returned when a feed entry carries no video link.
	ErrNoVideoLink = errors.New("feed entry has no video link")

	// ErrNoEntryDate is returned when a feed entry carries no usable publication date.
	ErrNoEntryDate = errors.New("feed entry has no publication date")
)

// FeedUnavailableError indicates a feed could not be fetched. The resolver
// degrades per feed type: a source with a broken video feed remains usable
// for audio resolution and vice versa.
type FeedUnavailableError struct {
	Source Source
	Feed   string // "audio", "video" or "agenda"
	Cause  error
}

func (e *FeedUnavailableError) Error() string {
	return fmt.Sprintf("%s feed unavailable for %s: %v", e.Feed, e.Source.Name(), e.Cause)
}

func (e *FeedUnavailableError) Unwrap() error { return e.Cause }

// NotFoundError indicates no feed entry matched the requested date within
// the configured tolerance window.
type NotFoundError struct {
	Source Source
	Date   time.Time
	Feed   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s feed entry for %s on %s", e.Feed, e.Source.Name(), e.Date.Format("2006-01-02"))
}
