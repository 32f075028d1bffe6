package archive

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultTolerance is the publication-skew window: a feed entry published up
// to this long after the requested date still counts as the same meeting.
const DefaultTolerance = 24 * time.Hour

var isoDateRE = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// Resolver maps (source, date) to concrete feed entries. All three feeds are
// fetched once at construction; a feed that cannot be fetched leaves the
// resolver in a degraded, partially usable state rather than failing it.
type Resolver struct {
	source     Source
	tolerance  time.Duration
	audioFeed  *gofeed.Feed
	videoFeed  *gofeed.Feed
	agendaFeed *gofeed.Feed
	logger     *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	tolerance time.Duration
	logger    *slog.Logger
	audioURL  string
	videoURL  string
	agendaURL string
}

// WithTolerance sets the date tolerance window.
// Default is DefaultTolerance (one day).
func WithTolerance(d time.Duration) ResolverOption {
	return func(o *resolverOptions) {
		o.tolerance = d
	}
}

// WithResolverLogger sets a custom logger.
// Default is slog.Default().
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(o *resolverOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithFeedURLs overrides the feed URLs derived from the source.
// Empty strings keep the derived URL. Intended for tests.
func WithFeedURLs(audio, video, agenda string) ResolverOption {
	return func(o *resolverOptions) {
		o.audioURL = audio
		o.videoURL = video
		o.agendaURL = agenda
	}
}

// NewResolver fetches the source's audio, video and agenda feeds and returns
// a resolver over them. A feed fetch failure is logged and recorded; the
// corresponding resolve calls will return FeedUnavailableError.
func NewResolver(ctx context.Context, source Source, opts ...ResolverOption) (*Resolver, error) {
	if source.IsZero() {
		return nil, ErrZeroSource
	}

	options := &resolverOptions{
		tolerance: DefaultTolerance,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	audioURL := source.AudioFeedURL()
	videoURL := source.VideoFeedURL()
	agendaURL := source.AgendaFeedURL()
	if options.audioURL != "" {
		audioURL = options.audioURL
	}
	if options.videoURL != "" {
		videoURL = options.videoURL
	}
	if options.agendaURL != "" {
		agendaURL = options.agendaURL
	}

	r := &Resolver{
		source:    source,
		tolerance: options.tolerance,
		logger:    options.logger.With("component", "resolver", "source", source.Name()),
	}

	parser := gofeed.NewParser()
	r.audioFeed = r.fetchFeed(ctx, parser, "audio", audioURL)
	r.videoFeed = r.fetchFeed(ctx, parser, "video", videoURL)
	r.agendaFeed = r.fetchFeed(ctx, parser, "agenda", agendaURL)

	return r, nil
}

// fetchFeed fetches one feed, returning nil on failure so the resolver
// degrades per feed type.
func (r *Resolver) fetchFeed(ctx context.Context, parser *gofeed.Parser, kind, url string) *gofeed.Feed {
	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		r.logger.Warn("feed unavailable", "feed", kind, "url", url, "err", err)
		return nil
	}
	return feed
}

// Source returns the source this resolver was built for.
func (r *Resolver) Source() Source { return r.source }

// ResolveAudioURL returns the audio download URL for the meeting on the
// given date, within the configured tolerance window.
func (r *Resolver) ResolveAudioURL(date time.Time) (string, error) {
	entry, err := r.entryForDate(r.audioFeed, "audio", date)
	if err != nil {
		return "", err
	}
	return audioLink(entry)
}

// ResolveVideoURL returns the video page URL for the meeting on the given
// date, within the configured tolerance window.
func (r *Resolver) ResolveVideoURL(date time.Time) (string, error) {
	entry, err := r.entryForDate(r.videoFeed, "video", date)
	if err != nil {
		return "", err
	}
	return videoLink(entry)
}

// LastMeetingDate returns the date of the most recent audio feed entry.
func (r *Resolver) LastMeetingDate() (time.Time, error) {
	if r.audioFeed == nil {
		return time.Time{}, &FeedUnavailableError{Source: r.source, Feed: "audio", Cause: ErrFeedAbsent}
	}
	if len(r.audioFeed.Items) == 0 {
		return time.Time{}, &NotFoundError{Source: r.source, Feed: "audio"}
	}
	return entryDate(r.audioFeed.Items[0])
}

// AllMeetingDates returns one date per audio feed entry, in feed order.
// The result is neither deduplicated nor sorted. Entries without a usable
// date are skipped with a warning.
func (r *Resolver) AllMeetingDates() ([]time.Time, error) {
	if r.audioFeed == nil {
		return nil, &FeedUnavailableError{Source: r.source, Feed: "audio", Cause: ErrFeedAbsent}
	}

	dates := make([]time.Time, 0, len(r.audioFeed.Items))
	for _, item := range r.audioFeed.Items {
		d, err := entryDate(item)
		if err != nil {
			r.logger.Warn("skipping feed entry without date", "title", item.Title, "err", err)
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// entryForDate scans the feed in feed order and returns the first entry
// whose date matches. Matching is asymmetric: an entry published within the
// tolerance window after the requested date matches, a past-dated entry
// does not.
func (r *Resolver) entryForDate(feed *gofeed.Feed, kind string, date time.Time) (*gofeed.Item, error) {
	if feed == nil {
		return nil, &FeedUnavailableError{Source: r.source, Feed: kind, Cause: ErrFeedAbsent}
	}

	want := date.UTC().Truncate(24 * time.Hour)
	for _, item := range feed.Items {
		entry, err := entryDate(item)
		if err != nil {
			continue
		}
		if entry.Equal(want) {
			return item, nil
		}
		if entry.After(want) && entry.Sub(want) <= r.tolerance {
			return item, nil
		}
	}
	return nil, &NotFoundError{Source: r.source, Date: want, Feed: kind}
}

// entryDate extracts the publication date of a feed entry, falling back to
// an ISO date embedded in the raw published string when the feed's date
// format could not be parsed.
func entryDate(item *gofeed.Item) (time.Time, error) {
	if item.PublishedParsed != nil {
		t := *item.PublishedParsed
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	if m := isoDateRE.FindString(item.Published); m != "" {
		return time.ParseInLocation("2006-01-02", m, time.UTC)
	}
	return time.Time{}, ErrNoEntryDate
}

// audioLink returns the first audio-typed enclosure of a feed entry.
func audioLink(item *gofeed.Item) (string, error) {
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "audio/") {
			return enc.URL, nil
		}
	}
	return "", ErrNoAudioLink
}

// videoLink returns the first video-typed enclosure of a feed entry.
func videoLink(item *gofeed.Item) (string, error) {
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "video/") {
			return enc.URL, nil
		}
	}
	return "", ErrNoVideoLink
}
