package archive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedEntry struct {
	title     string
	pubDate   string
	enclosure string // "url|type", empty for none
}

func rssBody(entries ...feedEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>test</title>`)
	for _, e := range entries {
		b.WriteString("<item><title>")
		b.WriteString(e.title)
		b.WriteString("</title><pubDate>")
		b.WriteString(e.pubDate)
		b.WriteString("</pubDate>")
		if e.enclosure != "" {
			parts := strings.SplitN(e.enclosure, "|", 2)
			fmt.Fprintf(&b, `<enclosure url="%s" type="%s" length="1024"/>`, parts[0], parts[1])
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pubDate(daysFromBase int) string {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, daysFromBase).Format(time.RFC1123Z)
}

func testSource(t *testing.T) Source {
	t.Helper()
	s, ok := FromString("BOARD_OF_SUPERVISORS")
	require.True(t, ok)
	return s
}

func TestResolveAudioURL(t *testing.T) {
	audio := feedServer(t, rssBody(
		feedEntry{"newest", pubDate(7), "https://archive.example/audio7.mp3|audio/mpeg"},
		feedEntry{"on the day", pubDate(0), "https://archive.example/audio0.mp3|audio/mpeg"},
		feedEntry{"older", pubDate(-14), "https://archive.example/audio-14.mp3|audio/mpeg"},
	))
	r, err := NewResolver(context.Background(), testSource(t),
		WithFeedURLs(audio.URL, audio.URL, audio.URL))
	require.NoError(t, err)

	t.Run("exact date matches", func(t *testing.T) {
		url, err := r.ResolveAudioURL(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "https://archive.example/audio0.mp3", url)
	})

	t.Run("no entry within tolerance", func(t *testing.T) {
		_, err := r.ResolveAudioURL(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "audio", nf.Feed)
	})
}

func TestDateTolerance(t *testing.T) {
	// One entry published 2024-01-16, one 2024-01-18.
	audio := feedServer(t, rssBody(
		feedEntry{"far", pubDate(3), "https://archive.example/far.mp3|audio/mpeg"},
		feedEntry{"near", pubDate(1), "https://archive.example/near.mp3|audio/mpeg"},
	))
	r, err := NewResolver(context.Background(), testSource(t),
		WithFeedURLs(audio.URL, audio.URL, audio.URL))
	require.NoError(t, err)

	t.Run("entry one day after requested date matches", func(t *testing.T) {
		url, err := r.ResolveAudioURL(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "https://archive.example/near.mp3", url)
	})

	t.Run("entry two days after requested date does not match", func(t *testing.T) {
		_, err := r.ResolveAudioURL(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))
		var nf *NotFoundError
		assert.ErrorAs(t, err, &nf)
	})

	t.Run("past-dated entry does not match", func(t *testing.T) {
		// Requesting the day after "far" was published; only future-skewed
		// entries count.
		_, err := r.ResolveAudioURL(time.Date(2024, 1, 19, 0, 0, 0, 0, time.UTC))
		var nf *NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestResolveVideoURL(t *testing.T) {
	audio := feedServer(t, rssBody(
		feedEntry{"meeting", pubDate(0), "https://archive.example/a.mp3|audio/mpeg"},
	))
	video := feedServer(t, rssBody(
		feedEntry{"meeting", pubDate(0), "https://archive.example/DownloadFile.php?view_id=10&amp;clip_id=555|video/mp4"},
	))
	r, err := NewResolver(context.Background(), testSource(t),
		WithFeedURLs(audio.URL, video.URL, audio.URL))
	require.NoError(t, err)

	url, err := r.ResolveVideoURL(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, url, "clip_id=555")
}

func TestFeedDegrade(t *testing.T) {
	audio := feedServer(t, rssBody(
		feedEntry{"meeting", pubDate(0), "https://archive.example/a.mp3|audio/mpeg"},
	))
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	// Construction succeeds even though the video feed is down.
	r, err := NewResolver(context.Background(), testSource(t),
		WithFeedURLs(audio.URL, broken.URL, broken.URL))
	require.NoError(t, err)

	// Audio resolution still works.
	_, err = r.ResolveAudioURL(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Video resolution reports the degraded feed.
	_, err = r.ResolveVideoURL(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	var fu *FeedUnavailableError
	require.ErrorAs(t, err, &fu)
	assert.Equal(t, "video", fu.Feed)
	assert.True(t, errors.Is(err, ErrFeedAbsent))
}

func TestMeetingDates(t *testing.T) {
	audio := feedServer(t, rssBody(
		feedEntry{"newest", pubDate(14), "https://archive.example/c.mp3|audio/mpeg"},
		feedEntry{"middle", pubDate(7), "https://archive.example/b.mp3|audio/mpeg"},
		feedEntry{"oldest", pubDate(0), "https://archive.example/a.mp3|audio/mpeg"},
	))
	r, err := NewResolver(context.Background(), testSource(t),
		WithFeedURLs(audio.URL, audio.URL, audio.URL))
	require.NoError(t, err)

	t.Run("last meeting date is the first entry", func(t *testing.T) {
		last, err := r.LastMeetingDate()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), last)
	})

	t.Run("all dates preserve feed order", func(t *testing.T) {
		dates, err := r.AllMeetingDates()
		require.NoError(t, err)
		require.Len(t, dates, 3)
		assert.Equal(t, time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC), dates[0])
		assert.Equal(t, time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC), dates[1])
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), dates[2])
	})
}

func TestEntryWithoutAudioLink(t *testing.T) {
	audio := feedServer(t, rssBody(
		feedEntry{"no enclosure", pubDate(0), ""},
	))
	r, err := NewResolver(context.Background(), testSource(t),
		WithFeedURLs(audio.URL, audio.URL, audio.URL))
	require.NoError(t, err)

	_, err = r.ResolveAudioURL(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoAudioLink)
}
