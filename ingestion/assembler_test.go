package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/civicsignal/archive"
	"github.com/civicsignal/civicsignal/transcribe"
)

func engineTranscript(texts ...string) *transcribe.Transcript {
	paragraphs := make([]transcribe.Paragraph, 0, len(texts))
	for i, text := range texts {
		start := float64(i) * 10
		paragraphs = append(paragraphs, transcribe.Paragraph{
			Sentences: []transcribe.Sentence{{Text: text, Start: start, End: start + 5}},
			Speaker:   i,
			NumWords:  len(text),
			Start:     start,
			End:       start + 5,
		})
	}
	return &transcribe.Transcript{
		Results: transcribe.Results{
			Channels: []transcribe.Channel{{
				Alternatives: []transcribe.Alternative{{
					Paragraphs: transcribe.ParagraphGroup{Paragraphs: paragraphs},
				}},
			}},
			Topics: transcribe.TopicResults{
				Segments: []transcribe.TopicSegment{
					{Topics: []transcribe.Topic{{Topic: "budget", ConfidenceScore: 0.9}, {Topic: "housing", ConfidenceScore: 0.7}}},
					{Topics: []transcribe.Topic{{Topic: "budget", ConfidenceScore: 0.8}}},
				},
			},
		},
	}
}

func boardSource(t *testing.T) archive.Source {
	t.Helper()
	s, ok := archive.FromString("BOARD_OF_SUPERVISORS")
	require.True(t, ok)
	return s
}

func TestAssembleMeeting(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	transcript := engineTranscript("Roll call.", "Item one is street resurfacing.", "Public comment.")

	meeting := AssembleMeeting(transcript, boardSource(t), date,
		"https://sanfrancisco.granicus.com/DownloadFile.php?view_id=10&clip_id=45001")

	assert.Equal(t, "BOARD_OF_SUPERVISORS", meeting.Group)
	assert.Equal(t, "10", meeting.GroupID)
	assert.Equal(t, date, meeting.Date)

	require.Len(t, meeting.Transcript, 3)
	assert.Equal(t, "Roll call.", meeting.Transcript[0].Text())
	assert.Equal(t, "Item one is street resurfacing.", meeting.Transcript[1].Text())
	assert.Equal(t, "Public comment.", meeting.Transcript[2].Text())
	assert.Equal(t, "0", meeting.Transcript[0].SpeakerID)
	assert.Equal(t, "2", meeting.Transcript[2].SpeakerID)
	assert.Equal(t, 20.0, meeting.Transcript[2].StartTime)
}

func TestAssembleMeetingTopicsDeduplicated(t *testing.T) {
	meeting := AssembleMeeting(engineTranscript("a"), boardSource(t),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "")

	assert.ElementsMatch(t, []string{"budget", "housing"}, meeting.Topics)
}

func TestAssembleMeetingEmptyTranscript(t *testing.T) {
	meeting := AssembleMeeting(&transcribe.Transcript{}, boardSource(t),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "")

	assert.Empty(t, meeting.Transcript)
	assert.Empty(t, meeting.Topics)
}

func TestEmbedURL(t *testing.T) {
	t.Run("derives player URL from download URL", func(t *testing.T) {
		url := EmbedURL("https://sanfrancisco.granicus.com/DownloadFile.php?view_id=20&clip_id=555")
		assert.Contains(t, url, "clip/555")
		assert.Contains(t, url, "view_id=20")
	})

	t.Run("unknown pattern yields empty URL", func(t *testing.T) {
		assert.Empty(t, EmbedURL("https://example.com/watch?v=555"))
	})

	t.Run("empty input yields empty URL", func(t *testing.T) {
		assert.Empty(t, EmbedURL(""))
	})
}
