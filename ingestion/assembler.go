// Copyright 2025 The CivicSignal Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/civicsignal/civicsignal/archive"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/transcribe"
)

// clipURLRE extracts the view and clip identifiers from an archive
// download URL of the form .../DownloadFile.php?view_id=<v>&clip_id=<c>.
var clipURLRE = regexp.MustCompile(`DownloadFile\.php\?view_id=(\d+)&clip_id=(\d+)`)

// AssembleMeeting converts a raw engine transcript into the domain Meeting
// model. It is a pure transformation: paragraphs are flattened in engine
// order (chronological), topic labels are deduplicated into an unordered
// set, and the embeddable player URL is derived from the video URL.
//
// A transcript with zero paragraphs yields a Meeting with an empty
// transcript; callers decide whether that is a skip condition.
func AssembleMeeting(t *transcribe.Transcript, source archive.Source, date time.Time, videoURL string) *core.Meeting {
	engine := t.Paragraphs()
	paragraphs := make([]core.Paragraph, 0, len(engine))
	for _, p := range engine {
		sentences := make([]string, 0, len(p.Sentences))
		for _, s := range p.Sentences {
			sentences = append(sentences, s.Text)
		}
		paragraphs = append(paragraphs, core.Paragraph{
			StartTime: p.Start,
			EndTime:   p.End,
			SpeakerID: strconv.Itoa(p.Speaker),
			Sentences: sentences,
		})
	}

	return &core.Meeting{
		Date:       core.Day(date),
		Group:      source.Name(),
		GroupID:    source.ID(),
		Transcript: paragraphs,
		Topics:     collectTopics(t),
		VideoURL:   videoURL,
		EmbedURL:   EmbedURL(videoURL),
	}
}

// collectTopics gathers topic labels from all segments into a deduplicated
// list. Order is not guaranteed and must not be relied upon downstream.
func collectTopics(t *transcribe.Transcript) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, segment := range t.Results.Topics.Segments {
		for _, topic := range segment.Topics {
			if !seen[topic.Topic] {
				seen[topic.Topic] = true
				topics = append(topics, topic.Topic)
			}
		}
	}
	return topics
}

// EmbedURL derives the embeddable player URL from an archive video URL.
// Returns "" with a warning log when the URL doesn't match the known
// download pattern; a missing embed URL is not a fatal condition.
func EmbedURL(videoURL string) string {
	m := clipURLRE.FindStringSubmatch(videoURL)
	if m == nil {
		if videoURL != "" {
			slog.Warn("could not derive embed URL from video URL", "video_url", videoURL)
		}
		return ""
	}
	return archive.PlayerURL(m[1], m[2])
}
