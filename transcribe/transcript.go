package transcribe

// Transcript is the raw result of the speech-to-text engine, preserved in
// the engine's own nested shape. It is immutable once produced and owned by
// the cache; the assembler derives the domain model from it on demand.
//
// Only the fields the pipeline consumes are modeled. Unknown fields in a
// cached file are dropped on reread, which is acceptable because the cache
// round-trip contract covers paragraph and topic data.
type Transcript struct {
	Results Results `json:"results"`
}

// Results holds the per-channel transcription alternatives and the detected
// topic segments.
type Results struct {
	Channels []Channel    `json:"channels"`
	Topics   TopicResults `json:"topics"`
}

// Channel is one audio channel of the recording.
type Channel struct {
	Alternatives []Alternative `json:"alternatives"`
}

// Alternative is one transcription hypothesis for a channel. The engine is
// configured to return a single alternative.
type Alternative struct {
	Transcript string         `json:"transcript"`
	Paragraphs ParagraphGroup `json:"paragraphs"`
}

// ParagraphGroup wraps the engine's paragraph segmentation.
type ParagraphGroup struct {
	Transcript string      `json:"transcript"`
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Paragraph is a diarized, time-bounded engine paragraph.
type Paragraph struct {
	Sentences []Sentence `json:"sentences"`
	Speaker   int        `json:"speaker"`
	NumWords  int        `json:"num_words"`
	Start     float64    `json:"start"`
	End       float64    `json:"end"`
}

// Sentence is one sentence within an engine paragraph.
type Sentence struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TopicResults holds the engine's topic detection output.
type TopicResults struct {
	Segments []TopicSegment `json:"segments"`
}

// TopicSegment is a span of the transcript tagged with topics.
type TopicSegment struct {
	Text      string  `json:"text"`
	StartWord int     `json:"start_word"`
	EndWord   int     `json:"end_word"`
	Topics    []Topic `json:"topics"`
}

// Topic is one detected topic label with its confidence.
type Topic struct {
	Topic           string  `json:"topic"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Paragraphs returns the engine paragraphs of the first alternative of the
// first channel, which is where the engine puts the whole recording under
// the configured options. Returns nil for an empty result.
func (t *Transcript) Paragraphs() []Paragraph {
	if len(t.Results.Channels) == 0 {
		return nil
	}
	alts := t.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return nil
	}
	return alts[0].Paragraphs.Paragraphs
}
