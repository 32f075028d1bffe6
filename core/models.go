package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted chat messages.
// It is generated by content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Paragraph is a speaker-attributed, time-bounded span of meeting transcript.
// Paragraphs are created by the assembler and never mutated afterwards.
type Paragraph struct {
	StartTime float64  // Seconds from the start of the recording
	EndTime   float64  // Seconds from the start of the recording
	SpeakerID string   // Diarized speaker label as reported by the engine
	Sentences []string // Ordered sentences within the paragraph
}

// Text returns the paragraph's sentences joined with spaces.
func (p *Paragraph) Text() string {
	return strings.Join(p.Sentences, " ")
}

// Meeting is one archived meeting of a government body, fully assembled
// from a raw transcript. There is exactly one Meeting per (source, date).
type Meeting struct {
	Date       time.Time   // Calendar date of the meeting (UTC midnight)
	Group      string      // Symbolic source name, e.g. "BOARD_OF_SUPERVISORS"
	GroupID    string      // Numeric archive identifier for the group
	Transcript []Paragraph // Chronological, as returned by the engine
	Topics     []string    // Deduplicated topic labels; order is not guaranteed
	VideoURL   string      // Video page URL for the meeting
	EmbedURL   string      // Embeddable player URL; empty if it could not be derived
}

// Metadata is the retrievable per-paragraph context stored alongside each
// indexed document.
type Metadata struct {
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	SpeakerID    string  `json:"speaker_id"`
	MeetingDate  string  `json:"meeting_date"` // ISO date string
	MeetingGroup string  `json:"meeting_group"`
	VideoURL     string  `json:"video_url"`
}

// Document is one indexed paragraph with its embedding vector.
// Its ID is deterministic, so re-indexing the same paragraph replaces the
// existing document rather than duplicating it.
type Document struct {
	ID       string    `json:"id"`
	Text     string    `json:"text"`
	Metadata Metadata  `json:"metadata"`
	Vector   []float32 `json:"vector,omitempty"`
}

// DocumentID builds the deterministic document identifier for one paragraph
// of a meeting: "{ISO date}_{group}_{start}_{end}".
func DocumentID(date time.Time, group string, start, end float64) string {
	return FormatDate(date) + "_" + group + "_" +
		strconv.FormatFloat(start, 'g', -1, 64) + "_" +
		strconv.FormatFloat(end, 'g', -1, 64)
}

// QueryHit is a single nearest-neighbor result from the index.
// Distance is 1 - cosine similarity, so lower means more similar. It is not
// guaranteed to be bounded in [0,1] for every embedder, so a displayed
// "similarity" of 1 - Distance may be negative.
type QueryHit struct {
	Document *Document
	Distance float32
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single persisted message in a chat session.
type ChatMessage struct {
	Id        ID        `json:"id"`
	Session   string    `json:"session"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Day normalizes a time to its calendar date at UTC midnight.
// All meeting keys use this normalization.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a date as an ISO "YYYY-MM-DD" string.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// ParseDate parses an ISO "YYYY-MM-DD" string into a UTC date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
