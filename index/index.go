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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/civicsignal/civicsignal/ai"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/storage"
)

// MeetingIndex is the searchable vector index over meeting paragraphs.
// Each paragraph of a meeting becomes one document with a deterministic ID,
// so indexing the same meeting twice replaces rather than duplicates.
type MeetingIndex struct {
	docs     storage.DocumentRepository
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a MeetingIndex.
type Option func(*MeetingIndex)

// WithLogger sets the logger used by the index.
func WithLogger(logger *slog.Logger) Option {
	return func(idx *MeetingIndex) {
		idx.logger = logger
	}
}

// New creates a MeetingIndex over a document repository and an embedder.
func New(docs storage.DocumentRepository, embedder ai.Embedder, opts ...Option) (*MeetingIndex, error) {
	if docs == nil {
		return nil, ErrNilRepository
	}
	if embedder == nil {
		return nil, ErrNilEmbedder
	}

	idx := &MeetingIndex{
		docs:     docs,
		embedder: embedder,
		logger:   slog.Default().With("component", "index"),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// UpsertMeeting indexes every paragraph of a meeting. Embeddings are
// generated in one batch, normalized to unit length, and written keyed by
// the paragraphs' deterministic IDs. Failures are reported as a WriteError
// identifying the meeting.
func (idx *MeetingIndex) UpsertMeeting(ctx context.Context, meeting *core.Meeting) (int, error) {
	if err := core.ValidateMeeting(meeting); err != nil {
		return 0, err
	}
	if len(meeting.Transcript) == 0 {
		idx.logger.Info("meeting has no transcript, nothing to index",
			"group", meeting.Group, "date", core.FormatDate(meeting.Date))
		return 0, nil
	}

	docs := buildDocuments(meeting)
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	idx.logger.Info("embedding meeting paragraphs",
		"group", meeting.Group, "date", core.FormatDate(meeting.Date), "paragraphs", len(texts))

	vectors, err := idx.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, &WriteError{Group: meeting.Group, Date: core.FormatDate(meeting.Date), Cause: err}
	}
	if len(vectors) != len(docs) {
		return 0, &WriteError{
			Group: meeting.Group,
			Date:  core.FormatDate(meeting.Date),
			Cause: fmt.Errorf("embedder returned %d vectors for %d paragraphs", len(vectors), len(docs)),
		}
	}
	for i := range docs {
		docs[i].Vector = storage.NormalizeVector(vectors[i])
	}

	if err := idx.docs.UpsertDocuments(ctx, docs...); err != nil {
		return 0, &WriteError{Group: meeting.Group, Date: core.FormatDate(meeting.Date), Cause: err}
	}

	return len(docs), nil
}

// Query embeds the query text and returns the k nearest paragraphs,
// nearest first. Distance on each hit is 1 - cosine similarity.
func (idx *MeetingIndex) Query(ctx context.Context, text string, k int) ([]*core.QueryHit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}

	vector, err := idx.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}

	return idx.docs.FindNearest(ctx, storage.NormalizeVector(vector), k)
}

// Count returns the number of indexed paragraphs.
func (idx *MeetingIndex) Count(ctx context.Context) (int, error) {
	return idx.docs.CountDocuments(ctx)
}

// DocumentIDs returns every indexed document ID, sorted.
func (idx *MeetingIndex) DocumentIDs(ctx context.Context) ([]string, error) {
	return idx.docs.DocumentIDs(ctx)
}

// buildDocuments converts a meeting's paragraphs into index documents.
func buildDocuments(meeting *core.Meeting) []*core.Document {
	date := core.FormatDate(meeting.Date)
	docs := make([]*core.Document, 0, len(meeting.Transcript))
	for i := range meeting.Transcript {
		p := &meeting.Transcript[i]
		docs = append(docs, &core.Document{
			ID:   core.DocumentID(meeting.Date, meeting.Group, p.StartTime, p.EndTime),
			Text: p.Text(),
			Metadata: core.Metadata{
				StartTime:    p.StartTime,
				EndTime:      p.EndTime,
				SpeakerID:    p.SpeakerID,
				MeetingDate:  date,
				MeetingGroup: meeting.Group,
				VideoURL:     meeting.VideoURL,
			},
		})
	}
	return docs
}
