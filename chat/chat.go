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


package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/civicsignal/civicsignal/ai"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/index"
	"github.com/civicsignal/civicsignal/storage"
)

const (
	// defaultTopK is how many archive paragraphs are retrieved as context.
	defaultTopK = 10

	// historyWindow is how many prior messages of the session are replayed
	// to the model for conversational context.
	historyWindow = 4

	// snippetLimit bounds how much of a paragraph is quoted in the context
	// block shown to the model.
	snippetLimit = 200
)

// Answer is one assistant reply with its supporting retrievals.
type Answer struct {
	Text string

	// References are the retrieved paragraphs injected as context,
	// nearest first.
	References []*core.QueryHit

	// VideoURL points at the meeting video of the best reference,
	// empty when nothing relevant was retrieved.
	VideoURL string
}

// Service answers questions about the meeting archive with
// retrieval-augmented chat. Session history is persisted so conversations
// survive restarts; only a sliding window of it is replayed to the model.
type Service struct {
	index    *index.MeetingIndex
	model    ai.ChatModel
	messages storage.MessageRepository
	logger   *slog.Logger
	topK     int
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTopK overrides how many paragraphs are retrieved per question.
func WithTopK(k int) Option {
	return func(s *Service) {
		s.topK = k
	}
}

// WithClock overrides the clock used for the system prompt's date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a chat service over an index and a chat model.
// The message repository is optional; without it, history is not persisted
// and every question stands alone.
func NewService(idx *index.MeetingIndex, model ai.ChatModel, messages storage.MessageRepository, opts ...Option) (*Service, error) {
	if idx == nil {
		return nil, ErrNilIndex
	}
	if model == nil {
		return nil, ErrNilModel
	}

	s := &Service{
		index:    idx,
		model:    model,
		messages: messages,
		logger:   slog.Default().With("component", "chat"),
		topK:     defaultTopK,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ask answers one question in a session. The top-k most similar archive
// paragraphs are injected as context alongside the session's recent
// history, and both the question and the answer are appended to the
// persisted session.
func (s *Service) Ask(ctx context.Context, session, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	hits, err := s.index.Query(ctx, question, s.topK)
	if err != nil && !errors.Is(err, index.ErrEmptyQuery) {
		return nil, err
	}
	s.logger.Debug("retrieved context for question", "session", session, "hits", len(hits))

	conversation := []core.ChatMessage{
		{Role: core.RoleSystem, Content: s.systemPrompt()},
	}
	if len(hits) > 0 {
		conversation = append(conversation, core.ChatMessage{
			Role:    core.RoleSystem,
			Content: "Relevant excerpts from archived meeting transcripts:\n\n" + FormatHits(hits),
		})
	}

	history, err := s.recentHistory(ctx, session)
	if err != nil {
		return nil, err
	}
	conversation = append(conversation, history...)
	conversation = append(conversation, core.ChatMessage{Role: core.RoleUser, Content: question})

	text, err := s.model.Complete(ctx, conversation)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, session, question, text); err != nil {
		return nil, err
	}

	return &Answer{
		Text:       text,
		References: hits,
		VideoURL:   bestVideoURL(hits),
	}, nil
}

// systemPrompt builds the assistant's standing instructions.
func (s *Service) systemPrompt() string {
	today := core.FormatDate(s.now())
	return fmt.Sprintf(`You are CivicSignal, an AI assistant that helps users understand civic meetings and government proceedings in San Francisco.

Today's date is %s.

Your capabilities:
1. Answer questions about civic meetings, government processes, and local issues
2. Ground your answers in the archived meeting transcript excerpts you are given
3. Provide context and insights about government discussions

Always be helpful, accurate, and provide relevant context from the civic domain. Format your responses clearly and use markdown when appropriate.`, today)
}

// recentHistory replays the session's last messages, oldest first.
func (s *Service) recentHistory(ctx context.Context, session string) ([]core.ChatMessage, error) {
	if s.messages == nil {
		return nil, nil
	}
	window, err := s.messages.RecentMessages(ctx, session, historyWindow)
	if err != nil {
		return nil, err
	}
	history := make([]core.ChatMessage, 0, len(window))
	for _, msg := range window {
		history = append(history, *msg)
	}
	return history, nil
}

// persist appends the question and answer to the session.
func (s *Service) persist(ctx context.Context, session, question, answer string) error {
	if s.messages == nil {
		return nil
	}
	now := s.now().UTC()
	_, err := s.messages.AppendMessages(ctx,
		&core.ChatMessage{Session: session, Role: core.RoleUser, Content: question, Timestamp: now},
		&core.ChatMessage{Session: session, Role: core.RoleAssistant, Content: answer, Timestamp: now.Add(time.Microsecond)},
	)
	return err
}

// FormatHits renders retrieved paragraphs for the model and for display.
// Distance converts to a similarity percentage; for dissimilar text this
// can be negative, which is a display convention, not a metric guarantee.
func FormatHits(hits []*core.QueryHit) string {
	if len(hits) == 0 {
		return "No similar discussions found."
	}

	var b strings.Builder
	for i, hit := range hits {
		similarity := 1 - hit.Distance
		text := hit.Document.Text
		truncated := ""
		// Truncate by rune so smart-formatted text is never cut
		// mid-character.
		if r := []rune(text); len(r) > snippetLimit {
			text, truncated = string(r[:snippetLimit]), "..."
		}
		meta := hit.Document.Metadata
		fmt.Fprintf(&b, "%d. **Similarity: %.2f%%**\n", i+1, similarity*100)
		fmt.Fprintf(&b, "   **Meeting:** %s on %s\n", meta.MeetingGroup, meta.MeetingDate)
		fmt.Fprintf(&b, "   **Time:** %.1f - %.1f\n", meta.StartTime, meta.EndTime)
		fmt.Fprintf(&b, "   **Speaker:** %s\n", meta.SpeakerID)
		fmt.Fprintf(&b, "   **Content:** %s%s\n\n", text, truncated)
	}
	return strings.TrimRight(b.String(), "\n")
}

// bestVideoURL returns the meeting video of the nearest hit that has one.
func bestVideoURL(hits []*core.QueryHit) string {
	for _, hit := range hits {
		if url := hit.Document.Metadata.VideoURL; url != "" {
			return url
		}
	}
	return ""
}
