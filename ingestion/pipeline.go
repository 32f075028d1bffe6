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
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/civicsignal/civicsignal/archive"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/index"
	"github.com/civicsignal/civicsignal/transcribe"
)

// Pipeline ingests one source end to end: resolve the meeting's audio,
// transcribe (through the cache), assemble the domain model, and index.
// Assembled meetings are memoized for the pipeline's lifetime since they
// are cheap to rebuild but queried repeatedly during a session.
type Pipeline struct {
	resolver   *archive.Resolver
	cache      *transcribe.Cache
	client     *transcribe.Client
	downloader *archive.Downloader
	index      *index.MeetingIndex
	logger     *slog.Logger

	meetings map[time.Time]*core.Meeting
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineLogger sets the logger used by the pipeline.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithDownloader replaces the audio downloader.
func WithDownloader(d *archive.Downloader) PipelineOption {
	return func(p *Pipeline) {
		p.downloader = d
	}
}

// NewPipeline wires a resolver, cache, transcription client, and index into
// an ingestion pipeline for one source.
func NewPipeline(resolver *archive.Resolver, cache *transcribe.Cache, client *transcribe.Client, idx *index.MeetingIndex, opts ...PipelineOption) (*Pipeline, error) {
	if resolver == nil {
		return nil, ErrNilResolver
	}
	if cache == nil {
		return nil, ErrNilCache
	}
	if client == nil {
		return nil, ErrNilClient
	}
	if idx == nil {
		return nil, ErrNilIndex
	}

	p := &Pipeline{
		resolver:   resolver,
		cache:      cache,
		client:     client,
		downloader: archive.NewDownloader(),
		index:      idx,
		meetings:   make(map[time.Time]*core.Meeting),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default().With("component", "ingestion", "source", resolver.Source().Name())
	}
	return p, nil
}

// Source returns the source this pipeline ingests.
func (p *Pipeline) Source() archive.Source {
	return p.resolver.Source()
}

// Resolver returns the pipeline's date resolver.
func (p *Pipeline) Resolver() *archive.Resolver {
	return p.resolver
}

// CachedDates returns the dates with on-disk transcripts for this source.
func (p *Pipeline) CachedDates() ([]time.Time, error) {
	return p.cache.CachedDates(p.Source().Name())
}

// HasCachedTranscript reports whether a transcript for the date is on disk.
func (p *Pipeline) HasCachedTranscript(date time.Time) bool {
	dates, err := p.CachedDates()
	if err != nil {
		return false
	}
	day := core.Day(date)
	for _, d := range dates {
		if d.Equal(day) {
			return true
		}
	}
	return false
}

// Transcript returns the raw transcript for a meeting date. The cache is
// consulted first unless force is set; a fresh transcription overwrites the
// cached entry. Transcription is the expensive, billable step, so cache
// entries are never invalidated automatically.
func (p *Pipeline) Transcript(ctx context.Context, date time.Time, force bool) (*transcribe.Transcript, error) {
	source := p.Source().Name()
	day := core.Day(date)

	if !force {
		cached, err := p.cache.Get(source, day)
		if err == nil {
			p.logger.Debug("transcript cache hit", "date", core.FormatDate(day))
			return cached, nil
		}
		if !errors.Is(err, transcribe.ErrCacheMiss) {
			// Corruption surfaces, never an empty meeting
			return nil, err
		}
	}

	audioURL, err := p.resolver.ResolveAudioURL(day)
	if err != nil {
		return nil, err
	}

	p.logger.Info("transcribing meeting audio", "date", core.FormatDate(day), "url", audioURL)

	transcript, err := p.client.Transcribe(ctx, func(ctx context.Context) (io.ReadCloser, error) {
		return p.downloader.Fetch(ctx, audioURL)
	})
	if err != nil {
		return nil, err
	}

	if err := p.cache.Put(source, day, transcript); err != nil {
		return nil, err
	}
	return transcript, nil
}

// Meeting assembles the domain Meeting for a date, reusing the memoized
// copy unless force is set. The video URL is resolved best-effort: a source
// with a broken video feed still produces a meeting, just without URLs.
func (p *Pipeline) Meeting(ctx context.Context, date time.Time, force bool) (*core.Meeting, error) {
	day := core.Day(date)
	if !force {
		if meeting, ok := p.meetings[day]; ok {
			return meeting, nil
		}
	}

	transcript, err := p.Transcript(ctx, day, force)
	if err != nil {
		return nil, err
	}

	videoURL, err := p.resolver.ResolveVideoURL(day)
	if err != nil {
		p.logger.Warn("could not resolve video URL", "date", core.FormatDate(day), "err", err)
		videoURL = ""
	}

	meeting := AssembleMeeting(transcript, p.Source(), day, videoURL)
	p.meetings[day] = meeting
	return meeting, nil
}

// Embed ingests and indexes one meeting, returning the number of indexed
// paragraphs. A meeting whose transcript came back empty returns
// ErrEmptyTranscript so callers can skip with a warning.
func (p *Pipeline) Embed(ctx context.Context, date time.Time, force bool) (int, error) {
	meeting, err := p.Meeting(ctx, date, force)
	if err != nil {
		return 0, err
	}
	if len(meeting.Transcript) == 0 {
		return 0, ErrEmptyTranscript
	}
	return p.index.UpsertMeeting(ctx, meeting)
}

// EmbedLatest ingests and indexes the source's most recent meeting.
func (p *Pipeline) EmbedLatest(ctx context.Context, force bool) (time.Time, int, error) {
	date, err := p.resolver.LastMeetingDate()
	if err != nil {
		return time.Time{}, 0, err
	}
	n, err := p.Embed(ctx, date, force)
	return date, n, err
}
