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


package civicsignal

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/civicsignal/civicsignal/ai"
	"github.com/civicsignal/civicsignal/ai/openai"
	"github.com/civicsignal/civicsignal/archive"
	"github.com/civicsignal/civicsignal/chat"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/index"
	"github.com/civicsignal/civicsignal/ingestion"
	"github.com/civicsignal/civicsignal/storage"
	"github.com/civicsignal/civicsignal/storage/badger"
	"github.com/civicsignal/civicsignal/transcribe"
)

// Archive is the top-level handle on a CivicSignal data directory. It owns
// the BadgerDB backend, the document and chat message repositories, the AI
// provider, and the meeting index, and hands out per-source ingestion
// pipelines on demand.
type Archive struct {
	backend  *badger.Backend
	docs     storage.DocumentRepository
	messages storage.MessageRepository
	provider ai.Provider
	index    *index.MeetingIndex
	cache    *transcribe.Cache

	transcribeKey string
	clientOpts    []transcribe.ClientOption
	resolverOpts  []archive.ResolverOption

	// client is created on first pipeline request; searching and chatting
	// over an already-built index need no transcription credentials.
	client *transcribe.Client

	pipelines map[string]*ingestion.Pipeline
	logger    *slog.Logger
}

// ArchiveOption configures an Archive.
type ArchiveOption func(*archiveOptions)

type archiveOptions struct {
	aiConfig      *ai.Config
	transcribeKey string
	cacheDir      string
	clientOpts    []transcribe.ClientOption
	resolverOpts  []archive.ResolverOption
	logger        *slog.Logger
}

// WithAIConfig sets the embedding and chat endpoint configuration.
func WithAIConfig(config *ai.Config) ArchiveOption {
	return func(o *archiveOptions) {
		o.aiConfig = config
	}
}

// WithTranscribeAPIKey sets the transcription engine API key. Defaults to
// the DEEPGRAM_API_KEY environment variable.
func WithTranscribeAPIKey(key string) ArchiveOption {
	return func(o *archiveOptions) {
		o.transcribeKey = key
	}
}

// WithCacheDir sets the transcript cache directory. Defaults to a
// "transcripts" directory beside the database.
func WithCacheDir(dir string) ArchiveOption {
	return func(o *archiveOptions) {
		o.cacheDir = dir
	}
}

// WithTranscribeOptions forwards options to the transcription client.
func WithTranscribeOptions(opts ...transcribe.ClientOption) ArchiveOption {
	return func(o *archiveOptions) {
		o.clientOpts = append(o.clientOpts, opts...)
	}
}

// WithResolverOptions forwards options to every resolver the archive creates.
func WithResolverOptions(opts ...archive.ResolverOption) ArchiveOption {
	return func(o *archiveOptions) {
		o.resolverOpts = append(o.resolverOpts, opts...)
	}
}

// WithArchiveLogger sets the logger for the archive and its components.
func WithArchiveLogger(logger *slog.Logger) ArchiveOption {
	return func(o *archiveOptions) {
		o.logger = logger
	}
}

// NewArchive opens (creating if needed) a CivicSignal data directory. The
// layout is dataDir/db for the BadgerDB store and dataDir/transcripts for
// the cached engine responses.
func NewArchive(dataDir string, opts ...ArchiveOption) (*Archive, error) {
	options := &archiveOptions{
		aiConfig:      ai.DefaultConfig(),
		transcribeKey: os.Getenv("DEEPGRAM_API_KEY"),
		cacheDir:      filepath.Join(dataDir, "transcripts"),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filepath.Join(dataDir, "db"), false)
	if err != nil {
		return nil, err
	}

	docs := badger.NewDocumentRepository(backend)
	messages := badger.NewMessageRepository(backend)

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		backend.Close()
		return nil, err
	}

	idx, err := index.New(docs, provider.Embedder(), index.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	cache, err := transcribe.NewCache(options.cacheDir, transcribe.WithCacheLogger(options.logger))
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &Archive{
		backend:       backend,
		docs:          docs,
		messages:      messages,
		provider:      provider,
		index:         idx,
		cache:         cache,
		transcribeKey: options.transcribeKey,
		clientOpts:    options.clientOpts,
		resolverOpts:  options.resolverOpts,
		pipelines:     make(map[string]*ingestion.Pipeline),
		logger:        options.logger,
	}, nil
}

// Close releases the AI provider and the storage backend.
func (a *Archive) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}

// Index returns the meeting index.
func (a *Archive) Index() *index.MeetingIndex {
	return a.index
}

// DocumentRepository returns the indexed document store.
func (a *Archive) DocumentRepository() storage.DocumentRepository {
	return a.docs
}

// MessageRepository returns the chat message store.
func (a *Archive) MessageRepository() storage.MessageRepository {
	return a.messages
}

// Cache returns the transcript cache.
func (a *Archive) Cache() *transcribe.Cache {
	return a.cache
}

// Pipeline returns the ingestion pipeline for the given source, creating it
// on first use. Creation fetches the source's feeds, so a context bounds the
// network work.
func (a *Archive) Pipeline(ctx context.Context, source archive.Source) (*ingestion.Pipeline, error) {
	if p, ok := a.pipelines[source.Name()]; ok {
		return p, nil
	}

	client, err := a.transcribeClient()
	if err != nil {
		return nil, err
	}

	resolver, err := archive.NewResolver(ctx, source, a.resolverOpts...)
	if err != nil {
		return nil, err
	}

	p, err := ingestion.NewPipeline(resolver, a.cache, client, a.index)
	if err != nil {
		return nil, err
	}
	a.pipelines[source.Name()] = p
	return p, nil
}

// NewOrchestrator builds a backfill orchestrator over pipelines for the
// given sources.
func (a *Archive) NewOrchestrator(ctx context.Context, sources []archive.Source, opts ...ingestion.OrchestratorOption) (*ingestion.Orchestrator, error) {
	pipelines := make([]*ingestion.Pipeline, 0, len(sources))
	for _, source := range sources {
		p, err := a.Pipeline(ctx, source)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, p)
	}
	return ingestion.NewOrchestrator(pipelines, opts...)
}

// NewChat builds a RAG chat service over the index, persisting conversation
// history in the archive's message store.
func (a *Archive) NewChat(opts ...chat.Option) (*chat.Service, error) {
	opts = append([]chat.Option{chat.WithLogger(a.logger)}, opts...)
	return chat.NewService(a.index, a.provider.ChatModel(), a.messages, opts...)
}

// Search embeds the query and returns the k nearest indexed paragraphs.
func (a *Archive) Search(ctx context.Context, query string, k int) ([]*core.QueryHit, error) {
	return a.index.Query(ctx, query, k)
}

// IndexedDates returns the distinct meeting dates present in the index for
// the given source, sorted ascending. It scans document ids, which embed the
// meeting date and group.
func (a *Archive) IndexedDates(ctx context.Context, source archive.Source) ([]time.Time, error) {
	ids, err := a.index.DocumentIDs(ctx)
	if err != nil {
		return nil, err
	}
	return datesFromDocumentIDs(ids, source.Name()), nil
}

// datesFromDocumentIDs extracts the distinct meeting dates for one group
// from document ids shaped {date}_{GROUP}_{start}_{end}. The group is
// parsed from the right, past the two time fields, so that a group whose
// name is a prefix of another (ARTS_COMMISSION vs ARTS_COMMISSION_COMMITTEE)
// never matches the other's documents.
func datesFromDocumentIDs(ids []string, group string) []time.Time {
	const dateLen = len("2006-01-02")

	seen := make(map[time.Time]struct{})
	for _, id := range ids {
		if len(id) <= dateLen+1 || id[dateLen] != '_' {
			continue
		}
		rest := id[dateLen+1:]
		end := strings.LastIndexByte(rest, '_')
		if end < 0 {
			continue
		}
		start := strings.LastIndexByte(rest[:end], '_')
		if start < 0 || rest[:start] != group {
			continue
		}
		date, err := core.ParseDate(id[:dateLen])
		if err != nil {
			continue
		}
		seen[date] = struct{}{}
	}

	dates := make([]time.Time, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
	return dates
}

func (a *Archive) transcribeClient() (*transcribe.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	client, err := transcribe.NewClient(a.transcribeKey, a.clientOpts...)
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}
