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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/civicsignal/civicsignal/ai"
	"github.com/civicsignal/civicsignal/storage"
)

// Config holds configuration for a reembedding run.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for embedding API calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder regenerates the embedding vectors of every indexed document,
// for example after switching to a new embedding model. Document IDs and
// text are untouched, so the index keys stay stable across the run.
type Reembedder struct {
	docs     storage.DocumentRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(docs storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		docs:     docs,
		embedder: embedder,
		config:   config,
		progress: progress,
	}
}

// Run reembeds every document in the index in batches, reporting progress
// to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	if r.config.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	ids, err := r.docs.DocumentIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintf(r.progress, "No documents found in index (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		len(ids), r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, len(ids), r.config.ReportInterval)
	tracker.Start()

	for start := 0; start < len(ids); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(ids) {
			end = len(ids)
		}

		if err := r.processBatch(ctx, ids[start:end]); err != nil {
			return err
		}
		tracker.Increment(end - start)
	}

	tracker.Finish()
	fmt.Fprintf(r.progress, "Reembedding complete: %d documents in %s\n",
		len(ids), tracker.Elapsed().Round(time.Millisecond))
	return nil
}

// processBatch reembeds one batch of documents and writes them back.
// Vectors are normalized after embedding so cosine similarity stays a
// plain dot product.
func (r *Reembedder) processBatch(ctx context.Context, ids []string) error {
	docs, err := r.docs.GetDocuments(ctx, ids...)
	if err != nil {
		return fmt.Errorf("failed to load batch: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var vectors [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vectors, embedErr = r.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(vectors))
	}

	for i, doc := range docs {
		doc.Vector = storage.NormalizeVector(vectors[i])
	}
	if err := r.docs.UpsertDocuments(ctx, docs...); err != nil {
		return fmt.Errorf("failed to write batch: %w", err)
	}
	return nil
}
