package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/civicsignal/ai/mock"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/storage"
	"github.com/civicsignal/civicsignal/storage/badger"
)

func seedDocuments(t *testing.T, docs storage.DocumentRepository, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		err := docs.UpsertDocuments(ctx, &core.Document{
			ID:     fmt.Sprintf("2024-01-15_BOARD_OF_SUPERVISORS_%d_%d", i*10, i*10+5),
			Text:   fmt.Sprintf("paragraph %d", i),
			Vector: []float32{1, 0, 0}, // stale vector to be replaced
		})
		require.NoError(t, err)
	}
}

func fastConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestReembedderRun(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedDocuments(t, docs, 5)
	embedder := mock.NewMockEmbedder()

	var out bytes.Buffer
	r := NewReembedder(docs, embedder, fastConfig(), &out)
	require.NoError(t, r.Run(context.Background()))

	// 5 documents at batch size 2 = 3 embedding calls
	assert.Equal(t, 3, embedder.CallCount())
	assert.Contains(t, out.String(), "Starting reembedding of 5 documents")

	// Vectors were replaced and IDs untouched
	ctx := context.Background()
	ids, err := docs.DocumentIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 5)

	doc, err := docs.GetDocument(ctx, ids[0])
	require.NoError(t, err)
	assert.NotEqual(t, []float32{1, 0, 0}, doc.Vector)
	assert.Len(t, doc.Vector, 384)
}

func TestReembedderEmptyIndex(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	var out bytes.Buffer
	r := NewReembedder(docs, mock.NewMockEmbedder(), fastConfig(), &out)
	require.NoError(t, r.Run(context.Background()))
	assert.Contains(t, out.String(), "No documents found")
}

func TestReembedderRetriesThenFails(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedDocuments(t, docs, 1)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var out bytes.Buffer
	r := NewReembedder(docs, embedder, fastConfig(), &out)
	err = r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 2, embedder.CallCount())
}

func TestReembedderInvalidBatchSize(t *testing.T) {
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	r := NewReembedder(docs, mock.NewMockEmbedder(), &Config{BatchSize: 0, ReportInterval: 1, MaxRetries: 1, RetryDelay: time.Millisecond}, &bytes.Buffer{})
	assert.ErrorIs(t, r.Run(context.Background()), ErrInvalidBatchSize)
}
