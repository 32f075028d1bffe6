package storage

import (
	"context"

	"github.com/civicsignal/civicsignal/core"
)

// DocumentRepository stores indexed meeting paragraphs.
// Implementations must be safe for concurrent readers; writers are expected
// to be serialized externally (one ingestion process at a time).
type DocumentRepository interface {
	// UpsertDocuments writes documents keyed by their deterministic IDs.
	// Writing a document whose ID already exists replaces it, so re-indexing
	// the same meeting is idempotent.
	UpsertDocuments(ctx context.Context, docs ...*core.Document) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id string) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing ones).
	GetDocuments(ctx context.Context, ids ...string) ([]*core.Document, error)

	// DocumentIDs returns every stored document ID, sorted.
	DocumentIDs(ctx context.Context) ([]string, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// FindNearest returns up to limit documents ranked by distance to the
	// given vector, nearest first. Distance is 1 - cosine similarity.
	// Documents without embeddings are skipped.
	FindNearest(ctx context.Context, vector []float32, limit int) ([]*core.QueryHit, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// MessageRepository persists chat session history.
type MessageRepository interface {
	// AppendMessages appends messages to their sessions, assigning
	// content-based IDs and insertion timestamps where unset.
	AppendMessages(ctx context.Context, msgs ...*core.ChatMessage) ([]*core.ChatMessage, error)

	// RecentMessages returns the last limit messages of a session in
	// chronological order (oldest of the window first).
	RecentMessages(ctx context.Context, session string, limit int) ([]*core.ChatMessage, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
