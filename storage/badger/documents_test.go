package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/storage"
)

func testDocument(id, text string, vector []float32) *core.Document {
	return &core.Document{
		ID:   id,
		Text: text,
		Metadata: core.Metadata{
			StartTime:    12.5,
			EndTime:      44.25,
			SpeakerID:    "0",
			MeetingDate:  "2024-01-15",
			MeetingGroup: "BOARD_OF_SUPERVISORS",
			VideoURL:     "https://sanfrancisco.granicus.com/player/clip/45001?view_id=10&embed=1",
		},
		Vector: vector,
	}
}

func TestDocumentUpsertAndGet(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	doc := testDocument("2024-01-15_BOARD_OF_SUPERVISORS_12.5_44.25", "Roll call.", []float32{1, 0, 0})
	if err := docRepo.UpsertDocuments(ctx, doc); err != nil {
		t.Fatalf("Failed to upsert document: %v", err)
	}

	retrieved, err := docRepo.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Text != "Roll call." {
		t.Fatalf("Expected 'Roll call.', got '%s'", retrieved.Text)
	}
	if retrieved.Metadata.MeetingGroup != "BOARD_OF_SUPERVISORS" {
		t.Fatalf("Unexpected group: %s", retrieved.Metadata.MeetingGroup)
	}
}

func TestDocumentUpsertReplaces(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	id := "2024-01-15_BOARD_OF_SUPERVISORS_12.5_44.25"

	if err := docRepo.UpsertDocuments(ctx, testDocument(id, "First version.", []float32{1, 0, 0})); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	if err := docRepo.UpsertDocuments(ctx, testDocument(id, "Second version.", []float32{0, 1, 0})); err != nil {
		t.Fatalf("Failed to re-upsert: %v", err)
	}

	count, err := docRepo.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 document after re-upsert, got %d", count)
	}

	retrieved, err := docRepo.GetDocument(ctx, id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if retrieved.Text != "Second version." {
		t.Fatalf("Expected replacement text, got '%s'", retrieved.Text)
	}
}

func TestDocumentNotFound(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	_, err = docRepo.GetDocument(context.Background(), "no-such-id")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestDocumentIDsSorted(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	docs := []*core.Document{
		testDocument("2024-02-01_PLANNING_COMMISSION_0_10", "b", nil),
		testDocument("2024-01-15_BOARD_OF_SUPERVISORS_0_10", "a", nil),
	}
	if err := docRepo.UpsertDocuments(ctx, docs...); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	ids, err := docRepo.DocumentIDs(ctx)
	if err != nil {
		t.Fatalf("Failed to list IDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected 2 IDs, got %d", len(ids))
	}
	if ids[0] != "2024-01-15_BOARD_OF_SUPERVISORS_0_10" {
		t.Fatalf("Expected sorted order, got %v", ids)
	}
}

func TestFindNearestOrdering(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	// Unit vectors at known angles to the query vector {1, 0, 0}.
	docs := []*core.Document{
		testDocument("doc-orthogonal", "orthogonal", []float32{0, 1, 0}),
		testDocument("doc-identical", "identical", []float32{1, 0, 0}),
		testDocument("doc-opposite", "opposite", []float32{-1, 0, 0}),
		testDocument("doc-unembedded", "skipped", nil),
	}
	if err := docRepo.UpsertDocuments(ctx, docs...); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	hits, err := docRepo.FindNearest(ctx, []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("Expected 3 hits (unembedded skipped), got %d", len(hits))
	}
	if hits[0].Document.ID != "doc-identical" {
		t.Fatalf("Expected identical doc first, got %s", hits[0].Document.ID)
	}
	if hits[0].Distance != 0 {
		t.Fatalf("Expected zero distance for identical vector, got %f", hits[0].Distance)
	}
	if hits[1].Document.ID != "doc-orthogonal" {
		t.Fatalf("Expected orthogonal doc second, got %s", hits[1].Document.ID)
	}
	if hits[2].Document.ID != "doc-opposite" {
		t.Fatalf("Expected opposite doc last, got %s", hits[2].Document.ID)
	}
}

func TestFindNearestLimit(t *testing.T) {
	docRepo, _, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	for _, doc := range []*core.Document{
		testDocument("a", "a", []float32{1, 0}),
		testDocument("b", "b", []float32{0.9, 0.1}),
		testDocument("c", "c", []float32{0, 1}),
	} {
		if err := docRepo.UpsertDocuments(ctx, doc); err != nil {
			t.Fatalf("Failed to upsert: %v", err)
		}
	}

	hits, err := docRepo.FindNearest(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}

	_, err = docRepo.FindNearest(ctx, []float32{1, 0}, 0)
	if !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery for zero limit, got %v", err)
	}
}
