// Package index maintains the searchable vector index over meeting
// paragraphs.
//
// Each paragraph of an assembled meeting becomes one document whose ID is
// derived from the meeting date, group, and paragraph time bounds. IDs are
// deterministic, so re-indexing a meeting replaces its documents in place
// and the index never accumulates duplicates.
//
// Stored vectors are normalized to unit length, which lets nearest-neighbor
// search rank by a plain dot product. Query distances are 1 - cosine
// similarity: lower is more similar, and a displayed similarity of
// 1 - distance can be negative for dissimilar text.
package index
