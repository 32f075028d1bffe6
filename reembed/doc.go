// Package reembed regenerates embedding vectors for every indexed meeting
// paragraph, typically after switching embedding models.
//
// Documents keep their deterministic IDs and text; only vectors change, so
// a run is idempotent and safe to repeat after interruption. Batches are
// embedded with retry and exponential backoff, and progress is reported to
// a writer as the run proceeds.
package reembed
