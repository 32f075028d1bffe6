// Package ingestion drives the meeting ingestion pipeline: resolve a
// meeting's audio from its source feeds, transcribe it through the on-disk
// transcript cache, assemble the domain Meeting model, and upsert the
// result into the vector index.
//
// A Pipeline ingests a single source. The Orchestrator runs backfills
// across many pipelines with selectable work-list and ordering policies,
// isolating per-item failures so one broken meeting never aborts a run.
//
// Everything here executes strictly sequentially. Transcription is the
// rate-limited, billable step, so the orchestrator pauses before each item
// that is not already cached.
package ingestion
