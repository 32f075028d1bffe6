// Package transcribe wraps the external speech-to-text boundary.
//
// Client streams meeting audio to the engine in fixed-size chunks and
// retries transient failures with backoff and jitter. Cache keeps the raw
// engine results in a two-tier (memory, disk) store keyed by source and
// date, so a meeting is only ever transcribed — and paid for — once.
package transcribe
