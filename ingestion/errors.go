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

import "errors"

var (
	// ErrNilResolver indicates a pipeline was constructed without a resolver.
	ErrNilResolver = errors.New("resolver is required")

	// ErrNilCache indicates a pipeline was constructed without a cache.
	ErrNilCache = errors.New("transcript cache is required")

	// ErrNilClient indicates a pipeline was constructed without a
	// transcription client.
	ErrNilClient = errors.New("transcription client is required")

	// ErrNilIndex indicates a pipeline was constructed without an index.
	ErrNilIndex = errors.New("meeting index is required")

	// ErrEmptyTranscript indicates the engine returned a transcript with no
	// paragraphs. Callers treat this as skip-with-warning, not a crash.
	ErrEmptyTranscript = errors.New("transcript has no paragraphs")

	// ErrNoPipelines indicates a backfill was started with no sources.
	ErrNoPipelines = errors.New("no pipelines to backfill")
)
