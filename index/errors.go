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


package index

import (
	"errors"
	"fmt"
)

var (
	// ErrNilRepository indicates the index was constructed without a
	// document repository.
	ErrNilRepository = errors.New("document repository is required")

	// ErrNilEmbedder indicates the index was constructed without an embedder.
	ErrNilEmbedder = errors.New("embedder is required")

	// ErrEmptyQuery indicates a query with no text.
	ErrEmptyQuery = errors.New("query text is empty")
)

// WriteError indicates that indexing a meeting failed partway.
// The meeting is identified by group and ISO date.
type WriteError struct {
	Group string
	Date  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("indexing meeting %s %s failed: %v", e.Group, e.Date, e.Cause)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}
