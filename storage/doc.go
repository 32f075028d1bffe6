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


// Package storage provides the storage abstraction layer for civicsignal.
//
// It defines repository interfaces that decouple persistence from business
// logic, so different backends (BadgerDB, in-memory test doubles) can be
// used interchangeably:
//
//   - DocumentRepository: indexed meeting paragraphs with embedding vectors
//   - MessageRepository: persisted chat session history
//
// Public constructors in backend packages return these interfaces rather
// than concrete types:
//
//	docs, err := badger.NewDocumentRepository(backend)  // storage.DocumentRepository
//
// All repository implementations must be safe for concurrent readers.
// All methods accept context.Context for cancellation.
package storage
