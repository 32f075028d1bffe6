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


// Package ai provides abstractions for the AI services used by civicsignal.
//
// It defines interfaces for text embeddings and chat completions so the
// indexing and chat layers depend on abstractions rather than concrete
// implementations:
//
//   - Embedder: generates vector embeddings from paragraph text and queries
//   - ChatModel: produces chat completions for retrieval-augmented answers
//   - Provider: aggregates both for convenient initialization
//
// Two implementation sub-packages are included:
//
//   - ai/openai: production implementation over OpenAI-compatible APIs
//     (Ollama, Cerebras, OpenAI itself) via langchaingo
//   - ai/mock: deterministic test doubles for unit testing without
//     external services
//
// Public constructors in the implementation packages return the interface
// types to enforce abstraction; mock constructors return concrete types so
// tests can inject behavior and assert call counts.
package ai
