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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidParagraph indicates a Paragraph failed validation.
	ErrInvalidParagraph = errors.New("invalid paragraph")

	// ErrInvalidMeeting indicates a Meeting failed validation.
	ErrInvalidMeeting = errors.New("invalid meeting")

	// ErrInvalidTimeRange indicates a paragraph's end time precedes its start time.
	ErrInvalidTimeRange = errors.New("end time cannot precede start time")

	// ErrEmptyGroup indicates the meeting Group field is empty.
	ErrEmptyGroup = errors.New("meeting group cannot be empty")

	// ErrZeroDate indicates the meeting Date field is unset.
	ErrZeroDate = errors.New("meeting date cannot be zero")

	// ErrEmptyContent indicates a chat message Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRole indicates an unknown chat message role.
	ErrInvalidRole = errors.New("invalid message role")
)
