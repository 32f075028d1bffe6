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

import "fmt"

// ValidateParagraph validates a Paragraph according to domain rules.
//
// Validation rules:
//   - EndTime must not precede StartTime
//
// NOT validated:
//   - Sentences (a paragraph with no sentences is legal; its text is empty)
//   - SpeakerID (the engine may report any label, including "0")
func ValidateParagraph(p *Paragraph) error {
	if p == nil {
		return fmt.Errorf("%w: paragraph is nil", ErrInvalidParagraph)
	}

	if p.EndTime < p.StartTime {
		return fmt.Errorf("%w: %w", ErrInvalidParagraph, ErrInvalidTimeRange)
	}

	return nil
}

// ValidateMeeting validates a Meeting according to domain rules.
//
// Validation rules:
//   - Group must not be empty
//   - Date must be set
//   - every Paragraph must be valid
//
// NOT validated:
//   - Transcript length (a meeting with an empty transcript is legal; callers
//     decide whether to skip it)
//   - EmbedURL (empty when the clip id could not be derived)
func ValidateMeeting(m *Meeting) error {
	if m == nil {
		return fmt.Errorf("%w: meeting is nil", ErrInvalidMeeting)
	}

	if m.Group == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMeeting, ErrEmptyGroup)
	}

	if m.Date.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidMeeting, ErrZeroDate)
	}

	for i := range m.Transcript {
		if err := ValidateParagraph(&m.Transcript[i]); err != nil {
			return fmt.Errorf("%w: paragraph %d: %w", ErrInvalidMeeting, i, err)
		}
	}

	return nil
}

// ValidateChatMessage validates a ChatMessage according to domain rules.
func ValidateChatMessage(msg *ChatMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrEmptyContent)
	}

	if msg.Content == "" {
		return ErrEmptyContent
	}

	switch msg.Role {
	case RoleSystem, RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}

	return nil
}
