package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParagraph(t *testing.T) {
	t.Run("valid paragraph", func(t *testing.T) {
		p := &Paragraph{StartTime: 1.5, EndTime: 8.25, SpeakerID: "0", Sentences: []string{"Hello."}}
		require.NoError(t, ValidateParagraph(p))
	})

	t.Run("no sentences is valid", func(t *testing.T) {
		require.NoError(t, ValidateParagraph(&Paragraph{}))
	})

	t.Run("nil paragraph", func(t *testing.T) {
		err := ValidateParagraph(nil)
		assert.ErrorIs(t, err, ErrInvalidParagraph)
	})

	t.Run("inverted time range", func(t *testing.T) {
		err := ValidateParagraph(&Paragraph{StartTime: 10, EndTime: 5})
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}

func TestValidateMeeting(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("valid meeting", func(t *testing.T) {
		m := &Meeting{
			Date:       date,
			Group:      "BOARD_OF_SUPERVISORS",
			Transcript: []Paragraph{{StartTime: 0, EndTime: 4, Sentences: []string{"Order."}}},
		}
		require.NoError(t, ValidateMeeting(m))
	})

	t.Run("empty transcript is valid", func(t *testing.T) {
		require.NoError(t, ValidateMeeting(&Meeting{Date: date, Group: "ETHICS_COMMISSION"}))
	})

	t.Run("missing group", func(t *testing.T) {
		err := ValidateMeeting(&Meeting{Date: date})
		assert.ErrorIs(t, err, ErrEmptyGroup)
	})

	t.Run("zero date", func(t *testing.T) {
		err := ValidateMeeting(&Meeting{Group: "RULES_COMMITTEE"})
		assert.ErrorIs(t, err, ErrZeroDate)
	})

	t.Run("invalid paragraph surfaces", func(t *testing.T) {
		m := &Meeting{
			Date:       date,
			Group:      "RULES_COMMITTEE",
			Transcript: []Paragraph{{StartTime: 9, EndTime: 1}},
		}
		err := ValidateMeeting(m)
		assert.ErrorIs(t, err, ErrInvalidMeeting)
		assert.ErrorIs(t, err, ErrInvalidTimeRange)
	})
}

func TestValidateChatMessage(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		msg := &ChatMessage{Role: RoleUser, Content: "what about the bike lane?"}
		require.NoError(t, ValidateChatMessage(msg))
	})

	t.Run("empty content", func(t *testing.T) {
		assert.ErrorIs(t, ValidateChatMessage(&ChatMessage{Role: RoleUser}), ErrEmptyContent)
	})

	t.Run("unknown role", func(t *testing.T) {
		err := ValidateChatMessage(&ChatMessage{Role: "tool", Content: "x"})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}
