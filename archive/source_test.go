package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromString(t *testing.T) {
	t.Run("exact name", func(t *testing.T) {
		s, ok := FromString("BOARD_OF_SUPERVISORS")
		require.True(t, ok)
		assert.Equal(t, "BOARD_OF_SUPERVISORS", s.Name())
		assert.Equal(t, "10", s.ID())
	})

	t.Run("case-insensitive with dashes", func(t *testing.T) {
		s, ok := FromString("board-of-supervisors")
		require.True(t, ok)
		assert.Equal(t, "10", s.ID())
	})

	t.Run("unknown name", func(t *testing.T) {
		_, ok := FromString("DEPARTMENT_OF_MYSTERIES")
		assert.False(t, ok)
	})
}

func TestDerivedURLs(t *testing.T) {
	s, ok := FromString("PLANNING_COMMISSION")
	require.True(t, ok)

	assert.Equal(t, "https://sanfrancisco.granicus.com/ViewPublisher.php?view_id=20", s.URL())
	assert.Equal(t, "https://sanfrancisco.granicus.com/Podcast.php?view_id=20", s.AudioFeedURL())
	assert.Equal(t, "https://sanfrancisco.granicus.com/ViewPublisherRSS.php?view_id=20", s.VideoFeedURL())
	assert.Equal(t, "https://sanfrancisco.granicus.com/ViewPublisherRSS.php?view_id=20&mode=agendas", s.AgendaFeedURL())
}

func TestPlayerURL(t *testing.T) {
	url := PlayerURL("20", "555")
	assert.Contains(t, url, "clip/555")
	assert.Contains(t, url, "view_id=20")
}

func TestAll(t *testing.T) {
	sources := All()
	require.NotEmpty(t, sources)

	// Ordered by name, no zero values.
	for i, s := range sources {
		assert.False(t, s.IsZero())
		if i > 0 {
			assert.Less(t, sources[i-1].Name(), s.Name())
		}
	}

	// The identifier uniquely determines derived URLs: spot-check a known id.
	found := false
	for _, s := range sources {
		if s.Name() == "ETHICS_COMMISSION" {
			found = true
			assert.Equal(t, "142", s.ID())
		}
	}
	assert.True(t, found)
}
