package civicsignal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/civicsignal/archive"
	"github.com/civicsignal/civicsignal/core"
)

func TestNewArchive(t *testing.T) {
	t.Run("create new archive", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "civic")
		a, err := NewArchive(dataDir)
		require.NoError(t, err)
		require.NotNil(t, a)
		defer a.Close()

		assert.NotNil(t, a.Index())
		assert.NotNil(t, a.DocumentRepository())
		assert.NotNil(t, a.MessageRepository())
		assert.NotNil(t, a.Cache())

		// The data directory layout is created on open.
		info, err := os.Stat(filepath.Join(dataDir, "db"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		info, err = os.Stat(filepath.Join(dataDir, "transcripts"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

		a, err := NewArchive(filepath.Join(tmpFile, "nested"))
		assert.Error(t, err)
		assert.Nil(t, a)
	})
}

func TestArchive_Close(t *testing.T) {
	a, err := NewArchive(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestArchive_FactoryMethods(t *testing.T) {
	// Feeds resolve against a local server so pipeline construction never
	// reaches the real archive.
	feeds := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer feeds.Close()

	a, err := NewArchive(t.TempDir(),
		WithTranscribeAPIKey("test-key"),
		WithResolverOptions(archive.WithFeedURLs(feeds.URL+"/audio", feeds.URL+"/video", feeds.URL+"/agenda")),
	)
	require.NoError(t, err)
	defer a.Close()

	source, ok := archive.FromString("BOARD_OF_SUPERVISORS")
	require.True(t, ok)

	t.Run("can create chat service", func(t *testing.T) {
		svc, err := a.NewChat()
		require.NoError(t, err)
		require.NotNil(t, svc)
	})

	t.Run("pipeline is memoized per source", func(t *testing.T) {
		p1, err := a.Pipeline(context.Background(), source)
		require.NoError(t, err)
		p2, err := a.Pipeline(context.Background(), source)
		require.NoError(t, err)
		assert.Same(t, p1, p2)
	})

	t.Run("can create orchestrator", func(t *testing.T) {
		o, err := a.NewOrchestrator(context.Background(), []archive.Source{source})
		require.NoError(t, err)
		require.NotNil(t, o)
	})
}

func TestArchive_PipelineRequiresAPIKey(t *testing.T) {
	a, err := NewArchive(t.TempDir(), WithTranscribeAPIKey(""))
	require.NoError(t, err)
	defer a.Close()

	source, ok := archive.FromString("BOARD_OF_SUPERVISORS")
	require.True(t, ok)

	_, err = a.Pipeline(context.Background(), source)
	assert.Error(t, err)
}

func TestDatesFromDocumentIDs(t *testing.T) {
	day := func(s string) time.Time {
		d, err := core.ParseDate(s)
		require.NoError(t, err)
		return d
	}

	ids := []string{
		"2024-01-15_BOARD_OF_SUPERVISORS_0_5.5",
		"2024-01-15_BOARD_OF_SUPERVISORS_5.5_12",
		"2024-02-20_BOARD_OF_SUPERVISORS_0_3",
		"2024-01-15_PLANNING_COMMISSION_0_3",
		"garbage",
	}

	dates := datesFromDocumentIDs(ids, "BOARD_OF_SUPERVISORS")
	assert.Equal(t, []time.Time{day("2024-01-15"), day("2024-02-20")}, dates)

	assert.Empty(t, datesFromDocumentIDs(ids, "ETHICS_COMMISSION"))

	t.Run("group name that prefixes another group", func(t *testing.T) {
		// Several real sources are underscore-separated prefixes of
		// others; their documents must never be attributed to the
		// shorter name.
		ids := []string{
			"2024-01-15_ARTS_COMMISSION_0_5.5",
			"2024-02-20_ARTS_COMMISSION_COMMITTEE_0_3",
			"2024-03-01_ELECTION_PROGRAMMING_0_4",
			"2024-03-05_ELECTION_PROGRAMMING_ARCHIVE_0_4",
		}

		assert.Equal(t, []time.Time{day("2024-01-15")},
			datesFromDocumentIDs(ids, "ARTS_COMMISSION"))
		assert.Equal(t, []time.Time{day("2024-02-20")},
			datesFromDocumentIDs(ids, "ARTS_COMMISSION_COMMITTEE"))
		assert.Equal(t, []time.Time{day("2024-03-01")},
			datesFromDocumentIDs(ids, "ELECTION_PROGRAMMING"))
		assert.Equal(t, []time.Time{day("2024-03-05")},
			datesFromDocumentIDs(ids, "ELECTION_PROGRAMMING_ARCHIVE"))
	})
}
