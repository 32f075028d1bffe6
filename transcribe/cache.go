package transcribe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cache is a two-tier (in-memory, on-disk) store of raw transcripts keyed
// by (source, date). Transcription is the expensive, billable step, so
// entries are kept indefinitely: the cache is monotonic and never evicts.
// Staleness is the caller's concern — a force flag bypasses Get and
// overwrites via Put.
type Cache struct {
	dir    string
	mu     sync.Mutex
	mem    map[string]*Transcript
	logger *slog.Logger
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheLogger sets a custom logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCache creates a transcript cache rooted at dir, creating the
// directory if needed.
func NewCache(dir string, opts ...CacheOption) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &Cache{
		dir:    dir,
		mem:    make(map[string]*Transcript),
		logger: slog.Default().With("component", "transcript-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns the cached transcript for (source, date). The in-memory tier
// is checked first, then the on-disk tier; a disk hit populates the
// in-memory tier. Returns ErrCacheMiss when no entry exists and a
// CacheCorruptionError when a file exists but cannot be parsed.
func (c *Cache) Get(source string, date time.Time) (*Transcript, error) {
	name := c.fileName(source, date)

	c.mu.Lock()
	if t, ok := c.mem[name]; ok {
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	path := filepath.Join(c.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, &CacheCorruptionError{Path: path, Cause: err}
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, &CacheCorruptionError{Path: path, Cause: err}
	}

	c.mu.Lock()
	c.mem[name] = &t
	c.mu.Unlock()

	c.logger.Debug("transcript loaded from disk", "file", name)
	return &t, nil
}

// Put writes the transcript to both tiers. The disk write is a full
// overwrite through a temporary file and rename, so a crash mid-write
// cannot leave a corrupt cache file.
func (c *Cache) Put(source string, date time.Time, t *Transcript) error {
	name := c.fileName(source, date)
	path := filepath.Join(c.dir, name)

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing transcript: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing transcript cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing transcript cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("committing transcript cache: %w", err)
	}

	c.mu.Lock()
	c.mem[name] = t
	c.mu.Unlock()

	c.logger.Debug("transcript cached", "file", name)
	return nil
}

// CachedDates enumerates the dates with an on-disk entry for the source,
// independent of in-memory state, sorted ascending. Used for discovery at
// startup and backfill planning.
func (c *Cache) CachedDates(source string) ([]time.Time, error) {
	pattern := filepath.Join(c.dir, "transcript_*_"+source+".json")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(matches))
	for _, match := range matches {
		base := filepath.Base(match)
		raw := strings.TrimPrefix(base, "transcript_")
		raw = strings.TrimSuffix(raw, "_"+source+".json")
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			c.logger.Warn("ignoring unparseable cache file", "file", base, "err", err)
			continue
		}
		dates = append(dates, d)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// fileName builds the per-key cache file name.
func (c *Cache) fileName(source string, date time.Time) string {
	return "transcript_" + date.Format("2006-01-02") + "_" + source + ".json"
}
