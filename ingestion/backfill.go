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

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/civicsignal/civicsignal/core"
)

// defaultTranscribeDelay is the pause inserted before each item that needs
// a fresh transcription, to stay under the engine's rate limits.
const defaultTranscribeDelay = 15 * time.Second

// Selection chooses which meetings a backfill run covers. Policies are
// mutually exclusive; the first that applies wins, in the order CachedOnly,
// date range, LastN, then the default of one latest meeting per source.
type Selection struct {
	// CachedOnly restricts the run to meetings whose transcripts are
	// already on disk.
	CachedOnly bool

	// From and To bound an explicit date range (inclusive). Both must be
	// set for the range policy to apply.
	From time.Time
	To   time.Time

	// LastN takes the N most recent meetings per source.
	LastN int
}

// Ordering controls execution order of the work list. The policies are
// independent and composable.
type Ordering struct {
	// Shuffle randomizes across sources so one endpoint isn't hammered
	// repeatedly.
	Shuffle bool

	// ShortestFirst sorts by audio Content-Length ascending to front-load
	// cheap items.
	ShortestFirst bool
}

// WorkItem is one meeting in the backfill work list.
type WorkItem struct {
	Pipeline *Pipeline
	Date     time.Time
	Cached   bool
}

// Identity renders the item as "GROUP date" for reporting.
func (w WorkItem) Identity() string {
	return w.Pipeline.Source().Name() + " " + core.FormatDate(w.Date)
}

// Failure records one failed work item.
type Failure struct {
	Identity string
	Err      error
}

// Report summarizes a backfill run.
type Report struct {
	Succeeded []string
	Skipped   []string
	Failures  []Failure
}

// Orchestrator drives bulk (re)indexing across sources, tolerating
// per-item failure. Execution is strictly sequential.
type Orchestrator struct {
	pipelines []*Pipeline
	delay     time.Duration
	logger    *slog.Logger
	rng       *rand.Rand
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithTranscribeDelay overrides the pause before uncached items.
func WithTranscribeDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.delay = d
	}
}

// WithOrchestratorLogger sets the logger used by the orchestrator.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithShuffleSeed makes shuffle ordering deterministic for tests.
func WithShuffleSeed(seed int64) OrchestratorOption {
	return func(o *Orchestrator) {
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// NewOrchestrator creates a backfill orchestrator over one or more
// per-source pipelines.
func NewOrchestrator(pipelines []*Pipeline, opts ...OrchestratorOption) (*Orchestrator, error) {
	if len(pipelines) == 0 {
		return nil, ErrNoPipelines
	}

	o := &Orchestrator{
		pipelines: pipelines,
		delay:     defaultTranscribeDelay,
		logger:    slog.Default().With("component", "backfill"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// BuildWorkList constructs the work list per the selection policy and
// arranges it per the ordering policy.
func (o *Orchestrator) BuildWorkList(ctx context.Context, sel Selection, ord Ordering) ([]WorkItem, error) {
	var items []WorkItem
	var err error

	switch {
	case sel.CachedOnly:
		items, err = o.cachedItems()
	case !sel.From.IsZero() && !sel.To.IsZero():
		items, err = o.rangeItems(sel.From, sel.To)
	case sel.LastN > 0:
		items, err = o.lastNItems(sel.LastN)
	default:
		items, err = o.defaultItems(ctx, ord.ShortestFirst)
	}
	if err != nil {
		return nil, err
	}

	if ord.Shuffle {
		o.rng.Shuffle(len(items), func(i, j int) {
			items[i], items[j] = items[j], items[i]
		})
	}
	if ord.ShortestFirst {
		o.sortByAudioSize(ctx, items)
	}
	return items, nil
}

// Run builds and executes the work list. A single item's failure is
// recorded and never aborts the remaining items; the report always carries
// the identities of successes and failures.
func (o *Orchestrator) Run(ctx context.Context, sel Selection, ord Ordering) (*Report, error) {
	items, err := o.BuildWorkList(ctx, sel, ord)
	if err != nil {
		return nil, err
	}

	o.logger.Info("starting backfill", "items", len(items))

	report := &Report{}
	for _, item := range items {
		if !item.Cached {
			o.logger.Debug("pausing before fresh transcription", "item", item.Identity(), "delay", o.delay)
			if err := sleepCtx(ctx, o.delay); err != nil {
				return report, err
			}
		}

		n, err := item.Pipeline.Embed(ctx, item.Date, false)
		switch {
		case errors.Is(err, ErrEmptyTranscript):
			o.logger.Warn("meeting has empty transcript, skipping", "item", item.Identity())
			report.Skipped = append(report.Skipped, item.Identity())
		case err != nil:
			o.logger.Error("backfill item failed", "item", item.Identity(), "err", err)
			report.Failures = append(report.Failures, Failure{Identity: item.Identity(), Err: err})
		default:
			o.logger.Info("backfill item indexed", "item", item.Identity(), "paragraphs", n)
			report.Succeeded = append(report.Succeeded, item.Identity())
		}
	}

	o.logger.Info("backfill complete",
		"succeeded", len(report.Succeeded), "skipped", len(report.Skipped), "failed", len(report.Failures))
	return report, nil
}

// cachedItems lists every on-disk transcript across all sources.
func (o *Orchestrator) cachedItems() ([]WorkItem, error) {
	var items []WorkItem
	for _, p := range o.pipelines {
		dates, err := p.CachedDates()
		if err != nil {
			return nil, err
		}
		for _, date := range dates {
			items = append(items, WorkItem{Pipeline: p, Date: date, Cached: true})
		}
	}
	return items, nil
}

// rangeItems lists every feed date within [from, to] across all sources.
// Sources whose feeds are unavailable are skipped with a warning so a
// partially broken archive still backfills.
func (o *Orchestrator) rangeItems(from, to time.Time) ([]WorkItem, error) {
	from, to = core.Day(from), core.Day(to)
	var items []WorkItem
	for _, p := range o.pipelines {
		dates, err := p.Resolver().AllMeetingDates()
		if err != nil {
			o.logger.Warn("skipping source with unavailable feed",
				"source", p.Source().Name(), "err", err)
			continue
		}
		for _, date := range dates {
			day := core.Day(date)
			if day.Before(from) || day.After(to) {
				continue
			}
			items = append(items, WorkItem{Pipeline: p, Date: day, Cached: p.HasCachedTranscript(day)})
		}
	}
	return items, nil
}

// lastNItems lists the n most recent feed dates per source.
func (o *Orchestrator) lastNItems(n int) ([]WorkItem, error) {
	var items []WorkItem
	for _, p := range o.pipelines {
		dates, err := p.Resolver().AllMeetingDates()
		if err != nil {
			o.logger.Warn("skipping source with unavailable feed",
				"source", p.Source().Name(), "err", err)
			continue
		}
		// Feed order is most recent first
		if len(dates) > n {
			dates = dates[:n]
		}
		for _, date := range dates {
			day := core.Day(date)
			items = append(items, WorkItem{Pipeline: p, Date: day, Cached: p.HasCachedTranscript(day)})
		}
	}
	return items, nil
}

// defaultItems lists one meeting per source: the most recent, or the one
// with the smallest audio when shortest-first is requested and nothing for
// the source is cached yet.
func (o *Orchestrator) defaultItems(ctx context.Context, shortestFirst bool) ([]WorkItem, error) {
	var items []WorkItem
	for _, p := range o.pipelines {
		cached, err := p.CachedDates()
		if err != nil {
			return nil, err
		}

		var day time.Time
		if shortestFirst && len(cached) == 0 {
			day, err = o.smallestAudioDate(ctx, p)
		} else {
			day, err = p.Resolver().LastMeetingDate()
			day = core.Day(day)
		}
		if err != nil {
			o.logger.Warn("skipping source with unavailable feed",
				"source", p.Source().Name(), "err", err)
			continue
		}
		items = append(items, WorkItem{Pipeline: p, Date: day, Cached: p.HasCachedTranscript(day)})
	}
	return items, nil
}

// smallestAudioDate picks the feed date with the smallest audio download.
func (o *Orchestrator) smallestAudioDate(ctx context.Context, p *Pipeline) (time.Time, error) {
	dates, err := p.Resolver().AllMeetingDates()
	if err != nil {
		return time.Time{}, err
	}
	if len(dates) == 0 {
		return time.Time{}, ErrNoPipelines
	}

	best := core.Day(dates[0])
	bestSize := int64(math.MaxInt64)
	for _, date := range dates {
		day := core.Day(date)
		size := o.audioSize(ctx, p, day)
		if size < bestSize {
			best, bestSize = day, size
		}
	}
	return best, nil
}

// sortByAudioSize stably sorts items by audio Content-Length ascending.
// Items whose size cannot be determined sort last, keeping their order.
func (o *Orchestrator) sortByAudioSize(ctx context.Context, items []WorkItem) {
	sizes := make(map[string]int64, len(items))
	for _, item := range items {
		sizes[item.Identity()] = o.audioSize(ctx, item.Pipeline, item.Date)
	}
	slices.SortStableFunc(items, func(a, b WorkItem) int {
		sa, sb := sizes[a.Identity()], sizes[b.Identity()]
		if sa < sb {
			return -1
		}
		if sa > sb {
			return 1
		}
		return 0
	})
}

// audioSize looks up the audio Content-Length for one meeting, returning
// MaxInt64 when it cannot be determined.
func (o *Orchestrator) audioSize(ctx context.Context, p *Pipeline, date time.Time) int64 {
	url, err := p.Resolver().ResolveAudioURL(date)
	if err != nil {
		return math.MaxInt64
	}
	size, err := p.downloader.Size(ctx, url)
	if err != nil {
		o.logger.Debug("could not determine audio size",
			"source", p.Source().Name(), "date", core.FormatDate(date), "err", err)
		return math.MaxInt64
	}
	return size
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
