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


package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/civicsignal/civicsignal"
	"github.com/civicsignal/civicsignal/ai"
	"github.com/civicsignal/civicsignal/ai/openai"
	"github.com/civicsignal/civicsignal/archive"
	"github.com/civicsignal/civicsignal/core"
	"github.com/civicsignal/civicsignal/ingestion"
	"github.com/civicsignal/civicsignal/reembed"
	"github.com/civicsignal/civicsignal/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "civicsignal",
		Usage: "Get signal out of San Francisco's civics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "embed",
				Usage:  "Download, transcribe and index one archived meeting",
				Action: embedCommand,
				Flags: append(archiveFlags(),
					&cli.StringFlag{
						Name:     "group",
						Aliases:  []string{"g"},
						Usage:    "Government group to embed, e.g. BOARD_OF_SUPERVISORS",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:    "date",
						Aliases: []string{"d"},
						Usage:   "Meeting date (YYYY-MM-DD), defaults to the latest meeting",
						Layout:  "2006-01-02",
					},
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Re-transcribe and re-index even when cached",
					},
				),
			},
			{
				Name:   "backfill",
				Usage:  "Index many meetings across sources with failure isolation",
				Action: backfillCommand,
				Flags: append(archiveFlags(),
					&cli.StringSliceFlag{
						Name:    "group",
						Aliases: []string{"g"},
						Usage:   "Sources to backfill (repeatable); defaults to all known sources",
					},
					&cli.BoolFlag{
						Name:  "cached-only",
						Usage: "Only index meetings whose transcripts are already cached",
					},
					&cli.TimestampFlag{
						Name:   "from",
						Usage:  "Start of the date range (YYYY-MM-DD, inclusive)",
						Layout: "2006-01-02",
					},
					&cli.TimestampFlag{
						Name:   "to",
						Usage:  "End of the date range (YYYY-MM-DD, inclusive)",
						Layout: "2006-01-02",
					},
					&cli.IntFlag{
						Name:  "last",
						Usage: "Index the last N meetings per source",
					},
					&cli.BoolFlag{
						Name:  "shuffle",
						Usage: "Shuffle the work list across sources",
					},
					&cli.BoolFlag{
						Name:  "shortest-first",
						Usage: "Order the work list by audio size, smallest first",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Usage: "Pause before each uncached transcription",
						Value: 15 * time.Second,
					},
				),
			},
			{
				Name:   "search",
				Usage:  "Search indexed meetings for a topic",
				Action: searchCommand,
				Flags: append(archiveFlags(),
					&cli.StringFlag{
						Name:     "topic",
						Aliases:  []string{"t"},
						Usage:    "Topic to search for",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "num-results",
						Aliases: []string{"n"},
						Usage:   "Number of results to return",
						Value:   10,
					},
				),
			},
			{
				Name:   "chat",
				Usage:  "Chat with the archive (interactive unless --query is given)",
				Action: chatCommand,
				Flags: append(archiveFlags(),
					&cli.StringFlag{
						Name:  "query",
						Usage: "Single question to answer (non-interactive mode)",
					},
					&cli.StringFlag{
						Name:  "chat-api-key",
						Usage: "Chat service API key (defaults to CEREBRAS_API_KEY)",
					},
				),
			},
			{
				Name:   "list-groups",
				Usage:  "List the known government groups",
				Action: listGroupsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "group",
						Aliases: []string{"g"},
						Usage:   "Show details for one group instead of listing all",
					},
				},
			},
			{
				Name:   "list-meetings",
				Usage:  "List recent meeting dates for a group",
				Action: listMeetingsCommand,
				Flags: append(archiveFlags(),
					&cli.StringFlag{
						Name:     "group",
						Aliases:  []string{"g"},
						Usage:    "Government group to check",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of recent meeting dates to show",
						Value:   10,
					},
					&cli.BoolFlag{
						Name:  "indexed",
						Usage: "List dates already in the local index instead of the feed",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed every indexed document with a new embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Usage:   "Path to the CivicSignal data directory",
						Value:   "civicsignal_data",
						EnvVars: []string{"CIVICSIGNAL_DATA"},
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// archiveFlags are shared by every command that opens the data directory.
func archiveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Usage:   "Path to the CivicSignal data directory",
			Value:   "civicsignal_data",
			EnvVars: []string{"CIVICSIGNAL_DATA"},
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
	}
}

func openArchive(c *cli.Context, extra ...civicsignal.ArchiveOption) (*civicsignal.Archive, error) {
	var configOpts []ai.ConfigOption
	if host := c.String("embedding-host"); host != "" {
		configOpts = append(configOpts, ai.WithEmbeddingHost(host))
	}
	if model := c.String("embedding-model"); model != "" {
		configOpts = append(configOpts, ai.WithEmbeddingModel(model))
	}
	if key := c.String("chat-api-key"); key != "" {
		configOpts = append(configOpts, ai.WithChatAPIKey(key))
	}

	opts := []civicsignal.ArchiveOption{
		civicsignal.WithAIConfig(ai.NewConfig(configOpts...)),
	}
	opts = append(opts, extra...)

	return civicsignal.NewArchive(c.String("data"), opts...)
}

func resolveGroup(name string) (archive.Source, error) {
	source, ok := archive.FromString(name)
	if !ok {
		return archive.Source{}, fmt.Errorf("unknown group %q: run 'civicsignal list-groups' for the available groups", name)
	}
	return source, nil
}

func embedCommand(c *cli.Context) error {
	ctx := context.Background()

	source, err := resolveGroup(c.String("group"))
	if err != nil {
		return err
	}

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	pipeline, err := a.Pipeline(ctx, source)
	if err != nil {
		return err
	}

	force := c.Bool("force")
	var date time.Time
	var count int
	if ts := c.Timestamp("date"); ts != nil && !ts.IsZero() {
		date = core.Day(*ts)
		fmt.Fprintf(os.Stderr, "Embedding meeting for %s on %s\n", source.Name(), core.FormatDate(date))
		count, err = pipeline.Embed(ctx, date, force)
	} else {
		fmt.Fprintf(os.Stderr, "Embedding latest meeting for %s\n", source.Name())
		date, count, err = pipeline.EmbedLatest(ctx, force)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Embedded %d paragraphs for %s on %s\n", count, source.Name(), core.FormatDate(date))
	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	var sources []archive.Source
	if names := c.StringSlice("group"); len(names) > 0 {
		for _, name := range names {
			source, err := resolveGroup(name)
			if err != nil {
				return err
			}
			sources = append(sources, source)
		}
	} else {
		sources = archive.All()
	}

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	orchestrator, err := a.NewOrchestrator(ctx, sources,
		ingestion.WithTranscribeDelay(c.Duration("delay")))
	if err != nil {
		return err
	}

	selection := ingestion.Selection{
		CachedOnly: c.Bool("cached-only"),
		LastN:      c.Int("last"),
	}
	if ts := c.Timestamp("from"); ts != nil && !ts.IsZero() {
		selection.From = core.Day(*ts)
	}
	if ts := c.Timestamp("to"); ts != nil && !ts.IsZero() {
		selection.To = core.Day(*ts)
	}
	ordering := ingestion.Ordering{
		Shuffle:       c.Bool("shuffle"),
		ShortestFirst: c.Bool("shortest-first"),
	}

	report, err := orchestrator.Run(ctx, selection, ordering)
	if err != nil {
		return err
	}

	fmt.Printf("Backfill complete: %d succeeded, %d skipped, %d failed\n",
		len(report.Succeeded), len(report.Skipped), len(report.Failures))
	for _, identity := range report.Succeeded {
		fmt.Printf("  ok      %s\n", identity)
	}
	for _, identity := range report.Skipped {
		fmt.Printf("  skipped %s\n", identity)
	}
	for _, failure := range report.Failures {
		fmt.Printf("  failed  %s: %v\n", failure.Identity, failure.Err)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d of %d meetings failed", len(report.Failures),
			len(report.Succeeded)+len(report.Skipped)+len(report.Failures))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	topic := c.String("topic")
	hits, err := a.Search(ctx, topic, c.Int("num-results"))
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println("No results found for this topic.")
		return nil
	}

	fmt.Printf("Found %d relevant discussions:\n\n", len(hits))
	for i, hit := range hits {
		meta := hit.Document.Metadata
		text := hit.Document.Text
		if r := []rune(text); len(r) > 200 {
			text = string(r[:200]) + "..."
		}
		fmt.Printf("%d. Relevance Score: %.3f\n", i+1, 1-hit.Distance)
		fmt.Printf("   Meeting: %s on %s\n", meta.MeetingGroup, meta.MeetingDate)
		fmt.Printf("   Speaker: %s\n", meta.SpeakerID)
		fmt.Printf("   Time: %.1fs - %.1fs\n", meta.StartTime, meta.EndTime)
		fmt.Printf("   Text: %s\n\n", text)
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	a, err := openArchive(c)
	if err != nil {
		return err
	}
	defer a.Close()

	service, err := a.NewChat()
	if err != nil {
		return err
	}

	session := fmt.Sprintf("cli-%d", time.Now().Unix())

	if query := c.String("query"); query != "" {
		answer, err := service.Ask(ctx, session, query)
		if err != nil {
			return err
		}
		fmt.Printf("Query: %s\n", query)
		fmt.Printf("Response: %s\n", answer.Text)
		if answer.VideoURL != "" {
			fmt.Printf("Video: %s\n", answer.VideoURL)
		}
		return nil
	}

	fmt.Println("Welcome to CivicSignal Chat!")
	fmt.Println("I can help you explore civic meetings and government discussions in San Francisco.")
	fmt.Println("Type 'quit', 'exit', or 'bye' to end the session.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Citizen: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "bye", "q":
			fmt.Println("Thanks for using CivicSignal Chat! Goodbye!")
			return nil
		}

		answer, err := service.Ask(ctx, session, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Printf("CivicSignal: %s\n", answer.Text)
		if answer.VideoURL != "" {
			fmt.Printf("Video: %s\n", answer.VideoURL)
		}
		fmt.Println()
	}
}

func listGroupsCommand(c *cli.Context) error {
	if name := c.String("group"); name != "" {
		source, err := resolveGroup(name)
		if err != nil {
			return err
		}
		fmt.Printf("Group: %s\n", source.Name())
		fmt.Printf("ID: %s\n", source.ID())
		fmt.Printf("URL: %s\n", source.URL())
		return nil
	}

	sources := archive.All()
	fmt.Println("Available San Francisco Government Groups:")
	fmt.Println()
	for _, source := range sources {
		fmt.Printf("  %s\n", source.Name())
	}
	fmt.Printf("\nTotal: %d groups\n", len(sources))
	return nil
}

func listMeetingsCommand(c *cli.Context) error {
	ctx := context.Background()

	source, err := resolveGroup(c.String("group"))
	if err != nil {
		return err
	}

	var dates []time.Time
	heading := "Recent meeting dates"
	if c.Bool("indexed") {
		a, err := openArchive(c)
		if err != nil {
			return err
		}
		defer a.Close()

		dates, err = a.IndexedDates(ctx, source)
		if err != nil {
			return err
		}
		heading = "Indexed meeting dates"
	} else {
		resolver, err := archive.NewResolver(ctx, source)
		if err != nil {
			return err
		}
		dates, err = resolver.AllMeetingDates()
		if err != nil {
			return err
		}
	}

	if len(dates) == 0 {
		fmt.Println("No meeting dates found.")
		return nil
	}

	// Most recent first.
	slices.SortFunc(dates, func(a, b time.Time) int { return b.Compare(a) })
	limit := c.Int("limit")
	if limit > len(dates) {
		limit = len(dates)
	}
	fmt.Printf("%s for %s:\n\n", heading, source.Name())
	for i, date := range dates[:limit] {
		fmt.Printf("%d. %s (%s)\n", i+1, core.FormatDate(date), date.Weekday())
	}
	fmt.Printf("\nTotal meetings found: %d\n", len(dates))
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	dataDir := c.String("data")
	backend, err := badger.OpenBackend(dataDir+"/db", false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	docs := badger.NewDocumentRepository(backend)

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reembedConfig := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reembedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reembedder := reembed.NewReembedder(docs, embedder, reembedConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Data directory: %s\n", dataDir)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
