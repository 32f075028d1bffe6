package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/civicsignal/civicsignal/archive"
)

func TestResolveGroup(t *testing.T) {
	t.Run("known group", func(t *testing.T) {
		source, err := resolveGroup("BOARD_OF_SUPERVISORS")
		require.NoError(t, err)
		assert.Equal(t, "BOARD_OF_SUPERVISORS", source.Name())
		assert.Equal(t, "10", source.ID())
	})

	t.Run("lookup is case-insensitive and accepts dashes", func(t *testing.T) {
		source, err := resolveGroup("board-of-supervisors")
		require.NoError(t, err)
		assert.Equal(t, "BOARD_OF_SUPERVISORS", source.Name())
	})

	t.Run("unknown group fails with a hint", func(t *testing.T) {
		_, err := resolveGroup("SECRET_COUNCIL")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list-groups")
	})
}

func TestEmbedCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "civicsignal",
		Commands: []*cli.Command{
			{
				Name:   "embed",
				Action: func(c *cli.Context) error { return nil },
				Flags: append(archiveFlags(),
					&cli.StringFlag{
						Name:     "group",
						Aliases:  []string{"g"},
						Required: true,
					},
				),
			},
		},
	}

	t.Run("group is required", func(t *testing.T) {
		err := app.Run([]string{"civicsignal", "embed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "group")
	})

	t.Run("data has default value", func(t *testing.T) {
		var dataFlag *cli.StringFlag
		for _, flag := range archiveFlags() {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "data" {
				dataFlag = f
				break
			}
		}
		require.NotNil(t, dataFlag)
		assert.Equal(t, "civicsignal_data", dataFlag.Value)
		assert.Equal(t, []string{"CIVICSIGNAL_DATA"}, dataFlag.EnvVars)
	})
}

func TestBackfillSelectionParsing(t *testing.T) {
	// The orchestrator, not the CLI, owns policy precedence; the CLI just
	// has to pass the flags through unmangled.
	var gotFrom, gotTo string
	app := &cli.App{
		Name: "civicsignal",
		Commands: []*cli.Command{
			{
				Name: "backfill",
				Flags: []cli.Flag{
					&cli.TimestampFlag{Name: "from", Layout: "2006-01-02"},
					&cli.TimestampFlag{Name: "to", Layout: "2006-01-02"},
					&cli.BoolFlag{Name: "cached-only"},
				},
				Action: func(c *cli.Context) error {
					gotFrom = c.Timestamp("from").Format("2006-01-02")
					gotTo = c.Timestamp("to").Format("2006-01-02")
					assert.True(t, c.Bool("cached-only"))
					return nil
				},
			},
		},
	}

	err := app.Run([]string{"civicsignal", "backfill",
		"--from", "2024-01-01", "--to", "2024-03-31", "--cached-only"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", gotFrom)
	assert.Equal(t, "2024-03-31", gotTo)
}

func TestListGroupsCommand(t *testing.T) {
	// list-groups needs no data directory or network; run it for real.
	app := &cli.App{
		Name: "civicsignal",
		Commands: []*cli.Command{
			{
				Name:   "list-groups",
				Action: listGroupsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "group", Aliases: []string{"g"}},
				},
			},
		},
	}

	t.Run("lists all groups", func(t *testing.T) {
		err := app.Run([]string{"civicsignal", "list-groups"})
		require.NoError(t, err)
	})

	t.Run("details for one group", func(t *testing.T) {
		err := app.Run([]string{"civicsignal", "list-groups", "-g", "ETHICS_COMMISSION"})
		require.NoError(t, err)
	})

	t.Run("unknown group fails", func(t *testing.T) {
		err := app.Run([]string{"civicsignal", "list-groups", "-g", "NOPE"})
		require.Error(t, err)
	})

	t.Run("every listed group resolves", func(t *testing.T) {
		for _, source := range archive.All() {
			resolved, ok := archive.FromString(source.Name())
			require.True(t, ok, source.Name())
			assert.Equal(t, source.ID(), resolved.ID())
		}
	})
}

func TestListMeetingsIndexed(t *testing.T) {
	// With --indexed the command reads the local index only; no feed is
	// fetched, so it runs against an empty data directory.
	app := &cli.App{
		Name: "civicsignal",
		Commands: []*cli.Command{
			{
				Name:   "list-meetings",
				Action: listMeetingsCommand,
				Flags: append(archiveFlags(),
					&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Required: true},
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10},
					&cli.BoolFlag{Name: "indexed"},
				),
			},
		},
	}

	err := app.Run([]string{"civicsignal", "list-meetings",
		"--data", t.TempDir(), "--indexed", "-g", "BOARD_OF_SUPERVISORS"})
	require.NoError(t, err)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: tc.input},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, tc := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "log-level", Value: "info"},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				assert.Equal(t, "debug", c.String("log-level"))
				return nil
			},
		}

		err := app.Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
