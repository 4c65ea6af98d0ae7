package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/recollect/ingest"
)

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	newApp := func() *cli.App {
		return &cli.App{
			Name: "recollect",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			err := newApp().Run([]string{"recollect", "--log-level", level})
			assert.NoError(t, err, "level %q", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := newApp().Run([]string{"recollect", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestCommonFlagDefaults(t *testing.T) {
	flags := commonFlags()

	byName := make(map[string]*cli.StringFlag)
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok {
			byName[f.Name] = f
		}
	}

	require.Contains(t, byName, "db")
	assert.True(t, byName["db"].Required)
	require.Contains(t, byName, "user")
	assert.True(t, byName["user"].Required)
	assert.Equal(t, "http://localhost:11434/v1", byName["host"].Value)
	assert.NotEmpty(t, byName["embedding-model"].Value)
	assert.NotEmpty(t, byName["chat-model"].Value)
}

func TestReportOutcome(t *testing.T) {
	err := reportOutcome(&ingest.Outcome{
		Status:      ingest.StatusSuccess,
		Filename:    "a.pdf",
		ChunksTotal: 3,
		Ingested:    3,
	})
	assert.NoError(t, err)

	err = reportOutcome(&ingest.Outcome{
		Status:   ingest.StatusPartial,
		Filename: "a.pdf",
		Errors:   []ingest.ChunkError{{Page: "2", Reason: "store write failed"}},
	})
	assert.NoError(t, err)

	err = reportOutcome(&ingest.Outcome{
		Status: ingest.StatusError,
		Reason: "invalid pdf",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pdf")
}
