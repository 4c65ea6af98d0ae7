// Copyright 2025 Poiesic Systems
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/recollect"
	"github.com/poiesic/recollect/ai"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingest"
	"github.com/poiesic/recollect/loader"
	"github.com/poiesic/recollect/queue"
	"github.com/urfave/cli/v2"
)

// Files larger than this are ingested through the background queue.
const defaultAsyncThreshold = 1 << 20 // 1 MiB

func main() {
	app := &cli.App{
		Name:  "recollect",
		Usage: "Document memory: ingest files, then converse over them",
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
				Name:      "ingest",
				Usage:     "Ingest a document into a user's memory",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Character budget per text chunk",
						Value: loader.DefaultChunkSize,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Character overlap between adjacent chunks",
						Value: loader.DefaultChunkOverlap,
					},
					&cli.IntFlag{
						Name:  "rows-per-chunk",
						Usage: "Spreadsheet rows per chunk",
						Value: loader.DefaultRowsPerChunk,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent chunk writes",
						Value: ingest.DefaultWorkers,
					},
					&cli.Int64Flag{
						Name:  "async-threshold",
						Usage: "Files larger than this many bytes are ingested in the background",
						Value: defaultAsyncThreshold,
					},
				),
			},
			{
				Name:      "chat",
				Usage:     "Ask a question grounded in a user's ingested documents",
				ArgsUsage: "<question>",
				Action:    chatCommand,
				Flags:     commonFlags(),
			},
			{
				Name:   "formats",
				Usage:  "List supported document formats",
				Action: formatsCommand,
			},
			{
				Name:   "documents",
				Usage:  "List a user's ingested documents",
				Action: documentsCommand,
				Flags:  commonFlags(),
			},
			{
				Name:      "delete",
				Usage:     "Remove an ingested document from a user's memory",
				ArgsUsage: "<filename>",
				Action:    deleteCommand,
				Flags:     commonFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "user",
			Aliases:  []string{"u"},
			Usage:    "User identifier owning the memory space",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "username",
			Usage: "Display name recorded on ingested content",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name",
			Value: "llama3.2:1b",
		},
	}
}

func openInstance(c *cli.Context, opts ...recollect.Option) (*recollect.Recollect, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
	)
	opts = append([]recollect.Option{recollect.WithAIConfig(aiConfig)}, opts...)
	return recollect.Open(c.String("db"), opts...)
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file argument is required")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	filename := filepath.Base(path)

	r, err := openInstance(c, recollect.WithIngestWorkers(c.Int("workers")))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer r.Close()

	owner := core.Principal{
		ID:       c.String("user"),
		Username: c.String("username"),
	}
	loadOpts := []loader.LoadOption{
		loader.WithChunkSize(c.Int("chunk-size")),
		loader.WithChunkOverlap(c.Int("chunk-overlap")),
		loader.WithRowsPerChunk(c.Int("rows-per-chunk")),
	}

	run := func(ctx context.Context) (any, error) {
		return r.IngestFile(ctx, content, filename, c.String("user"), owner, loadOpts...), nil
	}

	var outcome *ingest.Outcome
	if int64(len(content)) > c.Int64("async-threshold") {
		outcome, err = runQueued(filename, len(content), run)
		if err != nil {
			return err
		}
	} else {
		result, _ := run(ctx)
		outcome = result.(*ingest.Outcome)
	}

	return reportOutcome(outcome)
}

// runQueued pushes the ingestion through the background queue and polls
// until it settles, mirroring how a service front-end would consume it.
func runQueued(filename string, size int, run queue.JobFunc) (*ingest.Outcome, error) {
	q, err := queue.New()
	if err != nil {
		return nil, err
	}
	defer q.Release()

	id, err := q.Submit(run)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Queued %s (%d bytes) as job %d\n", filename, size, id)

	for {
		info, err := q.Poll(id)
		if err != nil {
			return nil, err
		}
		switch info.Status {
		case queue.StatusFinished:
			return info.Result.(*ingest.Outcome), nil
		case queue.StatusFailed:
			return nil, fmt.Errorf("ingestion job failed: %w", info.Err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func reportOutcome(outcome *ingest.Outcome) error {
	fmt.Printf("Status:   %s\n", outcome.Status)
	fmt.Printf("File:     %s\n", outcome.Filename)
	fmt.Printf("Chunks:   %d total, %d ingested, %d failed\n",
		outcome.ChunksTotal, outcome.Ingested, outcome.Failed)
	for _, chunkErr := range outcome.Errors {
		fmt.Printf("  page %s: %s\n", chunkErr.Page, chunkErr.Reason)
	}
	if outcome.Status == ingest.StatusError {
		if outcome.Reason != "" {
			return fmt.Errorf("ingestion failed: %s", outcome.Reason)
		}
		return fmt.Errorf("ingestion failed")
	}
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question argument is required")
	}

	r, err := openInstance(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer r.Close()

	_, err = r.AskStream(ctx, question, c.String("user"),
		func(ctx context.Context, fragment []byte) error {
			_, writeErr := os.Stdout.Write(fragment)
			return writeErr
		})
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	fmt.Println()
	return nil
}

func formatsCommand(c *cli.Context) error {
	for _, ext := range loader.NewDefaultRegistry().SupportedExtensions() {
		fmt.Println(ext)
	}
	return nil
}

func documentsCommand(c *cli.Context) error {
	r, err := openInstance(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer r.Close()

	docs, err := r.Documents(context.Background(), c.String("user"))
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents.")
		return nil
	}
	for _, doc := range docs {
		fmt.Printf("%s\t%s\t%d chunks\n", doc.Filename, doc.DocumentType, doc.Chunks)
	}
	return nil
}

func deleteCommand(c *cli.Context) error {
	filename := c.Args().First()
	if filename == "" {
		return fmt.Errorf("filename argument is required")
	}

	r, err := openInstance(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer r.Close()

	deleted, err := r.DeleteDocument(context.Background(), c.String("user"), filename)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d chunks of %s\n", deleted, filename)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
