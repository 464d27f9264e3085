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
	"strings"

	"github.com/poiesic/agendex"
	"github.com/poiesic/agendex/ai"
	"github.com/poiesic/agendex/ingestion"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "agendex",
		Usage: "Hybrid agenda retrieval over meeting transcripts",
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
				Usage:     "Ingest meeting transcript JSON files",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
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
						Name:  "pool-size",
						Usage: "Worker pool size for concurrent embedding (0 = auto)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunk texts per embedding request",
						Value: 32,
					},
				},
			},
			{
				Name:   "build-index",
				Usage:  "Rebuild the lexical index from the stored chunk corpus",
				Action: buildIndexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Usage:    "Directory for the lexical index artifacts",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search agendas for a query",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "index",
						Aliases: []string{"i"},
						Usage:   "Directory holding the lexical index artifacts",
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
						Name:    "results",
						Aliases: []string{"n"},
						Usage:   "Number of agenda results to return",
						Value:   5,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*agendex.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []agendex.DatabaseOption{agendex.WithAIConfig(aiConfig)}
	if dir := c.String("index"); dir != "" {
		opts = append(opts, agendex.WithIndexDir(dir))
	}

	db, err := agendex.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one meeting file is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var pipelineOpts []ingestion.Option
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(size))
	}
	if size := c.Int("batch-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithEmbeddingBatchSize(size))
	}

	pipeline, err := db.NewIngestionPipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	for _, path := range c.Args().Slice() {
		stats, err := pipeline.IngestFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		fmt.Fprintf(os.Stderr, "%s: %d agendas, %d chunks (%d embedded, %d skipped)\n",
			path, stats.Agendas, stats.Chunks, stats.EmbeddedChunks, stats.SkippedChunks)
	}

	return nil
}

func buildIndexCommand(c *cli.Context) error {
	ctx := context.Background()

	// The embedder is never called here; a placeholder model keeps the
	// config valid without requiring the flag.
	db, err := agendex.NewDatabase(c.String("db"),
		agendex.WithAIConfig(ai.NewConfig(ai.WithEmbeddingModel("unused"))),
		agendex.WithIndexDir(c.String("index")),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.BuildLexicalIndex(ctx); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Lexical index written to %s\n", c.String("index"))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	resp, err := searcher.Search(ctx, query, c.Int("results"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Mode: %s\n", resp.Mode)
	if resp.LexicalErr != nil {
		fmt.Fprintf(os.Stderr, "Lexical path: %v\n", resp.LexicalErr)
	}
	if resp.VectorErr != nil {
		fmt.Fprintf(os.Stderr, "Vector path: %v\n", resp.VectorErr)
	}
	fmt.Fprintln(os.Stderr)

	if len(resp.Results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range resp.Results {
		r := result.Record
		fmt.Printf("%d. [%.4f] %s\n", i+1, result.Similarity, r.Title)
		fmt.Printf("   %s | %s | %s\n", r.AgendaID, r.MeetingTitle, r.MeetingDate)
		fmt.Printf("   main speaker: %s | speakers: %d | chunks: %d | status: %s\n",
			r.MainSpeaker, r.SpeakerCount, r.ChunkCount, r.Status)
		if r.MeetingURL != "" {
			fmt.Printf("   %s\n", r.MeetingURL)
		}
	}
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
