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

	"github.com/joho/godotenv"
	"github.com/poiesic/versefinder"
	"github.com/poiesic/versefinder/ai"
	"github.com/poiesic/versefinder/bible"
	"github.com/poiesic/versefinder/indexing"
	"github.com/poiesic/versefinder/search"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "versefinder",
		Usage: "Two-stage semantic Bible verse search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			_ = godotenv.Load()
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Build the vector index from bible JSON files",
				Action:    indexCommand,
				ArgsUsage: "<corpus.json> [corpus.json ...]",
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of verses to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of concurrent embedding workers",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the indexed corpus",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: append(commonFlags(),
					&cli.StringSliceFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Bible JSON file (repeatable, must match the indexed set)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "min",
						Usage: "Minimum re-ranked score",
						Value: 0.3,
					},
					&cli.StringFlag{
						Name:  "version",
						Usage: "Restrict results to one Bible version (e.g. KRV, ASV)",
					},
				),
			},
			{
				Name:   "stats",
				Usage:  "Show index and corpus statistics",
				Action: statsCommand,
				Flags: append(commonFlags(),
					&cli.StringSliceFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Bible JSON file (repeatable)",
						Required: true,
					},
				),
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
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"EMBEDDING_MODEL"},
		},
	}
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one corpus file is required")
	}
	corpus, err := loadCorpus(c.Args().Slice())
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []indexing.Option{indexing.WithBatchSize(c.Int("batch-size"))}
	if c.Int("pool-size") > 0 {
		opts = append(opts, indexing.WithPoolSize(c.Int("pool-size")))
	}
	indexer, err := db.NewIndexer(corpus, opts...)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer indexer.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintf(os.Stderr, "Verses: %d\n\n", corpus.Count())

	indexed, err := indexer.Build(ctx)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	fmt.Printf("Indexed %d verses\n", indexed)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	corpus, err := loadCorpus(c.StringSlice("corpus"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(ctx, corpus)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	result := searcher.Search(ctx, query,
		search.WithMaxResults(c.Int("max")),
		search.WithMinScore(c.Float64("min")),
		search.WithVersion(c.String("version")))
	if !result.Success {
		return fmt.Errorf("search failed: %s", result.Error)
	}

	fmt.Printf("Found %d hits in %dms (%s", result.TotalResults, result.SearchTimeMs, result.Method)
	if result.ExtractedKeyword != "" {
		fmt.Printf(", keyword %q", result.ExtractedKeyword)
	}
	if result.ContextDescription != "" {
		fmt.Printf(", scope %s", result.ContextDescription)
	}
	fmt.Println(")")

	for i, hit := range result.Results {
		fmt.Printf("%d: [%s] %s", i+1, hit.Version, hit.Reference)
		if hit.Title != "" {
			fmt.Printf(" <%s>", hit.Title)
		}
		fmt.Printf(" %s [%0.3f]\n", hit.Text, hit.RerankedScore)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	corpus, err := loadCorpus(c.StringSlice("corpus"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	indexed, err := db.VectorStore().Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count indexed vectors: %w", err)
	}

	stats := corpus.Statistics()
	fmt.Printf("Indexed vectors: %d\n", indexed)
	fmt.Printf("Corpus verses:   %d\n", stats.TotalVerses)
	for version, count := range stats.ByVersion {
		fmt.Printf("  %s: %d\n", version, count)
	}
	return nil
}

func openDatabase(c *cli.Context) (*versefinder.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := versefinder.NewDatabase(c.String("db"), versefinder.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// loadCorpus reads each bible JSON file into one corpus. Files without an
// embedded version field fall back to the filename stem, uppercased.
func loadCorpus(paths []string) (*bible.Corpus, error) {
	corpus := bible.NewCorpus()
	for _, path := range paths {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := corpus.LoadFile(path, strings.ToUpper(stem)); err != nil {
			return nil, fmt.Errorf("failed to load corpus %s: %w", path, err)
		}
	}
	return corpus, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
