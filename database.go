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


package versefinder

import (
	"context"
	"log/slog"

	"github.com/poiesic/versefinder/ai"
	"github.com/poiesic/versefinder/ai/openai"
	"github.com/poiesic/versefinder/bible"
	"github.com/poiesic/versefinder/indexing"
	"github.com/poiesic/versefinder/search"
	"github.com/poiesic/versefinder/storage"
	"github.com/poiesic/versefinder/storage/badger"
)

// Database bundles the durable vector store with an embedding provider.
// It is the single entry point the CLI and embedding applications use.
type Database struct {
	backend  *badger.Backend
	store    storage.VectorStore
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the embedding endpoint configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies a pre-built provider instead of constructing one
// from configuration.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the store in memory only, discarded on close.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create vector store
	store, err := badger.NewVectorStoreWithBackend(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		store:    store,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close store, then backend
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) VectorStore() storage.VectorStore {
	return db.store
}

func (db *Database) NewIndexer(corpus *bible.Corpus, opts ...indexing.Option) (*indexing.Indexer, error) {
	return indexing.NewIndexer(db.store, corpus, db.provider, opts...)
}

func (db *Database) NewSearcher(ctx context.Context, corpus *bible.Corpus, opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(ctx, db.store, corpus, db.provider, opts...)
}
