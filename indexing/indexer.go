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

package indexing

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/versefinder/ai"
	"github.com/poiesic/versefinder/bible"
	"github.com/poiesic/versefinder/core"
	"github.com/poiesic/versefinder/storage"
)

const defaultBatchSize = 100

// Indexer builds the vector index for a verse corpus: embedding texts are
// batch-embedded across a worker pool, assembled into records, and written
// with a single bulk upsert so a failed build never leaves a half-populated
// index behind.
type Indexer struct {
	store    storage.VectorStore
	corpus   *bible.Corpus
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger

	batchSize int
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		if ix.pool != nil {
			ix.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		ix.pool = pool
		return nil
	}
}

// WithBatchSize sets how many verses are embedded per request.
// Default is 100.
func WithBatchSize(size int) Option {
	return func(ix *Indexer) error {
		if size < 1 {
			size = 1
		}
		ix.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates an indexer over the given store and corpus.
func NewIndexer(
	store storage.VectorStore,
	corpus *bible.Corpus,
	provider ai.AIProvider,
	opts ...Option,
) (*Indexer, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	ix := &Indexer{
		store:     store,
		corpus:    corpus,
		embedder:  provider.Embedder(),
		pool:      pool,
		logger:    slog.Default(),
		batchSize: defaultBatchSize,
	}

	for _, opt := range opts {
		if optErr := opt(ix); optErr != nil {
			ix.Release()
			return nil, optErr
		}
	}

	return ix, nil
}

// Build embeds every corpus verse and populates the store. Records use
// content-derived IDs, so rebuilding over the same corpus is idempotent.
// Any embedding failure aborts the build before anything is written.
func (ix *Indexer) Build(ctx context.Context) (int, error) {
	verses := ix.corpus.Verses()
	if len(verses) == 0 {
		return 0, ErrEmptyCorpus
	}

	start := time.Now()

	texts := make([]string, len(verses))
	for i, verse := range verses {
		texts[i] = verse.EmbeddingText()
	}

	vectors, err := ix.embedBatches(ctx, texts)
	if err != nil {
		return 0, err
	}

	records := make([]*core.VectorRecord, len(verses))
	for i, verse := range verses {
		records[i] = &core.VectorRecord{
			Id:   core.IDFromContent(texts[i]),
			Text: texts[i],
			Meta: core.Metadata{
				Version:   verse.Version,
				Reference: verse.Reference(),
			},
			Vector: vectors[i],
		}
	}

	if err := ix.store.BulkUpsert(ctx, records); err != nil {
		return 0, err
	}

	ix.logger.Info("index build complete",
		"verses", len(records), "elapsed", time.Since(start).Round(time.Millisecond))
	return len(records), nil
}

// Reindex re-embeds the full corpus in place, replacing every stored vector.
// Intended for swapping to a different embedding model of the same
// dimensionality; a dimensionality change needs a fresh database instead.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	ix.logger.Info("reindexing corpus", "verses", ix.corpus.Count())
	return ix.Build(ctx)
}

// embedBatches splits texts into fixed-size batches, embeds them across the
// worker pool, and reassembles the vectors in input order. The first batch
// error wins; remaining batches still run but their results are discarded.
func (ix *Indexer) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	batches := (len(texts) + ix.batchSize - 1) / ix.batchSize

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for batch := 0; batch < batches; batch++ {
		lo := batch * ix.batchSize
		hi := min(lo+ix.batchSize, len(texts))
		batchNum := batch + 1

		wg.Add(1)
		submitErr := ix.pool.Submit(func() {
			defer wg.Done()

			mu.Lock()
			failed := firstErr != nil
			mu.Unlock()
			if failed || ctx.Err() != nil {
				return
			}

			embedded, err := ix.embedder.EmbedTexts(ctx, texts[lo:hi])
			if err == nil && len(embedded) != hi-lo {
				err = ErrEmbeddingMismatch
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				ix.logger.Error("embedding batch failed", "batch", batchNum, "err", err)
				return
			}

			copy(vectors[lo:hi], embedded)
			ix.logger.Info("embedded batch",
				"batch", batchNum, "of", batches, "verses", hi-lo)
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Release releases the worker pool.
// The indexer should not be used after calling Release.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}
