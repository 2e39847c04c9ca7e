package storage

import (
	"context"

	"github.com/poiesic/versefinder/core"
)

// Match is a single vector search hit.
type Match struct {
	Record *core.VectorRecord
	Score  float64 // Cosine similarity to the query vector
}

// VectorStore persists (id, text, metadata, vector) tuples and serves
// repeated nearest-neighbor queries from an in-memory working set.
// Implementations must be thread-safe: query serving is read-only over the
// warmed cache and may run concurrently without mutual exclusion.
type VectorStore interface {
	// Upsert inserts or replaces a record by ID. The write is durable, and
	// the cache is updated when it is already loaded. Returns a wrapped
	// ErrDimensionMismatch when the vector length differs from the rest of
	// the store.
	Upsert(ctx context.Context, record *core.VectorRecord) error

	// BulkUpsert inserts records as a single atomic unit. Either every
	// record becomes visible or none does; a failed or interrupted bulk
	// load leaves the observable store state unchanged.
	BulkUpsert(ctx context.Context, records []*core.VectorRecord) error

	// LoadCache reads the entire durable store into memory once.
	// Subsequent calls are no-ops.
	LoadCache(ctx context.Context) error

	// Search computes cosine similarity between the query vector and every
	// cached record, keeps scores >= minScore, and returns at most
	// maxResults matches ordered by descending score with ties broken by
	// insertion order. Loads the cache first if it is cold. A query vector
	// whose length differs from the stored records fails with a wrapped
	// ErrDimensionMismatch.
	Search(ctx context.Context, queryVector []float32, maxResults int, minScore float64) ([]Match, error)

	// Count returns the number of stored records, from the cache when warm.
	Count(ctx context.Context) (int, error)

	// IsPopulated reports whether the store holds at least one record.
	IsPopulated(ctx context.Context) (bool, error)

	// GetAll returns every committed record in insertion order.
	GetAll(ctx context.Context) ([]*core.VectorRecord, error)

	// Close releases the durable storage handle.
	Close() error
}
