// Package indexing builds the vector index from a loaded verse corpus.
//
// The Indexer batch-embeds verse texts across a worker pool and writes the
// resulting records with a single bulk upsert, so the index is either fully
// built or untouched. Record IDs derive from verse content, which makes
// rebuilding over the same corpus idempotent.
package indexing
