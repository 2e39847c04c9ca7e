package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/versefinder/core"
	"github.com/poiesic/versefinder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, vector []float32) *core.VectorRecord {
	return &core.VectorRecord{
		Id:   id,
		Text: "text for " + id,
		Meta: core.Metadata{
			Version:   "ASV",
			Reference: "Genesis 1:1",
		},
		Vector: vector,
	}
}

func TestVectorStoreEmpty(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	populated, err := store.IsPopulated(ctx)
	require.NoError(t, err)
	assert.False(t, populated)

	matches, err := store.Search(ctx, []float32{1, 0, 0}, 5, 0.0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestVectorStoreUpsertAndSearch(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", []float32{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, testRecord("b", []float32{0.9, 0.1, 0})))
	require.NoError(t, store.Upsert(ctx, testRecord("c", []float32{0, 1, 0})))

	matches, err := store.Search(ctx, []float32{1, 0, 0}, 10, 0.5)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// Descending by similarity; the orthogonal record falls below the floor.
	assert.Equal(t, "a", matches[0].Record.Id)
	assert.Equal(t, "b", matches[1].Record.Id)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	// maxResults truncates after ordering.
	matches, err = store.Search(ctx, []float32{1, 0, 0}, 1, 0.0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a", matches[0].Record.Id)
}

func TestVectorStoreSearchInvalidMaxResults(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	_, err = store.Search(context.Background(), []float32{1, 0}, 0, 0.0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestVectorStoreUpsertIdempotent(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()
	record := testRecord("a", []float32{1, 0, 0})

	require.NoError(t, store.Upsert(ctx, record))
	require.NoError(t, store.Upsert(ctx, record))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorStoreUpsertReplaces(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", []float32{1, 0, 0})))

	updated := testRecord("a", []float32{0, 1, 0})
	updated.Text = "replacement text"
	require.NoError(t, store.Upsert(ctx, updated))

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "replacement text", records[0].Text)
	assert.Equal(t, []float32{0, 1, 0}, records[0].Vector)
}

func TestVectorStoreDimensionMismatch(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", []float32{1, 0, 0})))

	err = store.Upsert(ctx, testRecord("b", []float32{1, 0, 0, 0}))
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	err = store.BulkUpsert(ctx, []*core.VectorRecord{
		testRecord("c", []float32{1, 0, 0}),
		testRecord("d", []float32{1, 0}),
	})
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	// A failed batch leaves nothing behind.
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVectorStoreBulkUpsert(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	// More records than one write chunk holds.
	var records []*core.VectorRecord
	for i := 0; i < 1200; i++ {
		records = append(records, testRecord(
			fmt.Sprintf("rec-%04d", i),
			[]float32{float32(i), 1, 0},
		))
	}

	require.NoError(t, store.BulkUpsert(ctx, records))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1200, count)

	populated, err := store.IsPopulated(ctx)
	require.NoError(t, err)
	assert.True(t, populated)

	// Insertion order is preserved.
	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1200)
	assert.Equal(t, "rec-0000", all[0].Id)
	assert.Equal(t, "rec-1199", all[1199].Id)
}

func TestVectorStoreBulkUpsertReplacesExisting(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", []float32{1, 0, 0})))

	updated := testRecord("a", []float32{0, 1, 0})
	require.NoError(t, store.BulkUpsert(ctx, []*core.VectorRecord{
		updated,
		testRecord("b", []float32{0, 0, 1}),
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Id)
	assert.Equal(t, []float32{0, 1, 0}, all[0].Vector)
}

func TestVectorStoreBulkUpsertEmpty(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	require.NoError(t, store.BulkUpsert(context.Background(), nil))
}

func TestVectorStorePersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	vector := []float32{0.123456789, -0.987654321, 3.14159265}

	store, err := NewVectorStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, testRecord("a", vector)))
	require.NoError(t, store.Close())

	reopened, err := NewVectorStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.LoadCache(ctx))

	all, err := reopened.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].Id)
	// Vectors survive the round trip bit for bit.
	assert.Equal(t, vector, all[0].Vector)
}

func TestVectorStoreLoadCacheIdempotent(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", []float32{1, 0})))
	require.NoError(t, store.LoadCache(ctx))
	require.NoError(t, store.LoadCache(ctx))

	// Writes after warmup stay visible to searches.
	require.NoError(t, store.Upsert(ctx, testRecord("b", []float32{0, 1})))

	matches, err := store.Search(ctx, []float32{0, 1}, 5, 0.9)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b", matches[0].Record.Id)
}

func TestVectorStoreClosed(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, backend.Close())

	ctx := context.Background()

	assert.ErrorIs(t, store.Upsert(ctx, testRecord("a", []float32{1})), storage.ErrStorageClosed)
	_, err = store.Search(ctx, []float32{1}, 5, 0.0)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.Count(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestVectorStoreSearchQueryDimensionMismatch(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", []float32{1, 0, 0})))

	_, err = store.Search(ctx, []float32{1, 0, 0, 0}, 5, 0.0)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	// Matching dimensionality still works.
	matches, err := store.Search(ctx, []float32{1, 0, 0}, 5, 0.0)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

// Reproduces the durable state between a bulk-upsert chunk commit and the
// batch commit marker: a replaced record slot re-tagged with the batch ID,
// its shadow set, a fresh insert of the same batch, and no commit marker.
// Readers must see the pre-batch state: the old value of the replaced
// record, and no trace of the fresh insert.
func TestVectorStoreBulkUpsertInFlightVisibility(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer backend.Close()
	defer store.Close()

	ctx := context.Background()
	const batchID = 7

	oldRecord := testRecord("a", []float32{1, 0, 0})
	require.NoError(t, store.Upsert(ctx, oldRecord))

	var seq uint64
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIDKey("a"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			seq = decodeSeq(val)
			return nil
		})
	}, false))

	newRecord := testRecord("a", []float32{0, 1, 0})
	newRecord.Text = "replacement text"
	fresh := testRecord("z", []float32{0, 0, 1})

	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeRecordKey(seq))
		if err != nil {
			return err
		}
		old, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := tx.Set(makeShadowKey(batchID, seq), old); err != nil {
			return err
		}
		if err := tx.Set(makeRecordKey(seq), marshalStored(batchID, newRecord)); err != nil {
			return err
		}
		if err := tx.Set(makeRecordKey(seq+1000), marshalStored(batchID, fresh)); err != nil {
			return err
		}
		if err := tx.Set(makeIDKey("z"), encodeSeq(seq+1000)); err != nil {
			return err
		}
		return tx.Commit()
	}, true))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Id)
	assert.Equal(t, oldRecord.Text, records[0].Text)
	assert.Equal(t, oldRecord.Vector, records[0].Vector)

	populated, err := store.IsPopulated(ctx)
	require.NoError(t, err)
	assert.True(t, populated)

	// The commit marker flips the batch visible.
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeBatchCommitKey(batchID), []byte{1}); err != nil {
			return err
		}
		return tx.Commit()
	}, true))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err = store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "replacement text", records[0].Text)
	assert.Equal(t, "z", records[1].Id)
}
