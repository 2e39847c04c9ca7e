package indexing

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/poiesic/versefinder/ai/mock"
	"github.com/poiesic/versefinder/bible"
	"github.com/poiesic/versefinder/storage"
	badgerstore "github.com/poiesic/versefinder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexerTestCorpus = `{
  "version": "ASV",
  "books": [
    {
      "bookName": "Genesis",
      "bookShort": "Gen",
      "testament": 1,
      "bookNumber": 1,
      "chapters": [
        {
          "chapter": 1,
          "verses": [
            {"verse": 1, "text": "In the beginning God created the heavens and the earth."},
            {"verse": 2, "text": "And the earth was waste and void."},
            {"verse": 3, "text": "And God said, Let there be light: and there was light."}
          ]
        },
        {
          "chapter": 2,
          "verses": [
            {"verse": 1, "text": "And the heavens and the earth were finished."}
          ]
        }
      ]
    },
    {
      "bookName": "Psalms",
      "bookShort": "Ps",
      "testament": 1,
      "bookNumber": 19,
      "chapters": [
        {
          "chapter": 23,
          "verses": [
            {"verse": 1, "text": "Jehovah is my shepherd; I shall not want."}
          ]
        }
      ]
    }
  ]
}`

func testCorpus(t *testing.T) *bible.Corpus {
	t.Helper()
	corpus := bible.NewCorpus()
	require.NoError(t, corpus.Load(strings.NewReader(indexerTestCorpus), "ASV"))
	return corpus
}

func testStore(t *testing.T) (storage.VectorStore, func()) {
	t.Helper()
	store, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	return store, func() {
		store.Close()
		backend.Close()
	}
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()

	indexer, err := NewIndexer(store, corpus, mock.NewMockProvider())
	require.NoError(t, err)
	defer indexer.Release()

	indexed, err := indexer.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, corpus.Count(), indexed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, corpus.Count(), count)

	// Every stored record joins back to a corpus verse.
	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	for _, record := range records {
		verse, ok := corpus.VerseByEmbeddingText(record.Text)
		require.True(t, ok, "record %s has no corpus verse", record.Id)
		assert.Equal(t, verse.Version, record.Meta.Version)
		assert.Equal(t, verse.Reference(), record.Meta.Reference)
		assert.Len(t, record.Vector, 384)
	}
}

func TestBuildIdempotent(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()

	indexer, err := NewIndexer(store, corpus, mock.NewMockProvider())
	require.NoError(t, err)
	defer indexer.Release()

	_, err = indexer.Build(ctx)
	require.NoError(t, err)
	_, err = indexer.Build(ctx)
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, corpus.Count(), count)
}

func TestBuildMultipleBatches(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()

	var batchCalls atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		batchCalls.Add(1)
		assert.LessOrEqual(t, len(texts), 2)
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0, 0}
		}
		return vectors, nil
	}

	indexer, err := NewIndexer(store, corpus, mock.NewMockProviderWithEmbedder(embedder),
		WithBatchSize(2), WithPoolSize(1))
	require.NoError(t, err)
	defer indexer.Release()

	indexed, err := indexer.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, indexed)
	assert.Equal(t, int32(3), batchCalls.Load())
}

func TestBuildEmbeddingFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()

	embedErr := errors.New("model unavailable")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, embedErr
	}

	indexer, err := NewIndexer(store, corpus, mock.NewMockProviderWithEmbedder(embedder),
		WithPoolSize(1))
	require.NoError(t, err)
	defer indexer.Release()

	_, err = indexer.Build(ctx)
	assert.ErrorIs(t, err, embedErr)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBuildEmbeddingCountMismatch(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0}}, nil
	}

	indexer, err := NewIndexer(store, corpus, mock.NewMockProviderWithEmbedder(embedder),
		WithPoolSize(1))
	require.NoError(t, err)
	defer indexer.Release()

	_, err = indexer.Build(ctx)
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestBuildEmptyCorpus(t *testing.T) {
	store, cleanup := testStore(t)
	defer cleanup()

	indexer, err := NewIndexer(store, bible.NewCorpus(), mock.NewMockProvider())
	require.NoError(t, err)
	defer indexer.Release()

	_, err = indexer.Build(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestReindexReplacesVectors(t *testing.T) {
	ctx := context.Background()
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()

	indexer, err := NewIndexer(store, corpus, mock.NewMockProvider())
	require.NoError(t, err)
	defer indexer.Release()

	_, err = indexer.Build(ctx)
	require.NoError(t, err)

	// Swap to a different same-dimensionality model.
	altEmbedder := mock.NewMockEmbedder()
	altEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vec := make([]float32, 384)
			vec[0] = 1
			vectors[i] = vec
		}
		return vectors, nil
	}
	reindexer, err := NewIndexer(store, corpus, mock.NewMockProviderWithEmbedder(altEmbedder))
	require.NoError(t, err)
	defer reindexer.Release()

	indexed, err := reindexer.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, corpus.Count(), indexed)

	records, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, corpus.Count())
	for _, record := range records {
		assert.InDelta(t, 1.0, record.Vector[0], 1e-6)
	}
}

func TestNewIndexerValidation(t *testing.T) {
	corpus := testCorpus(t)
	store, cleanup := testStore(t)
	defer cleanup()
	provider := mock.NewMockProvider()

	_, err := NewIndexer(nil, corpus, provider)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewIndexer(store, nil, provider)
	assert.ErrorIs(t, err, ErrCorpusRequired)

	_, err = NewIndexer(store, corpus, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
