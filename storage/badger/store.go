package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/versefinder/core"
	"github.com/poiesic/versefinder/storage"
)

// upsertChunkSize bounds the number of records written per transaction so a
// bulk load of the full corpus stays below badger's transaction size limit.
const upsertChunkSize = 500

// VectorStore implements storage.VectorStore on top of BadgerDB.
//
// Durable records are stored under insertion-sequence keys and carry a batch
// ID in their value envelope. Batch ID 0 marks an individually committed
// record; any other batch is only visible once its commit marker exists.
// Records replaced during a bulk upsert are shadowed until the batch commits
// so an aborted batch can restore the prior state.
type VectorStore struct {
	backend   *Backend
	ownsBack  bool
	recordSeq *badger.Sequence
	batchSeq  *badger.Sequence
	logger    *slog.Logger

	// writeMu serializes bulk loads; query serving never takes it.
	writeMu sync.Mutex

	mu     sync.RWMutex
	loaded bool
	cache  []*core.VectorRecord
	byID   map[string]int
	dim    int
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore opens a durable vector store at the given directory.
//
// Returns the storage.VectorStore interface to enforce abstraction.
func NewVectorStore(filePath string) (storage.VectorStore, error) {
	backend, err := OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}
	store, err := newVectorStore(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return store, nil
}

// NewVectorStoreWithBackend creates a store over an existing backend.
// The caller keeps ownership of the backend.
func NewVectorStoreWithBackend(backend *Backend) (storage.VectorStore, error) {
	return newVectorStore(backend, false)
}

func newVectorStore(backend *Backend, ownsBackend bool) (*VectorStore, error) {
	recordSeq, err := backend.GetSequence(recordSeqName)
	if err != nil {
		return nil, err
	}
	batchSeq, err := backend.GetSequence(batchSeqName)
	if err != nil {
		recordSeq.Release()
		return nil, err
	}

	s := &VectorStore{
		backend:   backend,
		ownsBack:  ownsBackend,
		recordSeq: recordSeq,
		batchSeq:  batchSeq,
		logger:    slog.Default().With("component", "vector-store"),
	}

	if err := s.recover(); err != nil {
		recordSeq.Release()
		batchSeq.Release()
		return nil, fmt.Errorf("%w: recovery failed: %w", storage.ErrCorruptStore, err)
	}
	return s, nil
}

// Close releases the sequences and, when owned, the backend.
func (s *VectorStore) Close() error {
	if err := s.recordSeq.Release(); err != nil {
		s.logger.Error("error releasing record sequence", "err", err)
	}
	if err := s.batchSeq.Release(); err != nil {
		s.logger.Error("error releasing batch sequence", "err", err)
	}
	if s.ownsBack {
		return s.backend.Close()
	}
	return nil
}

// marshalStored prepends the batch ID to a serialized record.
func marshalStored(batchID uint64, record *core.VectorRecord) []byte {
	payload := storage.MarshalVectorRecord(record)
	buf := make([]byte, varint.Uint64.Size(batchID)+len(payload))
	n := varint.Uint64.Marshal(batchID, buf)
	copy(buf[n:], payload)
	return buf
}

// unmarshalStored splits a stored value into its batch ID and record.
func unmarshalStored(data []byte) (uint64, *core.VectorRecord, error) {
	batchID, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	record, err := storage.UnmarshalVectorRecord(data[n:])
	if err != nil {
		return 0, nil, err
	}
	return batchID, record, nil
}

// readCommittedBatches collects the IDs of all committed batches.
func readCommittedBatches(tx *badger.Txn) map[uint64]bool {
	committed := make(map[uint64]bool)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(batchCommitPrefix + ":")
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()
	for iter.Rewind(); iter.Valid(); iter.Next() {
		committed[batchCommitKeyID(iter.Item().Key())] = true
	}
	return committed
}

// scanVisible iterates committed records in insertion order. The callback
// returns false to stop early.
//
// A record slot re-tagged by an uncommitted batch still serves its pre-batch
// value: the shadow entry holds it until the batch commits, so readers only
// ever observe the pre- or post-batch state. Fresh inserts of such a batch
// have no shadow and stay invisible.
func (s *VectorStore) scanVisible(fn func(record *core.VectorRecord) bool) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		committed := readCommittedBatches(tx)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			val, err := iter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			batchID, record, err := unmarshalStored(val)
			if err != nil {
				return err
			}
			if batchID != 0 && !committed[batchID] {
				seq := decodeSeq(iter.Item().Key()[len(recordPrefix)+1:])
				item, err := tx.Get(makeShadowKey(batchID, seq))
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				shadow, err := item.ValueCopy(nil)
				if err != nil {
					return err
				}
				_, record, err = unmarshalStored(shadow)
				if err != nil {
					return err
				}
			}
			if !fn(record) {
				return nil
			}
		}
		return nil
	}, false)
}

// LoadCache reads the entire durable store into memory once.
func (s *VectorStore) LoadCache(ctx context.Context) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	start := time.Now()
	var cache []*core.VectorRecord
	byID := make(map[string]int)

	err := s.scanVisible(func(record *core.VectorRecord) bool {
		byID[record.Id] = len(cache)
		cache = append(cache, record)
		return true
	})
	if err != nil {
		return err
	}

	s.cache = cache
	s.byID = byID
	s.loaded = true
	if len(cache) > 0 {
		s.dim = len(cache[0].Vector)
	}

	s.logger.Info("loaded vector cache", "records", len(cache), "elapsed", time.Since(start))
	return nil
}

// Search runs a brute-force cosine similarity scan over the cached records.
func (s *VectorStore) Search(ctx context.Context, queryVector []float32, maxResults int, minScore float64) ([]storage.Match, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if maxResults < 1 {
		return nil, fmt.Errorf("%w: maxResults must be positive, got %d", storage.ErrInvalidQuery, maxResults)
	}

	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		if err := s.LoadCache(ctx); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dim != 0 && len(queryVector) != s.dim {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, store has %d",
			storage.ErrDimensionMismatch, len(queryVector), s.dim)
	}

	var matches []storage.Match
	for _, record := range s.cache {
		score := core.CosineSimilarity(queryVector, record.Vector)
		if score >= minScore {
			matches = append(matches, storage.Match{Record: record, Score: score})
		}
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	if s.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	s.mu.RLock()
	if s.loaded {
		n := len(s.cache)
		s.mu.RUnlock()
		return n, nil
	}
	s.mu.RUnlock()

	count := 0
	err := s.scanVisible(func(*core.VectorRecord) bool {
		count++
		return true
	})
	return count, err
}

// IsPopulated reports whether the store holds at least one record.
func (s *VectorStore) IsPopulated(ctx context.Context) (bool, error) {
	if s.backend.IsClosed() {
		return false, storage.ErrStorageClosed
	}

	s.mu.RLock()
	if s.loaded {
		populated := len(s.cache) > 0
		s.mu.RUnlock()
		return populated, nil
	}
	s.mu.RUnlock()

	populated := false
	err := s.scanVisible(func(*core.VectorRecord) bool {
		populated = true
		return false
	})
	return populated, err
}

// GetAll returns every committed record in insertion order.
func (s *VectorStore) GetAll(ctx context.Context) ([]*core.VectorRecord, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	s.mu.RLock()
	if s.loaded {
		records := make([]*core.VectorRecord, len(s.cache))
		copy(records, s.cache)
		s.mu.RUnlock()
		return records, nil
	}
	s.mu.RUnlock()

	var records []*core.VectorRecord
	err := s.scanVisible(func(record *core.VectorRecord) bool {
		records = append(records, record)
		return true
	})
	return records, err
}

// checkDim verifies that a new vector matches the store dimensionality,
// adopting it when the store is still empty.
func (s *VectorStore) checkDim(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dim == 0 && !s.loaded {
		// Peek at the durable store for the established dimensionality.
		var d int
		err := s.scanVisible(func(record *core.VectorRecord) bool {
			d = len(record.Vector)
			return false
		})
		if err != nil {
			return err
		}
		s.dim = d
	}

	if s.dim != 0 && n != s.dim {
		return fmt.Errorf("%w: got %d, store has %d", storage.ErrDimensionMismatch, n, s.dim)
	}
	if s.dim == 0 {
		s.dim = n
	}
	return nil
}

// Upsert inserts or replaces a single record by ID.
func (s *VectorStore) Upsert(ctx context.Context, record *core.VectorRecord) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := core.ValidateVectorRecord(record); err != nil {
		return err
	}
	if err := s.checkDim(len(record.Vector)); err != nil {
		return err
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		seq, _, err := s.resolveSeq(tx, record.Id)
		if err != nil {
			return err
		}
		if err := tx.Set(makeRecordKey(seq), marshalStored(0, record)); err != nil {
			return err
		}
		if err := tx.Set(makeIDKey(record.Id), encodeSeq(seq)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		s.cacheput(record)
	}
	return nil
}

// cacheMerge replaces or appends records in the warm cache.
// Callers must hold s.mu.
func (s *VectorStore) cacheput(record *core.VectorRecord) {
	if idx, ok := s.byID[record.Id]; ok {
		s.cache[idx] = record
		return
	}
	s.byID[record.Id] = len(s.cache)
	s.cache = append(s.cache, record)
}

// resolveSeq finds the insertion sequence for an ID, allocating a new one
// for previously unseen IDs. The second return reports whether the ID
// already existed.
func (s *VectorStore) resolveSeq(tx *badger.Txn, id string) (uint64, bool, error) {
	item, err := tx.Get(makeIDKey(id))
	if err == nil {
		var seq uint64
		err = item.Value(func(val []byte) error {
			seq = decodeSeq(val)
			return nil
		})
		return seq, true, err
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, err
	}
	seq, err := s.recordSeq.Next()
	return seq, false, err
}

// nextBatchID allocates a nonzero batch ID; zero marks individually
// committed records.
func (s *VectorStore) nextBatchID() (uint64, error) {
	for {
		id, err := s.batchSeq.Next()
		if err != nil {
			return 0, err
		}
		if id != 0 {
			return id, nil
		}
	}
}

// BulkUpsert inserts records as one atomic unit. Records are written in
// chunked transactions tagged with a batch ID; a final tiny transaction
// writes the commit marker that makes the whole batch visible. On failure
// the already written chunks are rolled back.
func (s *VectorStore) BulkUpsert(ctx context.Context, records []*core.VectorRecord) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(records) == 0 {
		return nil
	}

	for _, record := range records {
		if err := core.ValidateVectorRecord(record); err != nil {
			return err
		}
		if len(record.Vector) != len(records[0].Vector) {
			return fmt.Errorf("%w: mixed dimensions %d and %d within batch",
				storage.ErrDimensionMismatch, len(records[0].Vector), len(record.Vector))
		}
	}
	if err := s.checkDim(len(records[0].Vector)); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	batchID, err := s.nextBatchID()
	if err != nil {
		return err
	}

	for start := 0; start < len(records); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(records))
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			for _, record := range records[start:end] {
				seq, existed, err := s.resolveSeq(tx, record.Id)
				if err != nil {
					return err
				}
				if existed {
					// Shadow the old value until the batch commits.
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
				}
				if err := tx.Set(makeRecordKey(seq), marshalStored(batchID, record)); err != nil {
					return err
				}
				if err := tx.Set(makeIDKey(record.Id), encodeSeq(seq)); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			s.rollbackBatch(batchID)
			return err
		}
	}

	// Commit point: one small transaction flips the whole batch visible.
	err = s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeBatchCommitKey(batchID), []byte{1}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		s.rollbackBatch(batchID)
		return err
	}

	s.clearShadows(batchID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		for _, record := range records {
			s.cacheput(record)
		}
	}

	s.logger.Info("bulk upsert committed", "records", len(records), "batch", batchID)
	return nil
}

// rollbackBatch restores shadowed values and removes fresh records of an
// uncommitted batch. Best effort: leftovers are cleaned again by recover().
func (s *VectorStore) rollbackBatch(batchID uint64) {
	if err := s.undoBatch(batchID); err != nil {
		s.logger.Error("batch rollback failed, will retry on next open", "batch", batchID, "err", err)
	}
}

// undoBatch reverses all durable effects of an uncommitted batch.
func (s *VectorStore) undoBatch(batchID uint64) error {
	type restoreOp struct {
		seq uint64
		val []byte
	}
	var restores []restoreOp
	var deleteRecords []uint64
	var deleteIDs []string

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		shadowed := make(map[uint64]bool)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeShadowKey(batchID, 0)[:len(shadowPrefix)+9]
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			_, seq := shadowKeyParts(iter.Item().Key())
			val, err := iter.Item().ValueCopy(nil)
			if err != nil {
				iter.Close()
				return err
			}
			shadowed[seq] = true
			restores = append(restores, restoreOp{seq: seq, val: val})
		}
		iter.Close()

		recOpts := badger.DefaultIteratorOptions
		recOpts.Prefix = []byte(recordPrefix + ":")
		recIter := tx.NewIterator(recOpts)
		defer recIter.Close()
		for recIter.Rewind(); recIter.Valid(); recIter.Next() {
			val, err := recIter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			recBatch, record, err := unmarshalStored(val)
			if err != nil {
				return err
			}
			if recBatch != batchID {
				continue
			}
			seq := decodeSeq(recIter.Item().Key()[len(recordPrefix)+1:])
			if !shadowed[seq] {
				deleteRecords = append(deleteRecords, seq)
				deleteIDs = append(deleteIDs, record.Id)
			}
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	// Apply in chunked write transactions.
	apply := func(fn func(tx *badger.Txn, i int) error, total int) error {
		for start := 0; start < total; start += upsertChunkSize {
			end := min(start+upsertChunkSize, total)
			err := s.backend.WithTx(func(tx *badger.Txn) error {
				for i := start; i < end; i++ {
					if err := fn(tx, i); err != nil {
						return err
					}
				}
				return tx.Commit()
			}, true)
			if err != nil {
				return err
			}
		}
		return nil
	}

	if err := apply(func(tx *badger.Txn, i int) error {
		if err := tx.Set(makeRecordKey(restores[i].seq), restores[i].val); err != nil {
			return err
		}
		return tx.Delete(makeShadowKey(batchID, restores[i].seq))
	}, len(restores)); err != nil {
		return err
	}

	return apply(func(tx *badger.Txn, i int) error {
		if err := tx.Delete(makeRecordKey(deleteRecords[i])); err != nil {
			return err
		}
		return tx.Delete(makeIDKey(deleteIDs[i]))
	}, len(deleteRecords))
}

// clearShadows drops shadow entries of a committed batch.
func (s *VectorStore) clearShadows(batchID uint64) {
	var keys [][]byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeShadowKey(batchID, 0)[:len(shadowPrefix)+9]
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		s.logger.Warn("shadow cleanup scan failed", "batch", batchID, "err", err)
		return
	}

	for start := 0; start < len(keys); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(keys))
		err := s.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range keys[start:end] {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			s.logger.Warn("shadow cleanup failed", "batch", batchID, "err", err)
			return
		}
	}
}

// recover finishes the bookkeeping of any batch that was in flight when the
// process died: committed batches lose their shadows, uncommitted batches
// are rolled back entirely.
func (s *VectorStore) recover() error {
	committed := make(map[uint64]bool)
	pending := make(map[uint64]bool)

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for id := range readCommittedBatches(tx) {
			committed[id] = true
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(shadowPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			batchID, _ := shadowKeyParts(iter.Item().Key())
			pending[batchID] = true
		}
		iter.Close()

		recOpts := badger.DefaultIteratorOptions
		recOpts.Prefix = []byte(recordPrefix + ":")
		recIter := tx.NewIterator(recOpts)
		defer recIter.Close()
		for recIter.Rewind(); recIter.Valid(); recIter.Next() {
			val, err := recIter.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			batchID, _, err := unmarshalStored(val)
			if err != nil {
				return err
			}
			if batchID != 0 {
				pending[batchID] = true
			}
		}
		return nil
	}, false)
	if err != nil {
		return err
	}

	for batchID := range pending {
		if committed[batchID] {
			s.clearShadows(batchID)
			continue
		}
		s.logger.Warn("rolling back interrupted bulk upsert", "batch", batchID)
		if err := s.undoBatch(batchID); err != nil {
			return err
		}
	}
	return nil
}
