package badger

import "encoding/binary"

// Key prefixes for different data types
const (
	recordPrefix      = "vecrec"   // record by insertion sequence
	recordIDPrefix    = "vecid"    // record ID -> insertion sequence
	shadowPrefix      = "vecold"   // pre-bulk-upsert value, kept until commit
	batchCommitPrefix = "batchcmt" // commit marker for a bulk-upsert batch
	recordSeqName     = "vecrecseq"
	batchSeqName      = "batchseq"
)

// makeRecordKey generates a key for a record by insertion sequence.
// The sequence is written in BigEndian order so lexicographic iteration
// yields insertion order.
func makeRecordKey(seq uint64) []byte {
	prefix := recordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeIDKey generates a key for the record ID index.
func makeIDKey(id string) []byte {
	return []byte(recordIDPrefix + ":" + id)
}

// makeShadowKey generates a key for a shadowed pre-upsert value.
// Format: prefix:batchID:seq
func makeShadowKey(batchID, seq uint64) []byte {
	prefix := shadowPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], batchID)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// shadowKeyParts extracts (batchID, seq) from a shadow key.
func shadowKeyParts(key []byte) (batchID, seq uint64) {
	offset := len(shadowPrefix) + 1
	batchID = binary.BigEndian.Uint64(key[offset:])
	seq = binary.BigEndian.Uint64(key[offset+8:])
	return
}

// makeBatchCommitKey generates the commit marker key for a batch.
func makeBatchCommitKey(batchID uint64) []byte {
	prefix := batchCommitPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], batchID)
	return buf
}

// batchCommitKeyID extracts the batch ID from a commit marker key.
func batchCommitKeyID(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(batchCommitPrefix)+1:])
}

// encodeSeq encodes a sequence number as a fixed 8-byte value.
func encodeSeq(seq uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return buf
}

// decodeSeq decodes a fixed 8-byte sequence value.
func decodeSeq(data []byte) uint64 {
	return binary.BigEndian.Uint64(data)
}
