package core

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Testament identifiers used across the corpus.
const (
	TestamentOld = 1
	TestamentNew = 2
)

// Verse is a single Bible verse in one translation.
// Verses are created once at corpus load and are immutable thereafter.
type Verse struct {
	Version     string // Translation identifier, e.g. "KRV" or "ASV"
	BookName    string // Full book name, e.g. "창세기" or "Genesis"
	BookShort   string // Short book code, e.g. "창" or "Gen"
	Testament   int    // TestamentOld or TestamentNew
	BookNumber  int
	Chapter     int
	VerseNumber int
	Title       string // Optional section title
	Text        string
}

// Key returns the unique verse key "version:bookShort:chapter:verse".
func (v *Verse) Key() string {
	return fmt.Sprintf("%s:%s:%d:%d", v.Version, v.BookShort, v.Chapter, v.VerseNumber)
}

// Reference returns the human-readable reference, e.g. "Genesis 1:1".
func (v *Verse) Reference() string {
	return fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.VerseNumber)
}

// EmbeddingText returns the exact string that gets embedded for this verse.
// Format: "[VERSION] BookName Chapter:Verse <Title> Text". The title section
// is omitted when empty. This string doubles as the join key from a vector
// store match back to the verse, so it must be stable.
func (v *Verse) EmbeddingText() string {
	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(v.Version)
	sb.WriteString("] ")
	sb.WriteString(v.BookName)
	fmt.Fprintf(&sb, " %d:%d", v.Chapter, v.VerseNumber)
	if v.Title != "" {
		sb.WriteString(" <")
		sb.WriteString(v.Title)
		sb.WriteString(">")
	}
	sb.WriteString(" ")
	sb.WriteString(v.Text)
	return sb.String()
}

// Metadata is the closed set of keys recognized on a stored vector record.
type Metadata struct {
	Version   string // Translation the embedded verse belongs to
	Reference string // Human-readable verse reference
}

// VectorRecord is a persisted (id, text, metadata, embedding) tuple.
// All records in one store share the same vector dimensionality.
type VectorRecord struct {
	Id     string
	Text   string
	Meta   Metadata
	Vector []float32
}

// IDFromContent generates a deterministic record ID from text content using
// BLAKE2b hashing. Identical content always produces the identical ID, which
// makes indexing the same corpus twice idempotent.
func IDFromContent(text string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ScoredCandidate pairs a verse with its retrieval scores. Candidates are
// produced per query and discarded after the response is built.
type ScoredCandidate struct {
	Verse         *Verse
	BaseScore     float64 // Stage-1 cosine similarity
	RerankedScore float64 // Stage-2 combined score
}
