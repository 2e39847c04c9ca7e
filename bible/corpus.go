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


package bible

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/poiesic/versefinder/core"
)

// versionDoc mirrors the corpus document layout: one document per Bible
// version, nested books / chapters / verses.
type versionDoc struct {
	Version string    `json:"version"`
	Books   []bookDoc `json:"books"`
}

type bookDoc struct {
	BookName   string       `json:"bookName"`
	BookShort  string       `json:"bookShort"`
	Testament  int          `json:"testament"`
	BookNumber int          `json:"bookNumber"`
	Chapters   []chapterDoc `json:"chapters"`
}

type chapterDoc struct {
	Chapter int        `json:"chapter"`
	Verses  []verseDoc `json:"verses"`
}

type verseDoc struct {
	Verse int    `json:"verse"`
	Text  string `json:"text"`
	Title string `json:"title"`
}

// Corpus holds every loaded verse with lookup indexes by unique key and by
// embedding text. Load all versions before handing the corpus to searchers;
// it is read-only afterwards and safe for concurrent use.
type Corpus struct {
	verses      []*core.Verse
	byKey       map[string]*core.Verse
	byEmbedText map[string]*core.Verse
	logger      *slog.Logger
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		byKey:       make(map[string]*core.Verse),
		byEmbedText: make(map[string]*core.Verse),
		logger:      slog.Default().With("component", "bible-corpus"),
	}
}

// LoadFile reads one version document from a JSON file.
// defaultVersion is used when the document omits its version field.
func (c *Corpus) LoadFile(path, defaultVersion string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorpusRead, path, err)
	}
	defer f.Close()
	return c.Load(f, defaultVersion)
}

// Load reads one version document from a reader.
func (c *Corpus) Load(r io.Reader, defaultVersion string) error {
	var doc versionDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedCorpus, err)
	}

	version := doc.Version
	if version == "" {
		version = defaultVersion
	}
	if len(doc.Books) == 0 {
		return fmt.Errorf("%w: document has no books", ErrMalformedCorpus)
	}

	verseCount := 0
	for _, book := range doc.Books {
		for _, chapter := range book.Chapters {
			for _, v := range chapter.Verses {
				verse := &core.Verse{
					Version:     version,
					BookName:    book.BookName,
					BookShort:   book.BookShort,
					Testament:   book.Testament,
					BookNumber:  book.BookNumber,
					Chapter:     chapter.Chapter,
					VerseNumber: v.Verse,
					Title:       v.Title,
					Text:        v.Text,
				}
				if err := core.ValidateVerse(verse); err != nil {
					return fmt.Errorf("%w: %s: %w", ErrMalformedCorpus, verse.Key(), err)
				}
				c.verses = append(c.verses, verse)
				c.byKey[verse.Key()] = verse
				c.byEmbedText[verse.EmbeddingText()] = verse
				verseCount++
			}
		}
	}

	c.logger.Info("loaded Bible version", "version", version, "books", len(doc.Books), "verses", verseCount)
	return nil
}

// Verses returns all loaded verses in document order.
// The returned slice must not be modified.
func (c *Corpus) Verses() []*core.Verse {
	return c.verses
}

// Count returns the number of loaded verses.
func (c *Corpus) Count() int {
	return len(c.verses)
}

// VerseByKey looks up a verse by its unique key ("version:book:chapter:verse").
func (c *Corpus) VerseByKey(key string) (*core.Verse, bool) {
	verse, ok := c.byKey[key]
	return verse, ok
}

// VerseByEmbeddingText resolves a stored embedding string back to its verse.
// This is the join key between the vector store and the corpus.
func (c *Corpus) VerseByEmbeddingText(text string) (*core.Verse, bool) {
	verse, ok := c.byEmbedText[text]
	return verse, ok
}

// SearchByKeyword returns every verse whose text contains the keyword.
func (c *Corpus) SearchByKeyword(keyword string) []*core.Verse {
	var matches []*core.Verse
	for _, verse := range c.verses {
		if strings.Contains(verse.Text, keyword) {
			matches = append(matches, verse)
		}
	}
	return matches
}

// ChapterVerses returns all verses of one chapter ordered by verse number.
// An empty version matches every loaded version.
func (c *Corpus) ChapterVerses(bookShort string, chapter int, version string) []*core.Verse {
	var verses []*core.Verse
	for _, verse := range c.verses {
		if !strings.EqualFold(verse.BookShort, bookShort) || verse.Chapter != chapter {
			continue
		}
		if version != "" && !VersionMatches(verse.Version, version) {
			continue
		}
		verses = append(verses, verse)
	}
	sort.Slice(verses, func(i, j int) bool {
		return verses[i].VerseNumber < verses[j].VerseNumber
	})
	return verses
}

// BookInfo summarizes one book of one version.
type BookInfo struct {
	BookName      string
	BookShort     string
	Version       string
	Testament     int
	TotalChapters int
	TotalVerses   int
}

// BookInfo returns summary information for a book, or false if the book is
// not present. An empty version matches every loaded version.
func (c *Corpus) BookInfo(bookShort, version string) (BookInfo, bool) {
	var info BookInfo
	found := false
	for _, verse := range c.verses {
		if !strings.EqualFold(verse.BookShort, bookShort) {
			continue
		}
		if version != "" && !VersionMatches(verse.Version, version) {
			continue
		}
		if !found {
			info.BookName = verse.BookName
			info.BookShort = verse.BookShort
			info.Version = verse.Version
			info.Testament = verse.Testament
			found = true
		}
		if verse.Chapter > info.TotalChapters {
			info.TotalChapters = verse.Chapter
		}
		info.TotalVerses++
	}
	return info, found
}

// Statistics reports per-version verse counts.
type Statistics struct {
	TotalVerses int
	ByVersion   map[string]int
}

// Statistics returns verse count statistics across all loaded versions.
func (c *Corpus) Statistics() Statistics {
	stats := Statistics{
		TotalVerses: len(c.verses),
		ByVersion:   make(map[string]int),
	}
	for _, verse := range c.verses {
		stats.ByVersion[verse.Version]++
	}
	return stats
}
