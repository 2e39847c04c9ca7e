package bible

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCorpus = `{
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
            {"verse": 1, "text": "In the beginning God created the heavens and the earth.", "title": "The Creation"},
            {"verse": 2, "text": "And the earth was waste and void."}
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
      "bookName": "Matthew",
      "bookShort": "Matt",
      "testament": 2,
      "bookNumber": 40,
      "chapters": [
        {
          "chapter": 22,
          "verses": [
            {"verse": 39, "text": "Thou shalt love thy neighbor as thyself."}
          ]
        }
      ]
    }
  ]
}`

const sampleKoreanCorpus = `{
  "version": "개역개정",
  "books": [
    {
      "bookName": "창세기",
      "bookShort": "창",
      "testament": 1,
      "bookNumber": 1,
      "chapters": [
        {
          "chapter": 1,
          "verses": [
            {"verse": 1, "text": "태초에 하나님이 천지를 창조하시니라"}
          ]
        }
      ]
    }
  ]
}`

func loadedCorpus(t *testing.T) *Corpus {
	t.Helper()
	c := NewCorpus()
	require.NoError(t, c.Load(strings.NewReader(sampleCorpus), "ASV"))
	require.NoError(t, c.Load(strings.NewReader(sampleKoreanCorpus), "KRV"))
	return c
}

func TestCorpusLoad(t *testing.T) {
	c := loadedCorpus(t)
	assert.Equal(t, 5, c.Count())

	// Document order is preserved.
	verses := c.Verses()
	assert.Equal(t, "Gen", verses[0].BookShort)
	assert.Equal(t, "창", verses[4].BookShort)
}

func TestCorpusLoadMalformed(t *testing.T) {
	c := NewCorpus()
	assert.ErrorIs(t, c.Load(strings.NewReader("not json"), "ASV"), ErrMalformedCorpus)
	assert.ErrorIs(t, c.Load(strings.NewReader(`{"version":"X"}`), "X"), ErrMalformedCorpus)
}

func TestCorpusLoadFileMissing(t *testing.T) {
	c := NewCorpus()
	assert.ErrorIs(t, c.LoadFile("/nonexistent/bible.json", "ASV"), ErrCorpusRead)
}

func TestCorpusVerseByKey(t *testing.T) {
	c := loadedCorpus(t)

	verse, ok := c.VerseByKey("ASV:Matt:22:39")
	require.True(t, ok)
	assert.Equal(t, "Matthew 22:39", verse.Reference())
	assert.Equal(t, 2, verse.Testament)

	_, ok = c.VerseByKey("ASV:Matt:22:40")
	assert.False(t, ok)
}

func TestCorpusVerseByEmbeddingText(t *testing.T) {
	c := loadedCorpus(t)

	verse, ok := c.VerseByKey("ASV:Gen:1:1")
	require.True(t, ok)

	resolved, ok := c.VerseByEmbeddingText(verse.EmbeddingText())
	require.True(t, ok)
	assert.Same(t, verse, resolved)
}

func TestCorpusSearchByKeyword(t *testing.T) {
	c := loadedCorpus(t)

	matches := c.SearchByKeyword("neighbor")
	require.Len(t, matches, 1)
	assert.Equal(t, "Matt", matches[0].BookShort)

	matches = c.SearchByKeyword("하나님")
	require.Len(t, matches, 1)
	assert.Equal(t, "창", matches[0].BookShort)

	assert.Empty(t, c.SearchByKeyword("zebra"))
}

func TestCorpusChapterVerses(t *testing.T) {
	c := loadedCorpus(t)

	verses := c.ChapterVerses("gen", 1, "ASV")
	require.Len(t, verses, 2)
	assert.Equal(t, 1, verses[0].VerseNumber)
	assert.Equal(t, 2, verses[1].VerseNumber)

	// Version aliases match.
	verses = c.ChapterVerses("창", 1, "KRV")
	require.Len(t, verses, 1)
	assert.Equal(t, "개역개정", verses[0].Version)

	assert.Empty(t, c.ChapterVerses("Gen", 99, ""))
}

func TestCorpusBookInfo(t *testing.T) {
	c := loadedCorpus(t)

	info, ok := c.BookInfo("Gen", "ASV")
	require.True(t, ok)
	assert.Equal(t, "Genesis", info.BookName)
	assert.Equal(t, 2, info.TotalChapters)
	assert.Equal(t, 3, info.TotalVerses)
	assert.Equal(t, 1, info.Testament)

	_, ok = c.BookInfo("Rev", "")
	assert.False(t, ok)
}

func TestCorpusStatistics(t *testing.T) {
	c := loadedCorpus(t)

	stats := c.Statistics()
	assert.Equal(t, 5, stats.TotalVerses)
	assert.Equal(t, 4, stats.ByVersion["ASV"])
	assert.Equal(t, 1, stats.ByVersion["개역개정"])
}

func TestVersionMatches(t *testing.T) {
	tests := []struct {
		name    string
		version string
		filter  string
		want    bool
	}{
		{"empty filter matches all", "ASV", "", true},
		{"exact", "ASV", "ASV", true},
		{"case insensitive", "ASV", "asv", true},
		{"krv alias", "개역개정", "KRV", true},
		{"krv alias reversed", "KRV", "개역한글", true},
		{"asv alias", "American Standard Version", "ASV", true},
		{"no match", "ASV", "KRV", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionMatches(tt.version, tt.filter))
		})
	}
}
