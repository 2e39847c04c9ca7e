package classify

import (
	"context"
	"testing"

	"github.com/poiesic/versefinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// structuralContextClassifier embeds every text identically, so neither
// prototype set dominates and every query reaches structural extraction.
func structuralContextClassifier(t *testing.T) *ContextClassifier {
	t.Helper()
	embedder := prototypeEmbedder([]float32{1, 0, 0}, []float32{1, 0, 0}, func(string) []float32 {
		return []float32{1, 0, 0}
	})
	classifier, err := NewContextClassifier(context.Background(), embedder)
	require.NoError(t, err)
	return classifier
}

func TestContextExtractTestament(t *testing.T) {
	classifier := structuralContextClassifier(t)

	result, err := classifier.Extract(context.Background(), "신약에서 바벨론")
	require.NoError(t, err)
	assert.Equal(t, ContextTestament, result.Type)
	assert.Equal(t, core.TestamentNew, result.Testament)
	assert.Equal(t, "바벨론", result.CleanedQuery)
	assert.Empty(t, result.Books)

	result, err = classifier.Extract(context.Background(), "구약에서 언급된 말씀")
	require.NoError(t, err)
	assert.Equal(t, ContextTestament, result.Type)
	assert.Equal(t, core.TestamentOld, result.Testament)

	result, err = classifier.Extract(context.Background(), "in NT about love")
	require.NoError(t, err)
	assert.Equal(t, ContextTestament, result.Type)
	assert.Equal(t, core.TestamentNew, result.Testament)
	assert.Equal(t, "love", result.CleanedQuery)
}

func TestContextExtractBookGroup(t *testing.T) {
	classifier := structuralContextClassifier(t)

	result, err := classifier.Extract(context.Background(), "사복음서에서 사랑이 나온 구절")
	require.NoError(t, err)
	assert.Equal(t, ContextBookGroup, result.Type)
	assert.ElementsMatch(t, []string{"마", "막", "눅", "요"}, result.Books)
	assert.Equal(t, "사랑이 나온 구절", result.CleanedQuery)
	assert.Equal(t, "사복음서에서 사랑이 나온 구절", result.OriginalQuery)
}

func TestContextExtractSingleBook(t *testing.T) {
	classifier := structuralContextClassifier(t)

	result, err := classifier.Extract(context.Background(), "로마서에서 복음의 정의")
	require.NoError(t, err)
	assert.Equal(t, ContextSingleBook, result.Type)
	assert.Equal(t, []string{"롬"}, result.Books)
	assert.Equal(t, "복음의 정의", result.CleanedQuery)

	result, err = classifier.Extract(context.Background(), "in Genesis about creation")
	require.NoError(t, err)
	assert.Equal(t, ContextSingleBook, result.Type)
	assert.Equal(t, []string{"Gen"}, result.Books)
	assert.Equal(t, "creation", result.CleanedQuery)
}

func TestContextExtractMultipleBooks(t *testing.T) {
	classifier := structuralContextClassifier(t)

	result, err := classifier.Extract(context.Background(), "마태복음과 요한복음에서 기적")
	require.NoError(t, err)
	assert.Equal(t, ContextMultipleBooks, result.Type)
	assert.ElementsMatch(t, []string{"마", "요"}, result.Books)
	assert.Equal(t, "기적", result.CleanedQuery)
}

func TestContextExtractNoStructuralMatch(t *testing.T) {
	classifier := structuralContextClassifier(t)

	// Scope-leaning similarity is not enough without a structural match.
	result, err := classifier.Extract(context.Background(), "하나님의 사랑")
	require.NoError(t, err)
	assert.Equal(t, ContextNone, result.Type)
	assert.Equal(t, "하나님의 사랑", result.CleanedQuery)
	assert.Empty(t, result.Books)
	assert.Zero(t, result.Testament)
}

func TestContextExtractNoScopeDominates(t *testing.T) {
	// Query aligned with the no-scope prototypes returns NONE without
	// attempting structural extraction.
	embedder := prototypeEmbedder([]float32{1, 0, 0}, []float32{0, 1, 0}, func(string) []float32 {
		return []float32{0, 1, 0}
	})
	classifier, err := NewContextClassifier(context.Background(), embedder)
	require.NoError(t, err)

	result, err := classifier.Extract(context.Background(), "신약에서 바벨론")
	require.NoError(t, err)
	assert.Equal(t, ContextNone, result.Type)
	assert.Equal(t, "신약에서 바벨론", result.CleanedQuery)
}

func TestContextExtractEmpty(t *testing.T) {
	classifier := structuralContextClassifier(t)

	result, err := classifier.Extract(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ContextNone, result.Type)
}

func TestContextMatchesVerse(t *testing.T) {
	tests := []struct {
		name      string
		context   Context
		bookShort string
		testament int
		want      bool
	}{
		{"none matches everything", NoContext("q"), "창", 1, true},
		{"testament match", TestamentContext(2, "q", "q", "NT", 0.5), "마", 2, true},
		{"testament mismatch", TestamentContext(2, "q", "q", "NT", 0.5), "창", 1, false},
		{"book membership", BooksContext(ContextBookGroup, []string{"마", "막"}, "q", "q", "d", 0.5), "막", 2, true},
		{"book non-membership", BooksContext(ContextBookGroup, []string{"마", "막"}, "q", "q", "d", 0.5), "요", 2, false},
		{"single book", BooksContext(ContextSingleBook, []string{"롬"}, "q", "q", "d", 0.5), "롬", 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.context.MatchesVerse(tt.bookShort, tt.testament))
		})
	}
}
