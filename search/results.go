package search

import (
	"github.com/poiesic/versefinder/classify"
	"github.com/poiesic/versefinder/core"
)

// VerseResult is one verse in a search response, carrying both the Stage-1
// similarity score and the Stage-2 re-ranked score.
type VerseResult struct {
	Reference     string  `json:"reference"`
	BookName      string  `json:"bookName"`
	BookShort     string  `json:"bookShort"`
	Chapter       int     `json:"chapter"`
	Verse         int     `json:"verse"`
	Title         string  `json:"title,omitempty"`
	Text          string  `json:"text"`
	Version       string  `json:"version"`
	Score         float64 `json:"score"`
	RerankedScore float64 `json:"rerankedScore"`
}

// Result is the complete response for one search request. Failed requests
// carry Success=false, a populated Error, and zero results.
type Result struct {
	Query        string        `json:"query"`
	Results      []VerseResult `json:"results"`
	TotalResults int           `json:"totalResults"`
	SearchTimeMs int64         `json:"searchTimeMs"`
	Success      bool          `json:"success"`
	Error        string        `json:"error,omitempty"`

	// Routing metadata for observability.
	Method             classify.IntentType  `json:"searchMethod,omitempty"`
	ExtractedKeyword   string               `json:"extractedKeyword,omitempty"`
	IntentReason       string               `json:"intentReason,omitempty"`
	ContextType        classify.ContextType `json:"detectedContextType,omitempty"`
	ContextDescription string               `json:"detectedContext,omitempty"`
	ContextBooks       []string             `json:"contextBooks,omitempty"`

	// SearchQuery is the query actually searched, after scope stripping.
	SearchQuery string `json:"searchQuery,omitempty"`
}

// successResult assembles a successful response with routing metadata.
func successResult(query string, results []VerseResult, elapsedMs int64, intent classify.Intent, scope classify.Context) Result {
	return Result{
		Query:              query,
		Results:            results,
		TotalResults:       len(results),
		SearchTimeMs:       elapsedMs,
		Success:            true,
		Method:             intent.Type,
		ExtractedKeyword:   intent.Keyword,
		IntentReason:       intent.Reason,
		ContextType:        scope.Type,
		ContextDescription: scope.Description,
		ContextBooks:       scope.Books,
		SearchQuery:        scope.CleanedQuery,
	}
}

// errorResult assembles a failed response.
func errorResult(query string, err error, elapsedMs int64) Result {
	return Result{
		Query:        query,
		SearchTimeMs: elapsedMs,
		Success:      false,
		Error:        err.Error(),
	}
}

// toVerseResult converts a scored candidate into a response entry.
func toVerseResult(candidate core.ScoredCandidate) VerseResult {
	verse := candidate.Verse
	return VerseResult{
		Reference:     verse.Reference(),
		BookName:      verse.BookName,
		BookShort:     verse.BookShort,
		Chapter:       verse.Chapter,
		Verse:         verse.VerseNumber,
		Title:         verse.Title,
		Text:          verse.Text,
		Version:       verse.Version,
		Score:         candidate.BaseScore,
		RerankedScore: candidate.RerankedScore,
	}
}
