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


package classify

import "strings"

// IntentType selects the search strategy for a query.
type IntentType string

const (
	// IntentKeyword means the query names a specific word, person or place
	// and wants exact occurrences of it.
	IntentKeyword IntentType = "KEYWORD"

	// IntentSemantic means the query asks about a theme or concept and
	// wants meaning-based matches.
	IntentSemantic IntentType = "SEMANTIC"

	// IntentHybrid means the intent is ambiguous and both strategies run.
	IntentHybrid IntentType = "HYBRID"
)

// Intent is the classified search intent of one query.
// Keyword is only set for KEYWORD and HYBRID intents, and may be empty for
// HYBRID when no keyword could be extracted.
type Intent struct {
	Type    IntentType
	Keyword string
	Reason  string
}

// KeywordIntent builds a KEYWORD intent.
func KeywordIntent(keyword, reason string) Intent {
	return Intent{Type: IntentKeyword, Keyword: keyword, Reason: reason}
}

// SemanticIntent builds a SEMANTIC intent. Semantic search never carries a
// keyword.
func SemanticIntent(reason string) Intent {
	return Intent{Type: IntentSemantic, Reason: reason}
}

// HybridIntent builds a HYBRID intent. The keyword may be empty.
func HybridIntent(keyword, reason string) Intent {
	return Intent{Type: IntentHybrid, Keyword: keyword, Reason: reason}
}

// ContextType identifies the kind of scope constraint found in a query.
type ContextType string

const (
	ContextNone          ContextType = "NONE"
	ContextTestament     ContextType = "TESTAMENT"
	ContextBookGroup     ContextType = "BOOK_GROUP"
	ContextSingleBook    ContextType = "SINGLE_BOOK"
	ContextMultipleBooks ContextType = "MULTIPLE_BOOKS"
)

// Context is the scope constraint extracted from a query, plus the query
// with the scope phrasing stripped. Books is only populated for book-scoped
// types and Testament only for TESTAMENT; a NONE context carries neither.
type Context struct {
	Type          ContextType
	Books         []string
	Testament     int
	CleanedQuery  string
	OriginalQuery string
	Description   string
	Confidence    float64
}

// NoContext builds an unconstrained context; the cleaned query equals the
// original.
func NoContext(query string) Context {
	return Context{
		Type:          ContextNone,
		CleanedQuery:  query,
		OriginalQuery: query,
	}
}

// TestamentContext builds a testament-scoped context.
func TestamentContext(testament int, cleaned, original, description string, confidence float64) Context {
	return Context{
		Type:          ContextTestament,
		Testament:     testament,
		CleanedQuery:  cleaned,
		OriginalQuery: original,
		Description:   description,
		Confidence:    confidence,
	}
}

// BooksContext builds a book-scoped context of the given type
// (BOOK_GROUP, SINGLE_BOOK or MULTIPLE_BOOKS).
func BooksContext(contextType ContextType, books []string, cleaned, original, description string, confidence float64) Context {
	return Context{
		Type:          contextType,
		Books:         books,
		CleanedQuery:  cleaned,
		OriginalQuery: original,
		Description:   description,
		Confidence:    confidence,
	}
}

// HasContext reports whether any scope constraint was found.
func (c Context) HasContext() bool {
	return c.Type != ContextNone
}

// MatchesVerse reports whether a verse with the given book short code and
// testament falls inside this context's scope.
func (c Context) MatchesVerse(bookShort string, testament int) bool {
	switch c.Type {
	case ContextNone:
		return true
	case ContextTestament:
		return testament == c.Testament
	default:
		for _, book := range c.Books {
			if strings.EqualFold(book, bookShort) {
				return true
			}
		}
		return false
	}
}
