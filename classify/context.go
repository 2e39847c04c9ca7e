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

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/versefinder/ai"
	"github.com/poiesic/versefinder/core"
)

// A query only returns NONE early when the no-scope prototypes beat the
// scope prototypes by at least this margin; otherwise structural extraction
// gets a chance. Similarity alone never asserts a scope — a structural
// match is still required, which keeps false positives down.
const scopeMargin = 0.08

// Scope phrasing patterns: a scope fragment followed by the remaining query.
var (
	koreanScopePattern = regexp.MustCompile(
		`^(.+?)(?:에서|에|의|에서 나오는|에 있는|에 나오는)\s+(.+)$`)
	englishScopePattern = regexp.MustCompile(
		`(?i)^(?:in|from|in the|from the)\s+(.+?)\s+(?:about|on|concerning|regarding)?\s*(.+)$`)
)

// Testament keyword patterns.
var (
	koreanOTPattern  = regexp.MustCompile(`구약(?:성경|성서)?`)
	koreanNTPattern  = regexp.MustCompile(`신약(?:성경|성서)?`)
	englishOTPattern = regexp.MustCompile(`(?i)(?:old testament|OT)`)
	englishNTPattern = regexp.MustCompile(`(?i)(?:new testament|NT)`)
)

// multiBookSeparators splits a scope fragment listing several books,
// e.g. "이사야, 예레미야" or "Matthew and John".
var multiBookSeparators = regexp.MustCompile(`[,과와]|\s+and\s+|\s*&\s*`)

// ContextClassifier detects and strips a scope constraint (testament, book
// group, single or multiple books) from a query's phrasing. It uses the
// same prototype-embedding technique as IntentClassifier to decide whether
// scoped phrasing is present, then regex patterns to extract the scope.
//
// Safe for concurrent use after construction.
type ContextClassifier struct {
	embedder      ai.Embedder
	scopeProtos   [][]float32
	noScopeProtos [][]float32
	logger        *slog.Logger
}

// NewContextClassifier embeds all prototype phrases and returns a ready
// classifier.
func NewContextClassifier(ctx context.Context, embedder ai.Embedder) (*ContextClassifier, error) {
	logger := slog.Default().With("component", "context-classifier")
	logger.Info("initializing context classifier",
		"scope_prototypes", len(scopePrototypes),
		"no_scope_prototypes", len(noScopePrototypes))

	scopeProtos, err := embedder.EmbedTexts(ctx, scopePrototypes)
	if err != nil {
		return nil, fmt.Errorf("embedding scope prototypes: %w", err)
	}
	noScopeProtos, err := embedder.EmbedTexts(ctx, noScopePrototypes)
	if err != nil {
		return nil, fmt.Errorf("embedding no-scope prototypes: %w", err)
	}

	return &ContextClassifier{
		embedder:      embedder,
		scopeProtos:   scopeProtos,
		noScopeProtos: noScopeProtos,
		logger:        logger,
	}, nil
}

// PrototypeCount returns the number of prototype phrases backing the
// classifier.
func (c *ContextClassifier) PrototypeCount() int {
	return len(c.scopeProtos) + len(c.noScopeProtos)
}

// Extract detects a scope constraint in the query, returning the scope and
// the query with the scope phrasing removed. Queries without a detectable
// scope return a NONE context with the query unchanged.
func (c *ContextClassifier) Extract(ctx context.Context, query string) (Context, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return NoContext(query), nil
	}

	queryVector, err := c.embedder.EmbedText(ctx, trimmed)
	if err != nil {
		return Context{}, fmt.Errorf("embedding query: %w", err)
	}

	scopeSim := core.MeanSimilarity(queryVector, c.scopeProtos)
	noScopeSim := core.MeanSimilarity(queryVector, c.noScopeProtos)

	c.logger.Debug("context scores",
		"query", trimmed, "scope", scopeSim, "no_scope", noScopeSim)

	if noScopeSim > scopeSim && noScopeSim-scopeSim > scopeMargin {
		return NoContext(trimmed), nil
	}

	if result, ok := c.extractScope(trimmed, scopeSim); ok {
		c.logger.Info("context extracted",
			"query", trimmed, "scope", result.Description, "type", result.Type)
		return result, nil
	}

	return NoContext(trimmed), nil
}

// extractScope matches the scope phrasing patterns and parses the scope
// fragment.
func (c *ContextClassifier) extractScope(query string, confidence float64) (Context, bool) {
	if match := koreanScopePattern.FindStringSubmatch(query); match != nil {
		scopePart := strings.TrimSpace(match[1])
		searchPart := strings.TrimSpace(match[2])
		if result, ok := parseScopePart(scopePart, searchPart, query, confidence, true); ok {
			return result, true
		}
	}

	if match := englishScopePattern.FindStringSubmatch(query); match != nil {
		scopePart := strings.TrimSpace(match[1])
		searchPart := strings.TrimSpace(match[2])
		if result, ok := parseScopePart(scopePart, searchPart, query, confidence, false); ok {
			return result, true
		}
	}

	return Context{}, false
}

// parseScopePart inspects a scope fragment in priority order:
// testament keyword, book group, multiple books, single book.
func parseScopePart(scopePart, searchPart, originalQuery string, confidence float64, korean bool) (Context, bool) {
	if korean {
		if koreanOTPattern.MatchString(scopePart) {
			return TestamentContext(core.TestamentOld, searchPart, originalQuery,
				"구약 (Old Testament)", confidence), true
		}
		if koreanNTPattern.MatchString(scopePart) {
			return TestamentContext(core.TestamentNew, searchPart, originalQuery,
				"신약 (New Testament)", confidence), true
		}
	} else {
		if englishOTPattern.MatchString(scopePart) {
			return TestamentContext(core.TestamentOld, searchPart, originalQuery,
				"Old Testament", confidence), true
		}
		if englishNTPattern.MatchString(scopePart) {
			return TestamentContext(core.TestamentNew, searchPart, originalQuery,
				"New Testament", confidence), true
		}
	}

	if name, books, ok := matchBookGroup(scopePart, korean); ok {
		return BooksContext(ContextBookGroup, books, searchPart, originalQuery,
			name, confidence), true
	}

	if books := parseMultipleBooks(scopePart, korean); len(books) > 1 {
		return BooksContext(ContextMultipleBooks, books, searchPart, originalQuery,
			strings.Join(books, ", "), confidence), true
	}

	if name, short, ok := matchBookName(scopePart, korean); ok {
		return BooksContext(ContextSingleBook, []string{short}, searchPart, originalQuery,
			name, confidence), true
	}

	return Context{}, false
}

// parseMultipleBooks resolves a comma/conjunction-separated list of book
// names to short codes. Fragments that resolve to no book are skipped.
func parseMultipleBooks(scopePart string, korean bool) []string {
	var books []string
	for _, part := range multiBookSeparators.Split(scopePart, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, short, ok := matchBookName(part, korean); ok {
			books = append(books, short)
		}
	}
	return books
}
