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
	"strings"
	"unicode/utf8"

	"github.com/poiesic/versefinder/ai"
	"github.com/poiesic/versefinder/core"
)

// Intent decision thresholds: a set must score above the similarity floor
// AND beat the other set by the margin to win; otherwise the query is
// ambiguous and served as hybrid.
const (
	intentSimilarityFloor = 0.45
	intentMargin          = 0.05

	// Single-token queries at or below this many runes are too short for
	// embedding-based classification to be reliable.
	shortTokenLimit = 6
)

// IntentClassifier decides whether a query wants exact-term lookup,
// meaning-based lookup, or both, by comparing the query embedding against
// curated prototype phrase sets.
//
// Prototype embeddings are computed once at construction and immutable
// afterwards, so one classifier is safe for concurrent queries.
type IntentClassifier struct {
	embedder       ai.Embedder
	keywordProtos  [][]float32
	semanticProtos [][]float32
	logger         *slog.Logger
}

// NewIntentClassifier embeds all prototype phrases and returns a ready
// classifier. The embedding cost is paid once here, not per query.
func NewIntentClassifier(ctx context.Context, embedder ai.Embedder) (*IntentClassifier, error) {
	logger := slog.Default().With("component", "intent-classifier")
	logger.Info("initializing intent classifier",
		"keyword_prototypes", len(keywordPrototypes),
		"semantic_prototypes", len(semanticPrototypes))

	keywordProtos, err := embedder.EmbedTexts(ctx, keywordPrototypes)
	if err != nil {
		return nil, fmt.Errorf("embedding keyword prototypes: %w", err)
	}
	semanticProtos, err := embedder.EmbedTexts(ctx, semanticPrototypes)
	if err != nil {
		return nil, fmt.Errorf("embedding semantic prototypes: %w", err)
	}

	return &IntentClassifier{
		embedder:       embedder,
		keywordProtos:  keywordProtos,
		semanticProtos: semanticProtos,
		logger:         logger,
	}, nil
}

// PrototypeCount returns the number of prototype phrases backing the
// classifier.
func (c *IntentClassifier) PrototypeCount() int {
	return len(c.keywordProtos) + len(c.semanticProtos)
}

// Classify determines the search intent of a query.
func (c *IntentClassifier) Classify(ctx context.Context, query string) (Intent, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return SemanticIntent("Empty query defaults to semantic"), nil
	}

	words := strings.Fields(trimmed)
	if len(words) == 1 && utf8.RuneCountInString(trimmed) <= shortTokenLimit {
		return HybridIntent(trimmed, fmt.Sprintf(
			"Single short word (%d chars): using hybrid search",
			utf8.RuneCountInString(trimmed))), nil
	}

	queryVector, err := c.embedder.EmbedText(ctx, trimmed)
	if err != nil {
		return Intent{}, fmt.Errorf("embedding query: %w", err)
	}

	keywordSim := core.MeanSimilarity(queryVector, c.keywordProtos)
	semanticSim := core.MeanSimilarity(queryVector, c.semanticProtos)
	difference := keywordSim - semanticSim

	c.logger.Debug("intent scores",
		"query", trimmed, "keyword", keywordSim, "semantic", semanticSim)

	switch {
	case keywordSim > intentSimilarityFloor && difference > intentMargin:
		return KeywordIntent(ExtractKeyword(trimmed), fmt.Sprintf(
			"Keyword intent detected (score: %.0f%% vs %.0f%%)",
			keywordSim*100, semanticSim*100)), nil

	case semanticSim > intentSimilarityFloor && -difference > intentMargin:
		return SemanticIntent(fmt.Sprintf(
			"Semantic intent detected (score: %.0f%% vs %.0f%%)",
			semanticSim*100, keywordSim*100)), nil

	default:
		return HybridIntent(ExtractKeyword(trimmed), fmt.Sprintf(
			"Ambiguous intent (keyword: %.0f%%, semantic: %.0f%%): using hybrid",
			keywordSim*100, semanticSim*100)), nil
	}
}
