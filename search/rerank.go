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


package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/versefinder/bible"
	"github.com/poiesic/versefinder/classify"
	"github.com/poiesic/versefinder/core"
)

// Re-ranking signal weights.
const (
	keywordBoostPerWord = 0.05
	keywordBoostCap     = 0.2

	// Length normalization: verses over these rune counts are slightly
	// penalized to prefer concise, focused verses.
	lengthTierMedium = 300
	lengthTierLong   = 500

	lengthFactorMedium = 0.95
	lengthFactorLong   = 0.9
)

// queryWords lower-cases and whitespace-splits a query for keyword-boost
// matching.
func queryWords(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// rerankScore combines the Stage-1 similarity with a keyword-overlap boost
// and a length factor, clamped to [0,1].
func rerankScore(baseScore float64, verseText string, words []string) float64 {
	lowerText := strings.ToLower(verseText)

	boost := 0.0
	for _, word := range words {
		if utf8.RuneCountInString(word) > 2 && strings.Contains(lowerText, word) {
			boost += keywordBoostPerWord
		}
	}
	if boost > keywordBoostCap {
		boost = keywordBoostCap
	}

	lengthFactor := 1.0
	switch length := utf8.RuneCountInString(verseText); {
	case length > lengthTierLong:
		lengthFactor = lengthFactorLong
	case length > lengthTierMedium:
		lengthFactor = lengthFactorMedium
	}

	score := (baseScore + boost) * lengthFactor
	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}

// rerankAndFilter runs Stage 2 over Stage-1 candidates: version and scope
// filters, re-ranked scoring, threshold filter, stable descending sort
// (ties keep Stage-1 order), truncation.
func rerankAndFilter(
	candidates []core.ScoredCandidate,
	query string,
	minScore float64,
	versionFilter string,
	scope classify.Context,
	maxResults int,
) []core.ScoredCandidate {
	words := queryWords(query)

	var reranked []core.ScoredCandidate
	for _, candidate := range candidates {
		verse := candidate.Verse
		if !bible.VersionMatches(verse.Version, versionFilter) {
			continue
		}
		if !scope.MatchesVerse(verse.BookShort, verse.Testament) {
			continue
		}
		candidate.RerankedScore = rerankScore(candidate.BaseScore, verse.Text, words)
		if candidate.RerankedScore < minScore {
			continue
		}
		reranked = append(reranked, candidate)
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].RerankedScore > reranked[j].RerankedScore
	})
	if len(reranked) > maxResults {
		reranked = reranked[:maxResults]
	}
	return reranked
}
