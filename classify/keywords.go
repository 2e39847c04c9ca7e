package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Keyword extraction patterns, tried in priority order: quoted text first,
// then language-specific "X appears / is named" phrasings. Group 1 captures
// the keyword candidate.
var keywordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`["'](.+?)["']`),
	regexp.MustCompile(`(.+?)(?:라는|이라는)\s*(?:단어|말|지명|이름|인물|사람|곳|장소)`),
	regexp.MustCompile(`(.+?)(?:가|이)\s*(?:나오는|나온|등장하는|언급된|포함된)`),
	regexp.MustCompile(`(.+?)(?:을|를)\s*(?:포함한|포함하는|담은|담고)`),
	regexp.MustCompile(`(?i)(?:containing|with|mentions?)\s+(?:the\s+word\s+)?["']?([\w가-힣]+)["']?`),
	regexp.MustCompile(`(?i)(?:the word|the name|the place)\s+["']?([\w가-힣]+)["']?`),
}

var trailingQuotes = regexp.MustCompile(`["'\s]+$`)

const maxKeywordLength = 20

// stopWords are too generic to serve as an extracted keyword.
var stopWords = map[string]bool{
	// English
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true,
	"find": true, "search": true, "show": true, "get": true,
	"verses": true, "verse": true, "passages": true,
	"containing": true, "with": true, "about": true,
	"for": true, "in": true, "on": true, "at": true,

	// Korean
	"를": true, "을": true, "이": true, "가": true, "에": true,
	"의": true, "와": true, "과": true, "로": true, "으로": true,
	"구절": true, "말씀": true, "성경": true, "찾아": true,
	"줘": true, "주세요": true,
}

func isStopWord(word string) bool {
	return stopWords[strings.ToLower(word)]
}

// ExtractKeyword pulls the target word, name or place out of a query.
// Returns "" when no plausible keyword is found.
func ExtractKeyword(query string) string {
	for _, pattern := range keywordPatterns {
		match := pattern.FindStringSubmatch(query)
		if match == nil {
			continue
		}
		keyword := strings.TrimSpace(match[1])
		keyword = strings.TrimSpace(trailingQuotes.ReplaceAllString(keyword, ""))
		if keyword != "" && utf8.RuneCountInString(keyword) <= maxKeywordLength {
			return keyword
		}
	}

	// Short queries: take the first significant word as the keyword.
	words := strings.Fields(query)
	if len(words) <= 3 {
		for _, word := range words {
			if utf8.RuneCountInString(word) >= 2 && !isStopWord(word) {
				return word
			}
		}
	}

	return ""
}
