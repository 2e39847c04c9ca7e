package bible

import "strings"

// versionAliases groups the version labels that refer to the same
// translation. Corpus documents and user filters may use either form.
var versionAliases = [][]string{
	{"KRV", "개역개정", "개역한글"},
	{"ASV", "American Standard Version"},
}

// VersionMatches reports whether a verse's version satisfies a filter,
// honoring alias groups. Comparison is case-insensitive.
func VersionMatches(verseVersion, filter string) bool {
	if filter == "" {
		return true
	}
	if strings.EqualFold(verseVersion, filter) {
		return true
	}
	for _, group := range versionAliases {
		if containsFold(group, verseVersion) && containsFold(group, filter) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
