package search

import (
	"regexp"
	"strings"
)

var (
	// quoted phrase (group 1) or a run of non-whitespace (group 2)
	termPattern = regexp.MustCompile(`"([^"]+)"|(\S+)`)
	spaceRuns   = regexp.MustCompile(`\s{2,}`)
)

// NormalizeQuery splits a free-text query into terms. Quoted phrases stay
// together with inner whitespace runs collapsed; everything else splits on
// whitespace. Terms keep their order of appearance, duplicates included.
//
//	NormalizeQuery(`  some random  words "with   quotes  " and   spaces`)
//	// ["some" "random" "words" "with quotes" "and" "spaces"]
func NormalizeQuery(s string) []string {
	matches := termPattern.FindAllStringSubmatch(s, -1)
	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		term := m[1]
		if term == "" {
			term = m[2]
		}
		term = spaceRuns.ReplaceAllString(strings.TrimSpace(term), " ")
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
