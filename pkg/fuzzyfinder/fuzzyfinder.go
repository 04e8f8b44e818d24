package fuzzyfinder

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

type Rank struct {
	// Source is used as the source for matching.
	Source string

	// Target is the word matched against.
	Target string

	// Distance is the Levenshtein distance between Source and Target.
	Distance int

	// Location of Target in original list
	OriginalIndex int
}

// RankFind matches query against keys case-insensitively and returns the
// hits ordered by ascending distance.
func RankFind(keys []string, query string) []Rank {
	ranksLib := fuzzy.RankFindFold(query, keys)
	sort.Stable(ranksLib)
	ranks := make([]Rank, ranksLib.Len())
	for i, r := range ranksLib {
		ranks[i] = Rank{
			Source:        r.Source,
			Target:        r.Target,
			Distance:      r.Distance,
			OriginalIndex: r.OriginalIndex,
		}
	}
	return ranks
}

// Best returns the closest match for query, or false when nothing matches.
func Best(keys []string, query string) (string, bool) {
	ranks := RankFind(keys, query)
	if len(ranks) == 0 {
		return "", false
	}
	return ranks[0].Target, true
}
