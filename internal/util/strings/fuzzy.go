package strings

import (
	"slices"
	"strings"

	"github.com/agext/levenshtein"
)

const (
	// DefaultMaxDistance is the largest edit distance a suggestion may have
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions caps the suggestions FindSimilar returns
	DefaultMaxSuggestions = 3
)

// FindSimilar returns up to DefaultMaxSuggestions candidates within
// DefaultMaxDistance edits of target, closest first and then by name.
// Case is ignored and target itself is never suggested.
//
//	FindSimilar("Acount", []string{"Account", "Amount", "User"})
//	// [Account Amount]
func FindSimilar(target string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}

	lower := strings.ToLower(target)
	var hits []scored
	for _, c := range candidates {
		if c == target {
			continue
		}
		if d := Distance(lower, strings.ToLower(c)); d <= DefaultMaxDistance {
			hits = append(hits, scored{c, d})
		}
	}

	slices.SortFunc(hits, func(a, b scored) int {
		if a.dist != b.dist {
			return a.dist - b.dist
		}
		return strings.Compare(a.name, b.name)
	})

	out := make([]string, 0, min(len(hits), DefaultMaxSuggestions))
	for _, h := range hits[:min(len(hits), DefaultMaxSuggestions)] {
		out = append(out, h.name)
	}
	return out
}

// Distance is the number of single-rune insertions, deletions and
// substitutions turning a into b
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}
