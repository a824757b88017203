package user

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ratio scores string similarity on a 0-100 scale from edit distance.
func ratio(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	score := 100 - (100*d+longest-1)/longest
	if score < 0 {
		return 0
	}
	return score
}

// tokenSortRatio compares with word order removed, so "Namjoshi Niraj"
// still matches "Niraj Namjoshi".
func tokenSortRatio(a, b string) int {
	return ratio(sortTokens(a), sortTokens(b))
}

// partialRatio slides the shorter string across the longer one and keeps the
// best window score. Catches "raj" inside "Niraj".
func partialRatio(a, b string) int {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	best := 0
	for i := 0; i+len(ra) <= len(rb); i++ {
		if sc := ratio(string(ra), string(rb[i:i+len(ra)])); sc > best {
			best = sc
		}
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
