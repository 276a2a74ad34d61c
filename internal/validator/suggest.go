package validator

import "github.com/agext/levenshtein"

// nearest returns the candidate with the smallest edit distance to name,
// or "" when there are no candidates or nothing is remotely close. The
// cutoff keeps absurd suggestions ("did you mean X" for a completely
// unrelated word) out of the diagnostics.
func nearest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.Distance(name, c, nil)
		if bestDist < 0 || d < bestDist {
			best = c
			bestDist = d
		}
	}
	if best == "" {
		return ""
	}
	limit := len(name)
	if len(best) > limit {
		limit = len(best)
	}
	if bestDist*2 > limit {
		return ""
	}
	return best
}
