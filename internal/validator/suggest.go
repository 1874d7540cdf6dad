package validator

import (
	"sort"
	"strings"
)

// Score tiers for the similarity heuristic. Candidates scoring zero are
// excluded so unrelated registries yield no suggestions at all.
const (
	scoreExactSegment  = 3
	scoreSegmentSubstr = 2
	scoreSharedPrefix  = 1
)

// minPrefix is the shortest shared prefix that still counts as resemblance.
const minPrefix = 3

// Suggest returns up to limit known targets resembling the missing one, best
// first. Ranking: exact last-segment match, then last-segment substring
// containment, then shared prefix; ties break lexically. It never fails and
// returns an empty slice when nothing bears any resemblance.
func Suggest(target string, pool []string, limit int) []string {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}

	wantSegment := strings.ToLower(lastSegment(target))
	wantFull := strings.ToLower(target)

	type scored struct {
		target string
		score  int
	}

	var candidates []scored
	for _, candidate := range pool {
		if candidate == "" || candidate == target {
			continue
		}
		candSegment := strings.ToLower(lastSegment(candidate))

		var score int
		switch {
		case candSegment == wantSegment:
			score = scoreExactSegment
		case strings.Contains(candSegment, wantSegment) || strings.Contains(wantSegment, candSegment):
			score = scoreSegmentSubstr
		case sharedPrefixLen(strings.ToLower(candidate), wantFull) >= minPrefix:
			score = scoreSharedPrefix
		default:
			continue
		}
		candidates = append(candidates, scored{target: candidate, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].target < candidates[j].target
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]string, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.target)
	}
	return result
}

// lastSegment extracts the trailing path segment, treating both module paths
// (dot separated) and doc slugs (slash separated) uniformly.
func lastSegment(s string) string {
	if idx := strings.LastIndexAny(s, "./"); idx >= 0 && idx+1 < len(s) {
		return s[idx+1:]
	}
	return s
}

func sharedPrefixLen(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for i := 0; i < max; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return max
}
