package scanner

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-crossref/pkg/interfaces"
)

// markerPattern matches `[text](kind:target)` markers. The kind alternation is
// lexically gated to the closed marker set so unknown schemes are never
// matched in the first place.
var markerPattern = regexp.MustCompile(`\[([^\]]*)\]\((ash|exdoc|dev|user):([^)]*)\)`)

const fenceDelimiter = "```"

// Match pairs a discovered reference with the literal marker text so the
// render pipeline can substitute tokens without re-deriving the source form.
type Match struct {
	Ref interfaces.Reference
	Raw string
}

// Scan finds every cross-reference marker in the source text, in document
// order (top to bottom, left to right). Markers inside fenced code blocks and
// markers with empty targets are discarded. Scanning never fails.
func Scan(source string) []interfaces.Reference {
	matches := ScanMatches(source)
	refs := make([]interfaces.Reference, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m.Ref)
	}
	return refs
}

// ScanMatches is Scan with the literal marker text preserved per reference.
func ScanMatches(source string) []Match {
	if source == "" {
		return nil
	}

	var (
		matches []Match
		inFence bool
	)

	for i, line := range strings.Split(source, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), fenceDelimiter) {
			// The fence line itself is never scanned.
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		for _, groups := range markerPattern.FindAllStringSubmatch(line, -1) {
			target := groups[3]
			if strings.TrimSpace(target) == "" {
				continue
			}
			matches = append(matches, Match{
				Ref: interfaces.Reference{
					Kind:        interfaces.ParseKind(groups[2]),
					Target:      target,
					DisplayText: groups[1],
					LineNumber:  i + 1,
				},
				Raw: groups[0],
			})
		}
	}

	return matches
}
