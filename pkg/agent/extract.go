package agent

import (
	"regexp"
	"strings"
)

// Parameter extraction from free text is ordered pattern matching: the first
// matching pattern wins and its first capture group, trimmed, is the
// argument. This is a best-effort heuristic, not a grammar.

func compilePatterns(exprs ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		patterns[i] = regexp.MustCompile(e)
	}
	return patterns
}

// extractAfter tries each pattern in order against the message and returns
// the trimmed first capture group of the first match.
func extractAfter(patterns []*regexp.Regexp, message string) (string, bool) {
	for _, p := range patterns {
		m := p.FindStringSubmatch(message)
		if len(m) >= 2 {
			arg := cleanArgument(m[1])
			if arg != "" {
				return arg, true
			}
		}
	}
	return "", false
}

func cleanArgument(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'.,!?`)
}
