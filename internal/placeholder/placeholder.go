// Package placeholder detects interpolation variables in message texts so a
// catalog can flag formatted messages and translators can keep them intact.
package placeholder

import (
	"regexp"
)

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// escapedPercent is matched so that "%%d" is not read as "%d"; it is never
// reported as a placeholder.
const escapedPercent = "%%"

// patterns to detect interpolation variables in message strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_.]*\}`),                       // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                                          // {0}, {1}
	regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`),                          // {name}
	regexp.MustCompile(`%(?:[0-9]+\$)?[-+#0-9]*\.?[0-9]*[dsfieEgGxXoubcpqv]`), // %d, %s, %2$s, %.2f
	regexp.MustCompile(`%\([a-zA-Z_][a-zA-Z0-9_]*\)[sdfr]`),                   // %(name)s
	regexp.MustCompile(`%%`),                                                  // escaped percent literal
}

// Find returns the placeholders in text in order of appearance. Overlapping
// matches keep the earliest, then longest, candidate.
func Find(text string) []string {
	var allMatches []varMatch
	for _, p := range patterns {
		locs := p.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			allMatches = append(allMatches, varMatch{
				start: loc[0],
				end:   loc[1],
				value: text[loc[0]:loc[1]],
			})
		}
	}

	if len(allMatches) == 0 {
		return nil
	}

	sortVarMatches(allMatches)

	var found []string
	lastEnd := -1
	for _, m := range allMatches {
		if m.start < lastEnd {
			continue
		}
		lastEnd = m.end
		if m.value != escapedPercent {
			found = append(found, m.value)
		}
	}
	return found
}

// Same reports whether two texts use the same multiset of placeholders,
// which is what a translation must preserve.
func Same(a, b string) bool {
	count := make(map[string]int)
	for _, p := range Find(a) {
		count[p]++
	}
	for _, p := range Find(b) {
		count[p]--
	}
	for _, n := range count {
		if n != 0 {
			return false
		}
	}
	return true
}

// sortVarMatches sorts by start position, then by length (descending) for overlaps.
func sortVarMatches(matches []varMatch) {
	for i := 1; i < len(matches); i++ {
		key := matches[i]
		j := i - 1
		for j >= 0 && (matches[j].start > key.start ||
			(matches[j].start == key.start && (matches[j].end-matches[j].start) < (key.end-key.start))) {
			matches[j+1] = matches[j]
			j--
		}
		matches[j+1] = key
	}
}
