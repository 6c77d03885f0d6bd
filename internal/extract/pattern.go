package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPatternTable is returned when no call patterns are configured.
	ErrEmptyPatternTable = errors.New("pattern table is empty")

	// ErrInvalidPatternName is returned for names that are not identifiers.
	ErrInvalidPatternName = errors.New("invalid pattern name")

	// ErrDuplicatePattern is returned when a name appears twice in the table.
	ErrDuplicatePattern = errors.New("duplicate pattern name")
)

// Pattern describes one recognized localization call shape.
type Pattern struct {
	Name     string `yaml:"name" json:"name"`
	Domained bool   `yaml:"domained" json:"domained"`
	Plural   bool   `yaml:"plural" json:"plural"`
}

// Kind renders the classification for display.
func (p Pattern) Kind() string {
	switch {
	case p.Domained && p.Plural:
		return "domained plural"
	case p.Domained:
		return "domained"
	case p.Plural:
		return "plural"
	default:
		return "plain"
	}
}

// DefaultPatterns is the built-in call family: plain and formatted messages,
// plurals, and their domain-scoped variants.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Name: "_"},
		{Name: "_f"},
		{Name: "_n", Plural: true},
		{Name: "_fn", Plural: true},
		{Name: "_d", Domained: true},
		{Name: "_df", Domained: true},
		{Name: "_dn", Domained: true, Plural: true},
		{Name: "_dfn", Domained: true, Plural: true},
	}
}

var patternNameRE = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$.]*$`)

// PatternTable is an ordered, validated set of call patterns. It is immutable
// once built and safe to share between concurrent scans.
type PatternTable struct {
	patterns []Pattern
	matchers []*regexp.Regexp
	first    [256]bool
}

// NewPatternTable validates patterns and compiles one anchored matcher per
// entry. Order is preserved: the first matching entry wins at a position.
func NewPatternTable(patterns []Pattern) (*PatternTable, error) {
	if len(patterns) == 0 {
		return nil, ErrEmptyPatternTable
	}

	t := &PatternTable{
		patterns: make([]Pattern, 0, len(patterns)),
		matchers: make([]*regexp.Regexp, 0, len(patterns)),
	}
	seen := make(map[string]struct{}, len(patterns))

	for i, p := range patterns {
		name := strings.TrimSpace(p.Name)
		if !patternNameRE.MatchString(name) {
			return nil, fmt.Errorf("pattern %d %q: %w", i, p.Name, ErrInvalidPatternName)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("pattern %q: %w", name, ErrDuplicatePattern)
		}
		seen[name] = struct{}{}

		p.Name = name
		t.patterns = append(t.patterns, p)
		t.matchers = append(t.matchers, regexp.MustCompile(`^`+regexp.QuoteMeta(name)+`[ \t\v\r\n\f]*\(`))
		t.first[name[0]] = true
	}

	return t, nil
}

// Patterns returns a copy of the table entries in match order.
func (t *PatternTable) Patterns() []Pattern {
	out := make([]Pattern, len(t.patterns))
	copy(out, t.patterns)
	return out
}

// match tests the table at offset at. It returns the matched pattern and the
// offset just past the opening parenthesis.
func (t *PatternTable) match(text string, at int) (Pattern, int, bool) {
	if !t.first[text[at]] {
		return Pattern{}, 0, false
	}
	if at > 0 && isIdentByte(text[at-1]) {
		return Pattern{}, 0, false
	}

	rest := text[at:]
	for i, p := range t.patterns {
		if !strings.HasPrefix(rest, p.Name) {
			continue
		}
		if loc := t.matchers[i].FindStringIndex(rest); loc != nil {
			return p, at + loc[1], true
		}
	}
	return Pattern{}, 0, false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
		c >= 0x80
}
