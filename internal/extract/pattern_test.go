package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatternTable_Errors(t *testing.T) {
	tests := []struct {
		name     string
		patterns []Pattern
		want     error
	}{
		{"empty", nil, ErrEmptyPatternTable},
		{"blank name", []Pattern{{Name: "  "}}, ErrInvalidPatternName},
		{"starts with digit", []Pattern{{Name: "1t"}}, ErrInvalidPatternName},
		{"contains paren", []Pattern{{Name: "t("}}, ErrInvalidPatternName},
		{"duplicate", []Pattern{{Name: "_"}, {Name: "_", Plural: true}}, ErrDuplicatePattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatternTable(tt.patterns)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPatternTable_Match(t *testing.T) {
	table, err := NewPatternTable(DefaultPatterns())
	require.NoError(t, err)

	tests := []struct {
		text string
		at   int
		name string
		end  int
		ok   bool
	}{
		{"_('a')", 0, "_", 2, true},
		{"_dfn (x", 0, "_dfn", 6, true},
		{"_\v('vt')", 0, "_", 3, true},
		{"_n \t\r\n\f(", 0, "_n", 8, true},
		{"x._n(", 2, "_n", 5, true},
		{"a_(", 1, "", 0, false},
		{"_x(", 0, "", 0, false},
		{"_d", 0, "", 0, false},
		{"__(", 1, "", 0, false},
	}

	for _, tt := range tests {
		p, end, ok := table.match(tt.text, tt.at)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.name, p.Name, tt.text)
		assert.Equal(t, tt.end, end, tt.text)
	}
}

func TestPatternTable_PatternsIsCopy(t *testing.T) {
	table, err := NewPatternTable([]Pattern{{Name: " t "}})
	require.NoError(t, err)

	got := table.Patterns()
	require.Len(t, got, 1)
	assert.Equal(t, "t", got[0].Name)

	got[0].Name = "changed"
	assert.Equal(t, "t", table.Patterns()[0].Name)
}

func TestPattern_Kind(t *testing.T) {
	assert.Equal(t, "plain", Pattern{Name: "_"}.Kind())
	assert.Equal(t, "plural", Pattern{Name: "_n", Plural: true}.Kind())
	assert.Equal(t, "domained", Pattern{Name: "_d", Domained: true}.Kind())
	assert.Equal(t, "domained plural", Pattern{Name: "_dn", Domained: true, Plural: true}.Kind())
}
