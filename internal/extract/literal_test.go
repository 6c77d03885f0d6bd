package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLiteral(t *testing.T) {
	for raw, want := range map[string]bool{
		`'a'`:         true,
		`"a \" b"`:    true,
		"`x`":         true,
		`''`:          true,
		`'a' + 'b'`:   false,
		`name`:        false,
		`'unclosed`:   false,
		`"a" `:        false,
		`'`:           false,
		`fmt("a", b)`: false,
	} {
		assert.Equal(t, want, IsLiteral(raw), raw)
	}
}

func TestUnquote(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`'Hello'`, "Hello"},
		{`"He said \"hi\""`, `He said "hi"`},
		{`'it\'s'`, "it's"},
		{`'tab\there\nnew'`, "tab\there\nnew"},
		{`'\x41é\u{1F600}'`, "Aé😀"},
		{`'😀'`, "😀"},
		{"'line\\\ncontinued'", "linecontinued"},
		{`'back\\slash'`, `back\slash`},
		{`'\q'`, "q"},
		{"`raw ${x}`", "raw ${x}"},
	}

	for _, tt := range tests {
		got, err := Unquote(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	_, err := Unquote("count")
	require.ErrorIs(t, err, ErrNotLiteral)
}

func TestRecordMessage(t *testing.T) {
	rec := Record{Domain: `"ui"`, SourceTexts: []string{`'it\'s'`, "label"}}
	domain, texts := rec.Message()
	assert.Equal(t, "ui", domain)
	assert.Equal(t, []string{"it's", "label"}, texts)
	assert.Equal(t, []string{`'it\'s'`, "label"}, rec.SourceTexts)

	domain, texts = Record{SourceTexts: []string{`"Hi"`}}.Message()
	assert.Equal(t, "", domain)
	assert.Equal(t, []string{"Hi"}, texts)
}
