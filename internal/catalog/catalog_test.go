package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"l10n-extractor/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []extract.Record {
	return []extract.Record{
		{SourceTexts: []string{"'Hello %s'"}, FunctionName: "_", Line: 3, SourceFile: "b.js"},
		{SourceTexts: []string{`"Hello %s"`}, FunctionName: "_f", Line: 1, SourceFile: "a.js"},
		{SourceTexts: []string{"'file'", "'files'"}, Domain: "'ui'", FunctionName: "_dn", Line: 2, SourceFile: "a.js"},
		{SourceTexts: []string{"label"}, FunctionName: "_", Line: 9, SourceFile: "a.js"},
		{SourceTexts: []string{"'Hello %s'"}, FunctionName: "_", Line: 3, SourceFile: "b.js"},
	}
}

func TestBuild_GroupsByDecodedText(t *testing.T) {
	c := Build(sampleRecords())

	assert.Equal(t, 1, c.Skipped)
	require.Len(t, c.Entries, 2)

	hello := c.Entries[0]
	assert.Equal(t, "", hello.Domain)
	assert.Equal(t, "Hello %s", hello.MsgID)
	assert.Equal(t, []string{"%s"}, hello.Placeholders)
	assert.Equal(t, []string{"a.js:1", "b.js:3"}, hello.References)
	assert.Equal(t, []string{"_", "_f"}, hello.Functions)

	file := c.Entries[1]
	assert.Equal(t, "ui", file.Domain)
	assert.Equal(t, "file", file.MsgID)
	assert.Equal(t, "files", file.MsgIDPlural)
	assert.Nil(t, file.Placeholders)
}

func TestBuild_DecodesEscapes(t *testing.T) {
	c := Build([]extract.Record{
		{SourceTexts: []string{`'it\'s\n'`}, FunctionName: "_", Line: 1, SourceFile: "x.js"},
	})
	require.Len(t, c.Entries, 1)
	assert.Equal(t, "it's\n", c.Entries[0].MsgID)
}

func TestMerge(t *testing.T) {
	fresh := Build([]extract.Record{
		{SourceTexts: []string{"'Hello %s'"}, FunctionName: "_", Line: 1, SourceFile: "a.js"},
		{SourceTexts: []string{"'Count {n}'"}, FunctionName: "_", Line: 2, SourceFile: "a.js"},
		{SourceTexts: []string{"'New'"}, FunctionName: "_", Line: 3, SourceFile: "a.js"},
	})
	existing := &Catalog{Entries: []Entry{
		{MsgID: "Hello %s", Translations: []string{"Bonjour %s"}},
		{MsgID: "Count {n}", Translations: []string{"Compte"}},
		{MsgID: "Gone", Translations: []string{"Parti"}, References: []string{"old.js:1"}},
		{MsgID: "Gone untranslated"},
	}}

	merged := fresh.Merge(existing)

	var ids []string
	for _, e := range merged.Entries {
		ids = append(ids, e.MsgID)
	}
	assert.Equal(t, []string{"Count {n}", "Hello %s", "New", "Gone"}, ids)

	count, hello, added, gone := merged.Entries[0], merged.Entries[1], merged.Entries[2], merged.Entries[3]
	assert.True(t, count.Fuzzy)
	assert.Equal(t, []string{"Bonjour %s"}, hello.Translations)
	assert.False(t, hello.Fuzzy)
	assert.Empty(t, added.Translations)
	assert.True(t, gone.Obsolete)
	assert.Nil(t, gone.References)

	assert.Equal(t, Stats{Total: 3, Translated: 1, Fuzzy: 1, Obsolete: 1, Untranslated: 1}, merged.Stats())
}

func TestMerge_NilExisting(t *testing.T) {
	c := Build(sampleRecords())
	assert.Same(t, c, c.Merge(nil))
}

func TestWriteJSON_LoadRoundTrip(t *testing.T) {
	c := Build([]extract.Record{
		{SourceTexts: []string{"'<b>Bold</b>'"}, FunctionName: "_", Line: 1, SourceFile: "a.js"},
	})
	c.Entries[0].Translations = []string{"<b>Gras</b>"}

	data, err := c.Encode(FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msgid": "<b>Bold</b>"`)

	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Entries, loaded.Entries)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, c.Entries)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteTSV(t *testing.T) {
	c := &Catalog{Entries: []Entry{
		{MsgID: "a\tb", Translations: []string{"x"}, References: []string{"a.js:1", "b.js:2"}},
		{Domain: "ui", MsgID: "file", MsgIDPlural: "files", Translations: []string{"fichier", ""}},
	}}

	data, err := c.Encode(FormatTSV)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "\ta\\tb\t\tx\ttranslated\ta.js:1 b.js:2", lines[1])
	assert.Equal(t, "ui\tfile\tfiles\tfichier | \tuntranslated\t", lines[2])
}

func TestEncode_UnknownFormat(t *testing.T) {
	_, err := (&Catalog{}).Encode("po")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff("a", "b", []byte("same\n"), []byte("same\n")))

	d := Diff("messages.json", "extracted", []byte("one\ntwo\n"), []byte("one\nthree\n"))
	assert.Contains(t, d, "--- messages.json")
	assert.Contains(t, d, "+++ extracted")
	assert.Contains(t, d, "-two")
	assert.Contains(t, d, "+three")
}
