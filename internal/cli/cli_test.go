package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"l10n-extractor/internal/catalog"
	"l10n-extractor/internal/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "app.js"), "_('Hello'); _n(n, 'file', 'files');\n_d('ui', 'Save') // _('ignored')\n")
	writeFile(t, filepath.Join(src, "notes.md"), "_('not scanned')")

	out := filepath.Join(dir, "i18n", "messages.json")
	records := filepath.Join(dir, "records.json")

	stdout, err := run(t, "extract", src, "-o", out, "--records", records)
	require.NoError(t, err)
	assert.Contains(t, stdout, "3 messages (3 untranslated) from 3 records in 1 files")

	cat, err := catalog.Load(out)
	require.NoError(t, err)
	require.Len(t, cat.Entries, 3)
	assert.Equal(t, "Hello", cat.Entries[0].MsgID)
	assert.Equal(t, "files", cat.Entries[1].MsgIDPlural)
	assert.Equal(t, "ui", cat.Entries[2].Domain)
	assert.Equal(t, []string{"app.js:2"}, cat.Entries[2].References)

	data, err := os.ReadFile(records)
	require.NoError(t, err)
	var res extract.Result
	require.NoError(t, json.Unmarshal(data, &res))
	require.Len(t, res.Records, 3)
	assert.Equal(t, "_d", res.Records[2].FunctionName)
	assert.Empty(t, res.Diagnostics)
}

func TestExtractCommand_KeepsTranslations(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.js")
	out := filepath.Join(dir, "messages.json")
	writeFile(t, src, "_('Hello %s')")

	_, err := run(t, "extract", src, "-o", out)
	require.NoError(t, err)

	cat, err := catalog.Load(out)
	require.NoError(t, err)
	cat.Entries[0].Translations = []string{"Bonjour %s"}
	f, err := os.Create(out)
	require.NoError(t, err)
	require.NoError(t, cat.WriteJSON(f))
	require.NoError(t, f.Close())

	_, err = run(t, "extract", src, "-o", out)
	require.NoError(t, err)

	cat, err = catalog.Load(out)
	require.NoError(t, err)
	require.Len(t, cat.Entries, 1)
	assert.Equal(t, []string{"Bonjour %s"}, cat.Entries[0].Translations)
	assert.False(t, cat.Entries[0].Fuzzy)
}

func TestExtractCommand_Check(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	writeFile(t, filepath.Join(src, "a.js"), "_('One')")
	out := filepath.Join(dir, "messages.json")

	_, err := run(t, "extract", src, "-o", out)
	require.NoError(t, err)

	_, err = run(t, "extract", src, "-o", out, "--check")
	require.NoError(t, err)

	writeFile(t, filepath.Join(src, "b.js"), "_('Two')")
	before, err := os.ReadFile(out)
	require.NoError(t, err)

	stdout, err := run(t, "extract", src, "-o", out, "--check")
	require.ErrorIs(t, err, ErrCatalogStale)
	assert.Contains(t, stdout, "+++ extracted")
	assert.Contains(t, stdout, `"msgid": "Two"`)

	after, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestExtractCommand_InvalidPatternTable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.js")
	writeFile(t, src, "_('One')")
	patterns := filepath.Join(dir, "patterns.yaml")
	writeFile(t, patterns, "patterns:\n  - name: _\n  - name: _\n")
	out := filepath.Join(dir, "messages.json")

	_, err := run(t, "extract", src, "-o", out, "--patterns", patterns)
	require.ErrorIs(t, err, extract.ErrDuplicatePattern)
	assert.NoFileExists(t, out)
}

func TestExtractCommand_StdoutTSV(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.js")
	writeFile(t, src, "t('Hi')")
	patterns := filepath.Join(dir, "patterns.yaml")
	writeFile(t, patterns, "patterns:\n  - name: t\n")

	stdout, err := run(t, "extract", src, "-o", "-", "--format", "tsv", "--patterns", patterns)
	require.NoError(t, err)
	want := "domain\tmsgid\tmsgid_plural\ttranslation\tstatus\treferences\n" +
		"\tHi\t\t\tuntranslated\t" + filepath.ToSlash(src) + ":1\n"
	assert.Equal(t, want, stdout)
}

func TestExtractCommand_ChangedSince(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	runGit := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-c", "user.name=test", "-c", "user.email=test@example.com"}, args...)...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}

	writeFile(t, filepath.Join(dir, "a.js"), "_('a')")
	writeFile(t, filepath.Join(dir, "b.js"), "_('b')")
	runGit("init", "-q")
	runGit("add", ".")
	runGit("commit", "-q", "-m", "init")
	writeFile(t, filepath.Join(dir, "a.js"), "_('a'); _('a2')")

	out := filepath.Join(dir, "messages.json")
	stdout, err := run(t, "extract", dir, "--changed-since", "HEAD", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2 records, 0 diagnostics in 1 changed files")
	assert.NoFileExists(t, out)

	_, err = run(t, "extract", dir, "--changed-since", "HEAD", "--check")
	assert.Error(t, err)
}

func TestStatsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	cat := &catalog.Catalog{Entries: []catalog.Entry{
		{MsgID: "a", Translations: []string{"x"}},
		{MsgID: "b"},
		{Domain: "ui", MsgID: "c", Translations: []string{"y"}, Fuzzy: true},
	}}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, cat.WriteJSON(f))
	require.NoError(t, f.Close())

	stdout, err := run(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(default)")
	assert.Contains(t, stdout, "ui")
}

func TestPatternsCommand(t *testing.T) {
	stdout, err := run(t, "patterns")
	require.NoError(t, err)
	for _, name := range []string{"_", "_f", "_n", "_fn", "_d", "_df", "_dn", "_dfn"} {
		assert.Contains(t, stdout, name)
	}
	assert.Contains(t, stdout, "domained plural")
}
