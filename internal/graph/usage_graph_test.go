package graph

import (
	"testing"

	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/textutil"

	"github.com/stretchr/testify/assert"
)

func TestUsageParams(t *testing.T) {
	rec := extract.Record{
		SourceTexts:  []string{`'it\'s'`, `"they're"`},
		Domain:       "'ui'",
		FunctionName: "_dn",
		Line:         4,
		Column:       9,
		SourceFile:   "src/app.js",
	}

	row := usageParams(rec)
	assert.Equal(t, map[string]any{
		"hash":     textutil.MessageHash("ui", []string{"it's", "they're"}),
		"domain":   "ui",
		"text":     "it's",
		"plural":   "they're",
		"file":     "src/app.js",
		"line":     int64(4),
		"column":   int64(9),
		"function": "_dn",
	}, row)
}

func TestUsageParams_NonLiteralKeptRaw(t *testing.T) {
	row := usageParams(extract.Record{SourceTexts: []string{"label"}, FunctionName: "_", Line: 1, Column: 1})
	assert.Equal(t, "label", row["text"])
	assert.Equal(t, "", row["plural"])
	assert.Equal(t, "", row["domain"])
}

func TestUsageParams_QuoteStyleSharesHash(t *testing.T) {
	single := usageParams(extract.Record{SourceTexts: []string{"'Hi'"}, FunctionName: "_"})
	double := usageParams(extract.Record{SourceTexts: []string{`"Hi"`}, FunctionName: "_"})
	assert.Equal(t, single["hash"], double["hash"])
	assert.Equal(t, textutil.MessageHash("", []string{"Hi"}), single["hash"])
}
