package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog/log"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatTSV  = "tsv"
)

// ErrUnknownFormat is returned for an output format other than json or tsv.
var ErrUnknownFormat = errors.New("unknown catalog format")

// Load reads a JSON catalog. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Catalog{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("path", path).Int("entries", len(c.Entries)).Msg("Loaded catalog")
	return c, nil
}

// Decode parses a JSON catalog.
func Decode(r io.Reader) (*Catalog, error) {
	var c Catalog
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &c, nil
}

// WriteJSON writes c as indented JSON.
func (c *Catalog) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if c.Entries == nil {
		c.Entries = []Entry{}
	}
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// WriteTSV writes one row per entry. Plural translations are joined with
// " | ".
func (c *Catalog) WriteTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "domain\tmsgid\tmsgid_plural\ttranslation\tstatus\treferences"); err != nil {
		return err
	}

	for _, e := range c.Entries {
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			escapeTSV(e.Domain),
			escapeTSV(e.MsgID),
			escapeTSV(e.MsgIDPlural),
			escapeTSV(strings.Join(e.Translations, " | ")),
			e.status(),
			strings.Join(e.References, " "),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (e Entry) status() string {
	switch {
	case e.Obsolete:
		return "obsolete"
	case e.Fuzzy:
		return "fuzzy"
	case e.Translated():
		return "translated"
	default:
		return "untranslated"
	}
}

// Encode renders c in the given format.
func (c *Catalog) Encode(format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON, "":
		err = c.WriteJSON(&buf)
	case FormatTSV:
		err = c.WriteTSV(&buf)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Diff returns a unified diff from a to b, or "" when they are equal.
func Diff(aName, bName string, a, b []byte) string {
	if bytes.Equal(a, b) {
		return ""
	}

	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: aName,
		ToFile:   bName,
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return fmt.Sprintf("--- %s\n+++ %s\n@@ content differs @@\n", aName, bName)
	}
	return s
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
