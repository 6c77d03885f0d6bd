// Package catalog turns extraction records into a translation catalog and
// merges it with the catalog already on disk.
package catalog

import (
	"sort"
	"strconv"

	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/placeholder"
)

// Entry is one translatable message.
type Entry struct {
	Domain      string `json:"domain,omitempty"`
	MsgID       string `json:"msgid"`
	MsgIDPlural string `json:"msgid_plural,omitempty"`
	// Translations holds one text, or one per plural form.
	Translations []string `json:"translations,omitempty"`
	Placeholders []string `json:"placeholders,omitempty"`
	Functions    []string `json:"functions,omitempty"`
	// References are "file:line" strings, sorted and unique.
	References []string `json:"references,omitempty"`
	// Fuzzy marks translations whose placeholders no longer match the source.
	Fuzzy    bool `json:"fuzzy,omitempty"`
	Obsolete bool `json:"obsolete,omitempty"`
}

func (e Entry) key() string {
	return e.Domain + "\x00" + e.MsgID + "\x00" + e.MsgIDPlural
}

// Translated reports whether every form has a non-empty translation.
func (e Entry) Translated() bool {
	if len(e.Translations) == 0 {
		return false
	}
	for _, t := range e.Translations {
		if t == "" {
			return false
		}
	}
	return true
}

// Catalog is an ordered set of entries.
type Catalog struct {
	Entries []Entry `json:"entries"`
	// Skipped counts records whose message arguments were not literals.
	Skipped int `json:"-"`
}

// Build groups records by domain and decoded message text.
func Build(records []extract.Record) *Catalog {
	c := &Catalog{}
	index := make(map[string]int)

	for _, rec := range records {
		e, ok := entryFor(rec)
		if !ok {
			c.Skipped++
			continue
		}

		ref := rec.SourceFile + ":" + strconv.Itoa(rec.Line)
		if i, seen := index[e.key()]; seen {
			c.Entries[i].References = append(c.Entries[i].References, ref)
			c.Entries[i].Functions = append(c.Entries[i].Functions, rec.FunctionName)
			continue
		}

		e.References = []string{ref}
		e.Functions = []string{rec.FunctionName}
		index[e.key()] = len(c.Entries)
		c.Entries = append(c.Entries, e)
	}

	for i := range c.Entries {
		c.Entries[i].References = uniqueSorted(c.Entries[i].References)
		c.Entries[i].Functions = uniqueSorted(c.Entries[i].Functions)
	}
	c.sort()
	return c
}

func entryFor(rec extract.Record) (Entry, bool) {
	var e Entry
	if rec.Domain != "" {
		domain, err := extract.Unquote(rec.Domain)
		if err != nil {
			return Entry{}, false
		}
		e.Domain = domain
	}
	if len(rec.SourceTexts) == 0 {
		return Entry{}, false
	}

	msgid, err := extract.Unquote(rec.SourceTexts[0])
	if err != nil {
		return Entry{}, false
	}
	e.MsgID = msgid
	e.Placeholders = placeholder.Find(msgid)

	if len(rec.SourceTexts) > 1 {
		plural, err := extract.Unquote(rec.SourceTexts[1])
		if err != nil {
			return Entry{}, false
		}
		e.MsgIDPlural = plural
		if e.Placeholders == nil {
			e.Placeholders = placeholder.Find(plural)
		}
	}
	return e, true
}

// Merge carries translations from existing into c. Entries that vanished
// from the source keep their translations as obsolete; untranslated ones
// are dropped.
func (c *Catalog) Merge(existing *Catalog) *Catalog {
	if existing == nil {
		return c
	}

	old := make(map[string]Entry, len(existing.Entries))
	for _, e := range existing.Entries {
		old[e.key()] = e
	}

	merged := &Catalog{Skipped: c.Skipped, Entries: make([]Entry, 0, len(c.Entries))}
	for _, e := range c.Entries {
		if prev, ok := old[e.key()]; ok {
			e.Translations = append([]string(nil), prev.Translations...)
			e.Fuzzy = prev.Fuzzy || !translationsKeepPlaceholders(e, prev.Translations)
			delete(old, e.key())
		}
		merged.Entries = append(merged.Entries, e)
	}

	for _, e := range old {
		if !e.Translated() {
			continue
		}
		e.Obsolete = true
		e.References = nil
		merged.Entries = append(merged.Entries, e)
	}

	merged.sort()
	return merged
}

func translationsKeepPlaceholders(e Entry, translations []string) bool {
	for i, t := range translations {
		if t == "" {
			continue
		}
		source := e.MsgID
		if i > 0 && e.MsgIDPlural != "" {
			source = e.MsgIDPlural
		}
		if !placeholder.Same(source, t) {
			return false
		}
	}
	return true
}

// Stats summarizes translation progress.
type Stats struct {
	Total        int
	Translated   int
	Fuzzy        int
	Obsolete     int
	Untranslated int
}

// Stats counts entries by state.
func (c *Catalog) Stats() Stats {
	var s Stats
	for _, e := range c.Entries {
		switch {
		case e.Obsolete:
			s.Obsolete++
			continue
		case e.Fuzzy:
			s.Fuzzy++
		case e.Translated():
			s.Translated++
		default:
			s.Untranslated++
		}
		s.Total++
	}
	return s
}

func (c *Catalog) sort() {
	sort.SliceStable(c.Entries, func(i, j int) bool {
		a, b := c.Entries[i], c.Entries[j]
		if a.Obsolete != b.Obsolete {
			return !a.Obsolete
		}
		return a.key() < b.key()
	})
}

func uniqueSorted(items []string) []string {
	sort.Strings(items)
	out := items[:0]
	for i, s := range items {
		if i > 0 && s == items[i-1] {
			continue
		}
		out = append(out, s)
	}
	return out
}
