package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"l10n-extractor/internal/extract"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// patternFile is the on-disk shape of a pattern table:
//
//	patterns:
//	  - name: _
//	  - name: _n
//	    plural: true
//	  - name: _dn
//	    domained: true
//	    plural: true
type patternFile struct {
	Patterns []extract.Pattern `yaml:"patterns"`
}

// LoadPatternTable reads a YAML pattern table from path, or returns the
// built-in table when path is empty. Any problem is fatal for the run.
func LoadPatternTable(path string) (*extract.PatternTable, error) {
	if path == "" {
		return extract.NewPatternTable(extract.DefaultPatterns())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}

	patterns, err := ParsePatterns(data)
	if err != nil {
		return nil, fmt.Errorf("parse pattern file %s: %w", path, err)
	}

	table, err := extract.NewPatternTable(patterns)
	if err != nil {
		return nil, fmt.Errorf("pattern file %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("patterns", len(patterns)).Msg("Loaded pattern table")
	return table, nil
}

// ParsePatterns decodes a YAML pattern table. Unknown keys are rejected so
// that typos such as "plurals:" do not silently change classification.
func ParsePatterns(data []byte) ([]extract.Pattern, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var pf patternFile
	if err := dec.Decode(&pf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, extract.ErrEmptyPatternTable
		}
		return nil, err
	}
	return pf.Patterns, nil
}
