package cache

import (
	"fmt"
	"sync/atomic"

	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/textutil"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

// ScanCache remembers scan results by file content, so identical files (copied
// fixtures, duplicated vendored bundles) are scanned once per run.
type ScanCache struct {
	entries *lru.Cache[string, extract.Result]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewScanCache creates a cache holding at most size results.
func NewScanCache(size int) (*ScanCache, error) {
	if size < 1 {
		size = 1
	}
	entries, err := lru.New[string, extract.Result](size)
	if err != nil {
		return nil, fmt.Errorf("create scan cache: %w", err)
	}
	return &ScanCache{entries: entries}, nil
}

// Get returns the cached result for content, re-labelled with sourceFile.
func (c *ScanCache) Get(content, sourceFile string) (extract.Result, bool) {
	res, ok := c.entries.Get(textutil.Hash(content))
	if !ok {
		c.misses.Add(1)
		return extract.Result{}, false
	}
	c.hits.Add(1)
	return relabel(res, sourceFile), true
}

// Set stores the result of scanning content.
func (c *ScanCache) Set(content string, res extract.Result) {
	c.entries.Add(textutil.Hash(content), res)
}

// Stats returns hit and miss counts since creation.
func (c *ScanCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// LogStats writes the hit ratio at debug level.
func (c *ScanCache) LogStats() {
	hits, misses := c.Stats()
	log.Debug().Int64("hits", hits).Int64("misses", misses).Int("entries", c.entries.Len()).Msg("Scan cache")
}

// relabel copies res so the cached value is never shared with callers.
func relabel(res extract.Result, sourceFile string) extract.Result {
	out := extract.Result{
		Records:     make([]extract.Record, len(res.Records)),
		Diagnostics: make([]extract.Diagnostic, len(res.Diagnostics)),
	}
	for i, r := range res.Records {
		r.SourceFile = sourceFile
		r.SourceTexts = append([]string(nil), r.SourceTexts...)
		r.AllArguments = append([]string(nil), r.AllArguments...)
		out.Records[i] = r
	}
	for i, d := range res.Diagnostics {
		d.SourceFile = sourceFile
		out.Diagnostics[i] = d
	}
	return out
}
