// Package runner is the extraction driver: it reads the discovered files,
// scans them concurrently and concatenates the results in walk order.
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"l10n-extractor/internal/cache"
	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/filewalker"
	"l10n-extractor/internal/textutil"
	"l10n-extractor/internal/worker"

	"github.com/rs/zerolog/log"
)

// excerptLen caps the source excerpt logged with a diagnostic.
const excerptLen = 40

// Options configure a Runner.
type Options struct {
	Workers     int
	FileTimeout time.Duration
	// Cache is optional.
	Cache *cache.ScanCache
	// ReadFile defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

// FileResult is the outcome for one file.
type FileResult struct {
	Entry       filewalker.FileEntry
	Records     []extract.Record
	Diagnostics []extract.Diagnostic
	Cached      bool
	Err         error
}

// Summary is the outcome of a whole run.
type Summary struct {
	Files       []FileResult
	Records     []extract.Record
	Diagnostics []extract.Diagnostic
	Failed      int
}

// Runner drives one Extractor over many files.
type Runner struct {
	extractor *extract.Extractor
	opts      Options
}

// New creates a Runner.
func New(extractor *extract.Extractor, opts Options) *Runner {
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	return &Runner{extractor: extractor, opts: opts}
}

// Run scans every entry. Per-file failures are recorded on their FileResult
// and counted; they never stop the run.
func (r *Runner) Run(ctx context.Context, entries []filewalker.FileEntry) Summary {
	start := time.Now()

	pool := worker.NewPool[filewalker.FileEntry, FileResult](r.opts.Workers, r.scanFile).
		WithTaskTimeout(r.opts.FileTimeout)
	tasks := pool.Execute(ctx, entries)

	var sum Summary
	sum.Files = make([]FileResult, 0, len(tasks))

	for _, task := range tasks {
		fr := task.Result
		fr.Entry = task.Input
		if task.Err != nil {
			fr = FileResult{Entry: task.Input, Err: task.Err}
			sum.Failed++
			log.Error().Err(task.Err).Str("file", task.Input.Rel).Msg("Scan failed")
		}

		sum.Files = append(sum.Files, fr)
		sum.Records = append(sum.Records, fr.Records...)
		sum.Diagnostics = append(sum.Diagnostics, fr.Diagnostics...)
	}

	if r.opts.Cache != nil {
		r.opts.Cache.LogStats()
	}

	log.Info().
		Int("files", len(entries)).
		Int("records", len(sum.Records)).
		Int("diagnostics", len(sum.Diagnostics)).
		Int("failed", sum.Failed).
		Dur("elapsed", time.Since(start)).
		Msg("Extraction complete")

	return sum
}

func (r *Runner) scanFile(ctx context.Context, entry filewalker.FileEntry) (FileResult, error) {
	data, err := r.opts.ReadFile(entry.Path)
	if err != nil {
		return FileResult{}, fmt.Errorf("read %s: %w", entry.Rel, err)
	}
	text := string(data)

	if r.opts.Cache != nil {
		if res, ok := r.opts.Cache.Get(text, entry.Rel); ok {
			log.Debug().Str("file", entry.Rel).Msg("Scan cache hit")
			logDiagnostics(text, res.Diagnostics)
			return FileResult{Records: res.Records, Diagnostics: res.Diagnostics, Cached: true}, nil
		}
	}

	res, err := r.extractor.ExtractContext(ctx, entry.Rel, text)
	if err != nil {
		return FileResult{}, err
	}

	if r.opts.Cache != nil {
		r.opts.Cache.Set(text, res)
	}

	log.Debug().Str("file", entry.Rel).Int("records", len(res.Records)).Msg("Scanned file")
	logDiagnostics(text, res.Diagnostics)
	return FileResult{Records: res.Records, Diagnostics: res.Diagnostics}, nil
}

// logDiagnostics warns about each diagnostic with a short excerpt of the
// source starting at its offset.
func logDiagnostics(text string, diags []extract.Diagnostic) {
	for _, d := range diags {
		near := ""
		if d.Offset >= 0 && d.Offset <= len(text) {
			near = textutil.Truncate(text[d.Offset:], excerptLen)
		}
		log.Warn().
			Str("file", d.SourceFile).
			Int("line", d.Line).
			Int("column", d.Column).
			Str("kind", string(d.Kind)).
			Str("near", near).
			Msg(d.Message)
	}
}
