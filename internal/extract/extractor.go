// Package extract finds calls to localization functions in raw source text.
//
// The scanner is a small recursive-descent walker rather than a parser. Each
// lexical context (string literal, comment, call argument list, single
// argument) is a nested scan with its own terminating closer, so call syntax
// inside strings and comments is never mistaken for a real call. No syntax
// tree is built and identifiers are never resolved.
//
// By default brackets inside an argument list are not tracked: a ")" or ","
// outside strings and comments ends the argument list or argument at its
// first occurrence. A backslash consumes the next character everywhere, even
// in comments, so a line comment ending in "\" continues on the next line.
// Options.Strict balances (), [] and {} inside arguments, ignores backslashes
// in comments and reports calls it cannot flatten safely instead of splitting
// them wrongly.
package extract

import (
	"context"
	"fmt"
)

// DefaultMaxDepth bounds the nesting of strings, comments and (in strict
// mode) bracket groups.
const DefaultMaxDepth = 64

// Options tune a scan.
type Options struct {
	// Strict balances nested brackets in argument lists, treats backslashes
	// in comments as plain text and rejects message arguments that are not
	// plain string literals.
	Strict bool
	// MaxDepth caps the recursion depth. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Extractor scans source buffers against one pattern table. It holds no
// per-scan state and may be shared by concurrent goroutines.
type Extractor struct {
	table *PatternTable
	opts  Options
}

// New creates an Extractor.
func New(table *PatternTable, opts Options) *Extractor {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Extractor{table: table, opts: opts}
}

// Table returns the pattern table the extractor matches against.
func (e *Extractor) Table() *PatternTable { return e.table }

// Extract scans text in full. sourceFile is copied into every record and
// diagnostic and is otherwise opaque.
func (e *Extractor) Extract(sourceFile, text string) Result {
	res, _ := e.ExtractContext(context.Background(), sourceFile, text)
	return res
}

// ExtractContext is Extract with cancellation. When ctx ends mid-scan the
// partial result is returned together with the context error.
func (e *Extractor) ExtractContext(ctx context.Context, sourceFile, text string) (Result, error) {
	k := &sink{
		ctx:        ctx,
		sourceFile: sourceFile,
		table:      e.table,
		strict:     e.opts.Strict,
		maxDepth:   e.opts.MaxDepth,
	}

	newTopState(text, k).scan()

	res := Result{Records: k.records, Diagnostics: k.diagnostics}
	if k.err != nil {
		return res, fmt.Errorf("scan %s: %w", sourceFile, k.err)
	}
	return res, nil
}
