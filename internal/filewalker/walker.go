package filewalker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// DefaultInclude matches the source files localization calls usually live in.
var DefaultInclude = []string{
	"**.{js,jsx,mjs,cjs,ts,tsx,vue,svelte}",
	"**.{py,php,rb,go,html,hbs,njk,twig}",
}

// DefaultMaxFileSize skips generated bundles and other oversized inputs.
const DefaultMaxFileSize int64 = 8 * 1024 * 1024

// skippedDirs are never descended into.
var skippedDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	"node_modules": {},
	"vendor":       {},
	"__pycache__":  {},
	"dist":         {},
	"build":        {},
	".next":        {},
	".cache":       {},
	"coverage":     {},
}

// ErrInvalidPattern indicates a glob pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// Options controls which files a Walker yields.
type Options struct {
	// Include globs are matched against slash-separated paths relative to the
	// walked root. Empty means DefaultInclude.
	Include []string
	// Exclude globs win over Include.
	Exclude []string
	// MaxFileSize skips larger files. Zero means DefaultMaxFileSize.
	MaxFileSize int64
}

// Walker traverses roots and collects the files to scan.
type Walker struct {
	include []glob.Glob
	exclude []glob.Glob
	maxSize int64
}

// NewWalker compiles the include and exclude globs.
func NewWalker(opts Options) (*Walker, error) {
	includes := opts.Include
	if len(includes) == 0 {
		includes = DefaultInclude
	}

	include, err := compileGlobs(includes)
	if err != nil {
		return nil, err
	}
	exclude, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, err
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Walker{include: include, exclude: exclude, maxSize: maxSize}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, fmt.Errorf("%q: %w", pattern, err))
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

// FileEntry represents a discovered file ready for scanning.
type FileEntry struct {
	// Path is absolute.
	Path string
	// Rel is slash-separated and relative to the root it was found under; it is
	// what records carry as their source file.
	Rel  string
	Size int64
}

// Walk discovers matching files under each root. A root may also be a single
// file, which is taken as-is without glob filtering. Entries are returned in
// root order, then lexical order, without duplicates.
func (w *Walker) Walk(roots ...string) ([]FileEntry, error) {
	var entries []FileEntry
	seen := make(map[string]struct{})

	add := func(e FileEntry) {
		if _, dup := seen[e.Path]; dup {
			return
		}
		seen[e.Path] = struct{}{}
		entries = append(entries, e)
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root path: %w", err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat root: %w", err)
		}

		if !info.IsDir() {
			add(FileEntry{Path: abs, Rel: filepath.ToSlash(filepath.Clean(root)), Size: info.Size()})
			continue
		}

		found, err := w.walkDir(abs)
		if err != nil {
			return nil, err
		}
		for _, e := range found {
			add(e)
		}
	}

	log.Info().Int("count", len(entries)).Strs("roots", roots).Msg("Discovered files")
	return entries, nil
}

func (w *Walker) walkDir(root string) ([]FileEntry, error) {
	var entries []FileEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				log.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
				return nil
			}
			return err
		}

		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !w.Match(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > w.maxSize {
			log.Warn().Str("path", rel).Int64("size", info.Size()).Msg("Skipping oversized file")
			return nil
		}

		entries = append(entries, FileEntry{Path: path, Rel: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Rel < entries[j].Rel })
	return entries, nil
}

// Match reports whether a slash-separated relative path passes the globs.
func (w *Walker) Match(rel string) bool {
	for _, g := range w.exclude {
		if g.Match(rel) {
			return false
		}
	}
	for _, g := range w.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}
