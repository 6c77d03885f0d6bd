// Package gitscope narrows an extraction to the files changed since a git
// revision.
package gitscope

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"l10n-extractor/internal/filewalker"

	"github.com/rs/zerolog/log"
)

// ChangedFiles returns the absolute paths of files added, copied, modified or
// renamed between rev and the working tree of the repository containing dir.
func ChangedFiles(ctx context.Context, dir, rev string) (map[string]struct{}, error) {
	root, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	root = strings.TrimSpace(root)

	output, err := git(ctx, root, "diff", "--name-only", "--diff-filter=ACMR", rev, "--")
	if err != nil {
		return nil, err
	}

	changed := parseNameOnly(output, root)
	log.Info().Str("rev", rev).Int("files", len(changed)).Msg("Found changed files in Git diff")
	return changed, nil
}

// Filter keeps the entries whose path is in changed, preserving order. Paths
// are compared with symlinks resolved, as git reports them.
func Filter(entries []filewalker.FileEntry, changed map[string]struct{}) []filewalker.FileEntry {
	kept := entries[:0:0]
	for _, e := range entries {
		path := e.Path
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
		if _, ok := changed[path]; ok {
			kept = append(kept, e)
		}
	}
	return kept
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(output), nil
}

// parseNameOnly reads `git diff --name-only` output, whose paths are relative
// to the repository root.
func parseNameOnly(output, root string) map[string]struct{} {
	files := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			files[filepath.Join(root, filepath.FromSlash(line))] = struct{}{}
		}
	}
	return files
}
