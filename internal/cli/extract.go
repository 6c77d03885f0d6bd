package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"l10n-extractor/internal/cache"
	"l10n-extractor/internal/catalog"
	"l10n-extractor/internal/config"
	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/filewalker"
	"l10n-extractor/internal/gitscope"
	"l10n-extractor/internal/graph"
	"l10n-extractor/internal/runner"
	"l10n-extractor/internal/store"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrCatalogStale is returned by extract --check when the catalog on disk
// differs from a fresh extraction.
var ErrCatalogStale = errors.New("catalog is out of date")

type extractOptions struct {
	include      []string
	exclude      []string
	patternsFile string
	strict       bool
	maxDepth     int
	output       string
	format       string
	records      string
	merge        bool
	check        bool
	changedSince string
	toDB         bool
	toGraph      bool
	workers      int
	timeout      time.Duration
}

func extractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [paths...]",
		Short: "Scan source files and write the message catalog",
		Long: `Walks the given files and directories (default: current directory), extracts
every localization call and writes the message catalog. Existing translations in
the output file are kept. With --check nothing is written and the command fails
when the catalog on disk is out of date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			cfg := config.Load()
			applyOverrides(cmd, cfg, opts)
			return runExtract(cmd.Context(), cmd.OutOrStdout(), cfg, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.include, "include", nil, "Glob patterns of files to scan (default: common source extensions)")
	f.StringSliceVar(&opts.exclude, "exclude", nil, "Glob patterns of files to skip")
	f.StringVar(&opts.patternsFile, "patterns", "", "YAML pattern table (default: PATTERNS_FILE or the built-in table)")
	f.BoolVar(&opts.strict, "strict", false, "Balance brackets inside arguments, ignore backslashes in comments and reject non-literal messages")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "Maximum nesting depth (default: MAX_SCAN_DEPTH)")
	f.StringVarP(&opts.output, "output", "o", "messages.json", "Catalog path, or - for stdout")
	f.StringVar(&opts.format, "format", catalog.FormatJSON, "Catalog format: json or tsv")
	f.StringVar(&opts.records, "records", "", "Also write the raw records and diagnostics as JSON to this path")
	f.BoolVar(&opts.merge, "merge", true, "Keep translations from the existing catalog")
	f.BoolVar(&opts.check, "check", false, "Fail if the catalog on disk is out of date instead of writing it")
	f.StringVar(&opts.changedSince, "changed-since", "", "Only scan files changed since this git revision; the catalog is not written")
	f.BoolVar(&opts.toDB, "db", false, "Save the run to PostgreSQL (DATABASE_URL)")
	f.BoolVar(&opts.toGraph, "graph", false, "Update the Neo4j usage graph (NEO4J_URI)")
	f.IntVar(&opts.workers, "workers", 0, "Concurrent file scans (default: WORKER_COUNT)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Per-file scan budget (default: FILE_TIMEOUT)")

	return cmd
}

// applyOverrides lets explicit flags win over the environment.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts *extractOptions) {
	if cmd.Flags().Changed("workers") {
		cfg.WorkerCount = opts.workers
	}
	if cmd.Flags().Changed("timeout") {
		cfg.FileTimeout = opts.timeout
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxScanDepth = opts.maxDepth
	}
	if opts.patternsFile != "" {
		cfg.PatternsFile = opts.patternsFile
	}
}

func runExtract(ctx context.Context, out io.Writer, cfg *config.Config, opts *extractOptions, roots []string) error {
	startedAt := time.Now()
	partial := opts.changedSince != ""
	if partial && opts.check {
		return errors.New("--check cannot be combined with --changed-since")
	}

	table, err := config.LoadPatternTable(cfg.PatternsFile)
	if err != nil {
		return err
	}

	walker, err := filewalker.NewWalker(filewalker.Options{Include: opts.include, Exclude: opts.exclude})
	if err != nil {
		return err
	}
	entries, err := walker.Walk(roots...)
	if err != nil {
		return fmt.Errorf("walk input: %w", err)
	}
	if partial {
		changed, err := gitscope.ChangedFiles(ctx, repoDir(roots[0]), opts.changedSince)
		if err != nil {
			return err
		}
		entries = gitscope.Filter(entries, changed)
	}
	log.Info().Int("files", len(entries)).Msg("Starting extraction")

	var scanCache *cache.ScanCache
	if cfg.ScanCacheSize > 0 {
		if scanCache, err = cache.NewScanCache(cfg.ScanCacheSize); err != nil {
			return err
		}
	}

	extractor := extract.New(table, extract.Options{Strict: opts.strict, MaxDepth: cfg.MaxScanDepth})
	sum := runner.New(extractor, runner.Options{
		Workers:     cfg.WorkerCount,
		FileTimeout: cfg.FileTimeout,
		Cache:       scanCache,
	}).Run(ctx, entries)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("extraction cancelled: %w", err)
	}

	if opts.records != "" && !opts.check {
		if err := writeRecords(opts.records, sum); err != nil {
			return err
		}
	}

	run := store.Run{
		ID:          uuid.New(),
		StartedAt:   startedAt,
		Roots:       roots,
		Files:       len(entries),
		Diagnostics: len(sum.Diagnostics),
		Failed:      sum.Failed,
	}

	if partial {
		fmt.Fprintf(out, "%d records, %d diagnostics in %d changed files\n",
			len(sum.Records), len(sum.Diagnostics), len(entries))
		return runSinks(ctx, cfg, opts, run, sum.Records)
	}

	cat := catalog.Build(sum.Records)
	if cat.Skipped > 0 {
		log.Warn().Int("records", cat.Skipped).Msg("Skipped calls with non-literal messages")
	}

	toDisk := opts.output != "-"
	if toDisk && opts.format != catalog.FormatTSV && (opts.merge || opts.check) {
		existing, err := catalog.Load(opts.output)
		if err != nil {
			return err
		}
		cat = cat.Merge(existing)
	}

	data, err := cat.Encode(opts.format)
	if err != nil {
		return err
	}

	if opts.check {
		return checkCatalog(out, opts.output, data)
	}

	if err := writeOutput(out, opts.output, data); err != nil {
		return err
	}

	if toDisk {
		st := cat.Stats()
		fmt.Fprintf(out, "%d messages (%d untranslated) from %d records in %d files -> %s\n",
			st.Total, st.Untranslated, len(sum.Records), len(entries), opts.output)
	}

	return runSinks(ctx, cfg, opts, run, sum.Records)
}

// repoDir returns the directory git commands run in for root.
func repoDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

func checkCatalog(out io.Writer, path string, fresh []byte) error {
	current, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read catalog: %w", err)
	}

	diff := catalog.Diff(path, "extracted", current, fresh)
	if diff == "" {
		log.Info().Str("path", path).Msg("Catalog is up to date")
		return nil
	}

	fmt.Fprint(out, diff)
	return fmt.Errorf("%s: %w", path, ErrCatalogStale)
}

func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := out.Write(data)
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	log.Info().Str("path", path).Msg("Wrote catalog")
	return nil
}

func writeRecords(path string, sum runner.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create records file: %w", err)
	}
	defer f.Close()

	res := extract.Result{Records: sum.Records, Diagnostics: sum.Diagnostics}
	if res.Records == nil {
		res.Records = []extract.Record{}
	}
	if res.Diagnostics == nil {
		res.Diagnostics = []extract.Diagnostic{}
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(res); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	log.Info().Str("path", path).Int("records", len(res.Records)).Msg("Wrote records")
	return nil
}

// runSinks saves the run to PostgreSQL and Neo4j concurrently.
func runSinks(ctx context.Context, cfg *config.Config, opts *extractOptions, run store.Run, records []extract.Record) error {
	g, gctx := errgroup.WithContext(ctx)

	if opts.toDB {
		g.Go(func() error {
			pgPool, err := connectPostgres(gctx, cfg)
			if err != nil {
				return err
			}
			defer pgPool.Close()

			recordStore := store.NewRecordStore(pgPool)
			if err := recordStore.EnsureSchema(gctx); err != nil {
				return err
			}
			_, err = recordStore.SaveRun(gctx, run, records)
			return err
		})
	}

	if opts.toGraph {
		g.Go(func() error {
			driver, err := connectNeo4j(gctx, cfg)
			if err != nil {
				return err
			}
			defer driver.Close(gctx)

			usageGraph := graph.NewUsageGraph(driver)
			if err := usageGraph.EnsureSchema(gctx); err != nil {
				return fmt.Errorf("ensure graph schema: %w", err)
			}
			return usageGraph.UpsertUsages(gctx, records)
		})
	}

	return g.Wait()
}
