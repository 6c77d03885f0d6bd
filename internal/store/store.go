// Package store persists extraction runs in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"time"

	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/textutil"
	"l10n-extractor/internal/worker"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// batchSize bounds the number of inserts queued per round trip.
const batchSize = 500

var schema = []string{
	`CREATE TABLE IF NOT EXISTS extraction_runs (
		id          UUID PRIMARY KEY,
		started_at  TIMESTAMPTZ NOT NULL,
		roots       TEXT[] NOT NULL,
		files       INTEGER NOT NULL,
		records     INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		failed      INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extraction_records (
		run_id        UUID NOT NULL REFERENCES extraction_runs(id) ON DELETE CASCADE,
		seq           INTEGER NOT NULL,
		source_file   TEXT NOT NULL,
		line          INTEGER NOT NULL,
		col           INTEGER NOT NULL,
		function_name TEXT NOT NULL,
		domain        TEXT NOT NULL,
		source_texts  TEXT[] NOT NULL,
		all_arguments TEXT[] NOT NULL,
		full_snippet  TEXT NOT NULL,
		message_hash  TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS extraction_records_message_hash_idx
		ON extraction_records (message_hash)`,
}

const insertRun = `INSERT INTO extraction_runs
	(id, started_at, roots, files, records, diagnostics, failed)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

const insertRecord = `INSERT INTO extraction_records
	(run_id, seq, source_file, line, col, function_name, domain,
	 source_texts, all_arguments, full_snippet, message_hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Run describes one extraction run.
type Run struct {
	ID          uuid.UUID
	StartedAt   time.Time
	Roots       []string
	Files       int
	Diagnostics int
	Failed      int
}

// RecordStore writes runs and their records.
type RecordStore struct {
	db DB
}

// NewRecordStore creates a store on db.
func NewRecordStore(db DB) *RecordStore {
	return &RecordStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	log.Debug().Msg("Record store schema ensured")
	return nil
}

// SaveRun inserts the run row and all records. A zero run ID is replaced with
// a fresh one; the ID used is returned.
func (s *RecordStore) SaveRun(ctx context.Context, run Run, records []extract.Record) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.Exec(ctx, insertRun,
		run.ID, run.StartedAt, run.Roots, run.Files, len(records), run.Diagnostics, run.Failed)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}

	seq := 0
	for _, chunk := range worker.Batch(records, batchSize) {
		batch := buildRecordBatch(run.ID, seq, chunk)
		if err := s.sendBatch(ctx, batch); err != nil {
			return uuid.Nil, fmt.Errorf("insert records %d-%d: %w", seq, seq+len(chunk)-1, err)
		}
		seq += len(chunk)
	}

	log.Info().Str("run", run.ID.String()).Int("records", len(records)).Msg("Saved extraction run")
	return run.ID, nil
}

func (s *RecordStore) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.db.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

func buildRecordBatch(runID uuid.UUID, seq int, records []extract.Record) *pgx.Batch {
	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(insertRecord,
			runID,
			seq+i,
			rec.SourceFile,
			rec.Line,
			rec.Column,
			rec.FunctionName,
			rec.Domain,
			nonNil(rec.SourceTexts),
			nonNil(rec.AllArguments),
			rec.FullSnippet,
			textutil.MessageHash(rec.Message()),
		)
	}
	return batch
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
