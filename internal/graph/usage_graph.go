package graph

import (
	"context"
	"fmt"

	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/textutil"
	"l10n-extractor/internal/worker"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// upsertBatchSize bounds the rows sent in one UNWIND statement.
const upsertBatchSize = 500

// UsageGraph records which source files use which messages:
// (:Message)-[:USED_IN {line, column, function}]->(:SourceFile).
type UsageGraph struct {
	driver neo4j.DriverWithContext
}

// NewUsageGraph creates a usage graph on driver.
func NewUsageGraph(driver neo4j.DriverWithContext) *UsageGraph {
	return &UsageGraph{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (g *UsageGraph) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Message) REQUIRE m.hash IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:SourceFile) REQUIRE f.path IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

const upsertUsages = `
	UNWIND $rows AS row
	MERGE (m:Message {hash: row.hash})
	SET m.domain = row.domain,
	    m.text = row.text,
	    m.plural = row.plural
	MERGE (f:SourceFile {path: row.file})
	MERGE (m)-[u:USED_IN {line: row.line, column: row.column}]->(f)
	SET u.function = row.function
`

// UpsertUsages merges one USED_IN edge per record.
func (g *UsageGraph) UpsertUsages(ctx context.Context, records []extract.Record) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	for _, chunk := range worker.Batch(records, upsertBatchSize) {
		rows := make([]any, 0, len(chunk))
		for _, rec := range chunk {
			rows = append(rows, usageParams(rec))
		}
		if _, err := session.Run(ctx, upsertUsages, map[string]any{"rows": rows}); err != nil {
			return fmt.Errorf("upsert usages: %w", err)
		}
	}

	log.Info().Int("usages", len(records)).Msg("Updated usage graph")
	return nil
}

// usageParams flattens a record into the row shape upsertUsages expects.
func usageParams(rec extract.Record) map[string]any {
	domain, texts := rec.Message()
	row := map[string]any{
		"hash":     textutil.MessageHash(domain, texts),
		"domain":   domain,
		"text":     "",
		"plural":   "",
		"file":     rec.SourceFile,
		"line":     int64(rec.Line),
		"column":   int64(rec.Column),
		"function": rec.FunctionName,
	}
	if len(texts) > 0 {
		row["text"] = texts[0]
	}
	if len(texts) > 1 {
		row["plural"] = texts[1]
	}
	return row
}
