package graph

import (
	"context"
	"fmt"

	"l10n-extractor/internal/textutil"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Usage is one place a message is used.
type Usage struct {
	File     string
	Line     int
	Column   int
	Function string
}

// FindUsages lists where the message with the given decoded text and domain is
// used, ordered by file then line.
func (g *UsageGraph) FindUsages(ctx context.Context, domain, text string) ([]Usage, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Message {domain: $domain})-[u:USED_IN]->(f:SourceFile)
		WHERE m.text = $text OR m.plural = $text
		RETURN f.path AS file, u.line AS line, u.column AS column, u.function AS function
		ORDER BY file, line, column
	`, map[string]any{"domain": domain, "text": text})
	if err != nil {
		return nil, fmt.Errorf("query usages: %w", err)
	}

	var usages []Usage
	for result.Next(ctx) {
		record := result.Record()
		file, _, _ := neo4j.GetRecordValue[string](record, "file")
		line, _, _ := neo4j.GetRecordValue[int64](record, "line")
		column, _, _ := neo4j.GetRecordValue[int64](record, "column")
		function, _, _ := neo4j.GetRecordValue[string](record, "function")

		usages = append(usages, Usage{
			File:     file,
			Line:     int(line),
			Column:   int(column),
			Function: function,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read usages: %w", err)
	}

	log.Debug().Str("text", textutil.Truncate(text, 40)).Int("usages", len(usages)).Msg("Graph query complete")
	return usages, nil
}
