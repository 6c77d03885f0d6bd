package cli

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"l10n-extractor/internal/catalog"
	"l10n-extractor/internal/config"
	"l10n-extractor/internal/extract"
	"l10n-extractor/internal/graph"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [catalog]",
		Short: "Show translation progress per domain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "messages.json"
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := catalog.Load(path)
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func renderStats(out io.Writer, cat *catalog.Catalog) {
	byDomain := make(map[string]*catalog.Catalog)
	for _, e := range cat.Entries {
		c, ok := byDomain[e.Domain]
		if !ok {
			c = &catalog.Catalog{}
			byDomain[e.Domain] = c
		}
		c.Entries = append(c.Entries, e)
	}

	domains := make([]string, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Domain", "Messages", "Translated", "Fuzzy", "Untranslated", "Obsolete"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	for _, d := range domains {
		st := byDomain[d].Stats()
		name := d
		if name == "" {
			name = "(default)"
		}
		table.Append(statsRow(name, st))
	}

	table.SetFooter(statsRow("Total", cat.Stats()))
	table.Render()

	fmt.Fprintf(out, "\n%s", tableBuffer.String())
}

func statsRow(name string, st catalog.Stats) []string {
	return []string{
		name,
		strconv.Itoa(st.Total),
		strconv.Itoa(st.Translated),
		strconv.Itoa(st.Fuzzy),
		strconv.Itoa(st.Untranslated),
		strconv.Itoa(st.Obsolete),
	}
}

func patternsCmd() *cobra.Command {
	var patternsFile string

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the localization functions that are recognized",
		RunE: func(cmd *cobra.Command, args []string) error {
			if patternsFile == "" {
				patternsFile = config.Load().PatternsFile
			}
			table, err := config.LoadPatternTable(patternsFile)
			if err != nil {
				return err
			}
			renderPatterns(cmd.OutOrStdout(), table.Patterns())
			return nil
		},
	}
	cmd.Flags().StringVar(&patternsFile, "patterns", "", "YAML pattern table (default: PATTERNS_FILE or the built-in table)")

	return cmd
}

func renderPatterns(out io.Writer, patterns []extract.Pattern) {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Function", "Kind", "Arguments"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, p := range patterns {
		table.Append([]string{p.Name, p.Kind(), signature(p)})
	}
	table.SetFooter([]string{fmt.Sprintf("%d functions", len(patterns)), "", ""})
	table.Render()

	fmt.Fprintf(out, "\n%s", tableBuffer.String())
}

func signature(p extract.Pattern) string {
	var args []string
	if p.Domained {
		args = append(args, "domain")
	}
	if p.Plural {
		args = append(args, "count", "singular", "plural")
	} else {
		args = append(args, "message")
	}
	return p.Name + "(" + strings.Join(args, ", ") + ", ...)"
}

func usagesCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "usages <message>",
		Short: "List the source locations of a message from the Neo4j usage graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			driver, err := connectNeo4j(ctx, cfg)
			if err != nil {
				return err
			}
			defer driver.Close(ctx)

			usages, err := graph.NewUsageGraph(driver).FindUsages(ctx, domain, args[0])
			if err != nil {
				return err
			}
			renderUsages(cmd.OutOrStdout(), usages)
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "Message domain")

	return cmd
}

func renderUsages(out io.Writer, usages []graph.Usage) {
	for _, u := range usages {
		fmt.Fprintf(out, "%s:%d:%d\t%s\n", u.File, u.Line, u.Column, u.Function)
	}
}
