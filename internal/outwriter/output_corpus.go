package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Codegass/repodigger/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteAuthorStats outputs distinct test-commit authors per project.
func WriteAuthorStats(stats []schema.AuthorStat, output schema.OutputMode, outputFile string) error {
	switch output {
	case schema.JSONOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeAuthorStatsCSV(w, stats)
		}, "Wrote CSV")
	default:
		return writeWithFile(outputFile, func(w io.Writer) error {
			return writeAuthorStatsTable(w, stats)
		}, "Wrote table")
	}
}

func writeAuthorStatsCSV(w io.Writer, stats []schema.AuthorStat) error {
	return writeCSVWithHeader(w, []string{"Project", "Authors"}, func(cw *csv.Writer) error {
		for _, s := range stats {
			if err := cw.Write([]string{s.Project, strconv.Itoa(s.Authors)}); err != nil {
				return fmt.Errorf("failed to write author stats row: %w", err)
			}
		}
		return nil
	})
}

func writeAuthorStatsTable(w io.Writer, stats []schema.AuthorStat) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Project", "Test Authors"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	total := 0
	for _, s := range stats {
		data = append(data, []string{s.Project, strconv.Itoa(s.Authors)})
		total += s.Authors
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Projects with test commits: %d | Author slots: %d\n", len(stats), total)
	return err
}
