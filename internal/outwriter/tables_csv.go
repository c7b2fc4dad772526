package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Codegass/repodigger/schema"
)

// WriteHistoryCSV writes change records to path using the history column layout.
func WriteHistoryCSV(path string, records []schema.FileChangeRecord) error {
	return createFileAtomic(path, func(w io.Writer) error {
		return writeHistoryRows(w, records)
	})
}

// WriteCorpusCSV writes the merged corpus to path, Project column first.
func WriteCorpusCSV(path string, records []schema.CorpusRecord) error {
	return createFileAtomic(path, func(w io.Writer) error {
		return writeCSVWithHeader(w, schema.CorpusHeader, func(cw *csv.Writer) error {
			for _, rec := range records {
				if err := cw.Write(rec.Row()); err != nil {
					return fmt.Errorf("failed to write corpus row: %w", err)
				}
			}
			return nil
		})
	})
}

// WriteHistory writes change records as CSV to outputFile, or stdout when empty.
func WriteHistory(outputFile string, records []schema.FileChangeRecord) error {
	return writeWithFile(outputFile, func(w io.Writer) error {
		return writeHistoryRows(w, records)
	}, "Wrote CSV")
}

func writeHistoryRows(w io.Writer, records []schema.FileChangeRecord) error {
	return writeCSVWithHeader(w, schema.HistoryHeader, func(cw *csv.Writer) error {
		for _, rec := range records {
			if err := cw.Write(rec.Row()); err != nil {
				return fmt.Errorf("failed to write history row: %w", err)
			}
		}
		return nil
	})
}
