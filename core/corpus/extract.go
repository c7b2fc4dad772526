// Package corpus turns per-repository history tables into the test-commit corpus.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/schema"
)

// Errors returned when a history table cannot be used.
var (
	ErrHistoryMissing   = errors.New("history table missing")
	ErrHistoryEmpty     = errors.New("history table is empty") // zero bytes, not even a header
	ErrHistoryMalformed = errors.New("history table is malformed")
)

// testFilePattern selects JUnit-style test sources under a Maven/Gradle test root.
var testFilePattern = regexp.MustCompile(`src/test/.*Test.*\.java$`)

// IsTestFile reports whether path names a test source file.
func IsTestFile(path string) bool {
	return testFilePattern.MatchString(path)
}

// Extract keeps the records that touch test source files, preserving order.
func Extract(records []schema.FileChangeRecord) []schema.FileChangeRecord {
	var out []schema.FileChangeRecord
	for _, rec := range records {
		if IsTestFile(rec.FilePath) {
			out = append(out, rec)
		}
	}
	return out
}

// ExtractFile filters the history table at historyCSV and writes the matching
// rows to outCSV. Nothing is written when there are no matches.
func ExtractFile(historyCSV, outCSV string) (schema.ExtractResult, error) {
	result := schema.ExtractResult{Project: ProjectName(historyCSV, schema.HistoryFileSuffix)}

	records, err := ReadHistoryCSV(historyCSV)
	if err != nil {
		return result, err
	}
	result.Total = len(records)

	matches := Extract(records)
	result.Matches = len(matches)
	if len(matches) == 0 {
		return result, nil
	}
	if err := outwriter.WriteHistoryCSV(outCSV, matches); err != nil {
		return result, err
	}
	result.Output = outCSV
	return result, nil
}

// ProjectName strips the directory and the given suffix from a table path.
func ProjectName(path, suffix string) string {
	return strings.TrimSuffix(filepath.Base(path), suffix)
}

// ReadHistoryCSV reads a history table. Columns are located by header name,
// so only the File Path column is mandatory.
func ReadHistoryCSV(path string) ([]schema.FileChangeRecord, error) {
	var records []schema.FileChangeRecord
	err := readTable(path, func(cols columnIndex, row []string) {
		records = append(records, cols.record(row))
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// columnIndex maps header names to positions in a row.
type columnIndex map[string]int

func (c columnIndex) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (c columnIndex) count(row []string, name string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.get(row, name)))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (c columnIndex) record(row []string) schema.FileChangeRecord {
	return schema.FileChangeRecord{
		CommitHeader: schema.CommitHeader{
			Hash:        c.get(row, schema.HistoryHeader[0]),
			Date:        c.get(row, schema.HistoryHeader[1]),
			AuthorName:  c.get(row, schema.HistoryHeader[2]),
			AuthorEmail: c.get(row, schema.HistoryHeader[3]),
		},
		Added:    c.count(row, schema.HistoryHeader[4]),
		Deleted:  c.count(row, schema.HistoryHeader[5]),
		FilePath: c.get(row, schema.FilePathColumn),
	}
}

// readTable streams the data rows of a CSV table with a File Path column,
// mapping failures onto the history sentinel errors.
func readTable(path string, fn func(cols columnIndex, row []string)) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrHistoryMissing, path)
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s", ErrHistoryEmpty, path)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrHistoryMalformed, path, err)
	}

	cols := make(columnIndex, len(header))
	for i, name := range header {
		cols[strings.TrimPrefix(name, "\ufeff")] = i
	}
	if _, ok := cols[schema.FilePathColumn]; !ok {
		return fmt.Errorf("%w: %s: %q column missing", ErrHistoryMalformed, path, schema.FilePathColumn)
	}

	// A header with no rows is a valid table of zero commits
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrHistoryMalformed, path, err)
		}
		fn(cols, row)
	}
}
