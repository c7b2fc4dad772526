// Package parquet exports run history and the test-commit corpus to Parquet
// files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/Codegass/repodigger/schema"
	"github.com/parquet-go/parquet-go"
)

// Run maps to the repodigger_runs table.
type Run struct {
	RunID           int64      `parquet:"run_id,snappy"`
	Organization    string     `parquet:"organization,snappy"`
	StartTime       time.Time  `parquet:"start_time,snappy"`
	EndTime         *time.Time `parquet:"end_time,optional,snappy"`
	RunDurationMs   *int32     `parquet:"run_duration_ms,optional,snappy"`
	TotalAccepted   int32      `parquet:"total_accepted,snappy"`
	TotalCandidates int32      `parquet:"total_candidates,snappy"`
	// ConfigParams holds the JSON-encoded run configuration
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Outcome maps to the repodigger_outcomes table.
type Outcome struct {
	RunID       int64     `parquet:"run_id,snappy"`
	Repository  string    `parquet:"repository,snappy"`
	CloneURL    string    `parquet:"clone_url,snappy"`
	Stars       int32     `parquet:"stars,snappy"`
	Outcome     string    `parquet:"outcome,snappy,dict"`
	Reasons     *string   `parquet:"reasons,optional,snappy"`
	RecordedAt  time.Time `parquet:"recorded_at,snappy"`
	Preexisting bool      `parquet:"preexisting"`
}

// CorpusRow is one row of the merged test-commit corpus.
type CorpusRow struct {
	Project     string `parquet:"project,snappy,dict"`
	CommitHash  string `parquet:"commit_hash,snappy"`
	Date        string `parquet:"date,snappy"`
	AuthorName  string `parquet:"author_name,snappy"`
	AuthorEmail string `parquet:"author_email,snappy,dict"`
	AddedLines  int32  `parquet:"added_lines,snappy"`
	// DeletedLines is zero for binary changes, same as AddedLines
	DeletedLines int32  `parquet:"deleted_lines,snappy"`
	FilePath     string `parquet:"file_path,snappy"`
}

// writeFile writes rows of T to outputPath with a schema inferred from T's tags.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteOutcomesParquet writes candidate outcomes to a Parquet file.
func WriteOutcomesParquet(data []Outcome, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteCorpusParquet writes the merged corpus to a Parquet file.
func WriteCorpusParquet(data []CorpusRow, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertRunRecords converts store records to their Parquet rows.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	out := make([]Run, 0, len(records))
	for _, r := range records {
		out = append(out, Run{
			RunID:           r.RunID,
			Organization:    r.Organization,
			StartTime:       r.StartTime,
			EndTime:         r.EndTime,
			RunDurationMs:   r.RunDurationMs,
			TotalAccepted:   r.TotalAccepted,
			TotalCandidates: r.TotalCandidate,
			ConfigParams:    r.ConfigParams,
		})
	}
	return out
}

// ConvertOutcomeRecords converts store records to their Parquet rows.
func ConvertOutcomeRecords(records []schema.OutcomeRecord) []Outcome {
	out := make([]Outcome, 0, len(records))
	for _, r := range records {
		out = append(out, Outcome{
			RunID:       r.RunID,
			Repository:  r.Repository,
			CloneURL:    r.CloneURL,
			Stars:       r.Stars,
			Outcome:     r.Outcome,
			Reasons:     r.Reasons,
			RecordedAt:  r.RecordedAt,
			Preexisting: r.Preexisting,
		})
	}
	return out
}

// ConvertCorpusRecords converts merged corpus records to their Parquet rows.
func ConvertCorpusRecords(records []schema.CorpusRecord) []CorpusRow {
	out := make([]CorpusRow, 0, len(records))
	for _, r := range records {
		out = append(out, CorpusRow{
			Project:      r.Project,
			CommitHash:   r.Hash,
			Date:         r.Date,
			AuthorName:   r.AuthorName,
			AuthorEmail:  r.AuthorEmail,
			AddedLines:   int32(r.Added),
			DeletedLines: int32(r.Deleted),
			FilePath:     r.FilePath,
		})
	}
	return out
}
