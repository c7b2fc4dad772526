package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Codegass/repodigger/core/buildsys"
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/parquet"
	"github.com/Codegass/repodigger/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// SummaryOptions controls how the acquisition summary is rendered.
type SummaryOptions struct {
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
	Width      int
	RunID      int64 // tags parquet rows; 0 when the run store is disabled
}

// WriteAcquisitionSummary outputs the per-candidate outcomes of a run, dispatching
// on the configured output format.
func WriteAcquisitionSummary(report schema.AcquisitionReport, opts SummaryOptions, duration time.Duration) error {
	switch opts.Output {
	case schema.JSONOut:
		return writeWithFile(opts.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(opts.OutputFile, func(w io.Writer) error {
			return writeOutcomeCSV(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeOutcomeParquet(report, opts)
	default:
		return writeWithFile(opts.OutputFile, func(w io.Writer) error {
			return writeOutcomeTable(w, report, opts, duration)
		}, "Wrote table")
	}
}

// outcomeNotes joins whatever explains an outcome into one cell.
func outcomeNotes(res schema.CandidateResult) string {
	var notes []string
	if res.Preexisting {
		notes = append(notes, "existing")
	}
	if res.Err != "" {
		notes = append(notes, res.Err)
	}
	if res.Verdict != nil && len(res.Verdict.Reasons) > 0 {
		notes = append(notes, strings.Join(res.Verdict.Reasons, "; "))
	}
	return strings.Join(notes, "; ")
}

func outcomeBuild(res schema.CandidateResult) string {
	if res.Verdict == nil {
		return "-"
	}
	return buildsys.Describe(*res.Verdict)
}

func writeOutcomeParquet(report schema.AcquisitionReport, opts SummaryOptions) error {
	if opts.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	now := time.Now().UTC()
	records := make([]schema.OutcomeRecord, 0, len(report.Results))
	for _, res := range report.Results {
		rec := schema.OutcomeRecord{
			RunID:       opts.RunID,
			Repository:  res.Candidate.Name,
			CloneURL:    res.Candidate.CloneURL,
			Stars:       int32(res.Candidate.Stars),
			Outcome:     string(res.Outcome),
			RecordedAt:  now,
			Preexisting: res.Preexisting,
		}
		if notes := outcomeNotes(res); notes != "" {
			rec.Reasons = &notes
		}
		records = append(records, rec)
	}
	if err := parquet.WriteOutcomesParquet(parquet.ConvertOutcomeRecords(records), opts.OutputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", opts.OutputFile)
	return nil
}

func writeOutcomeCSV(w io.Writer, report schema.AcquisitionReport) error {
	header := []string{"Repository", "Stars", "Outcome", "Build", "Notes"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, res := range report.Results {
			row := []string{
				res.Candidate.Name,
				strconv.Itoa(res.Candidate.Stars),
				string(res.Outcome),
				outcomeBuild(res),
				outcomeNotes(res),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write outcome row: %w", err)
			}
		}
		return nil
	})
}

func writeOutcomeTable(w io.Writer, report schema.AcquisitionReport, opts SummaryOptions, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Repository", "Stars", "Outcome", "Build", "Notes"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxNotes := notesWidth(terminalWidth(opts.Width))
	var data [][]string
	for i, res := range report.Results {
		label := contract.GetPlainLabel(res.Outcome)
		if opts.UseColors {
			label = contract.GetColorLabel(res.Outcome)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			res.Candidate.Name,
			strconv.Itoa(res.Candidate.Stars),
			label,
			outcomeBuild(res),
			truncate(outcomeNotes(res), maxNotes),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	counts := report.Counts()
	var parts []string
	for _, outcome := range schema.OutcomeOrder {
		parts = append(parts, fmt.Sprintf("%s %d", contract.GetPlainLabel(outcome), counts[outcome]))
	}
	if _, err := fmt.Fprintf(w, "Candidates: %d | %s | Disk used: %.2f%% | Elapsed: %s\n",
		len(report.Results), strings.Join(parts, " | "), report.QuotaPercent, duration.Round(time.Millisecond)); err != nil {
		return err
	}
	if report.Aborted {
		_, err := fmt.Fprintln(w, "⛔ Acquisition stopped early: disk quota exceeded")
		return err
	}
	return nil
}
