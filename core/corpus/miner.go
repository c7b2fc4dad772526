package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Codegass/repodigger/core/history"
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/schema"
)

// ExportResult is the outcome of exporting one repository's history table.
type ExportResult struct {
	Project string
	Path    string
	Records int
	Reused  bool
	Err     error
}

// ExtractOutcome pairs an extraction result with its error, if any.
type ExtractOutcome struct {
	schema.ExtractResult
	Err error
}

// Miner runs the history stages over the checkouts in OrgDir.
type Miner struct {
	OrgDir  string
	Git     contract.GitClient
	Workers int
	Logger  *contract.Logger
}

// HistoryDir is where per-repository history tables live.
func (m *Miner) HistoryDir() string {
	return filepath.Join(m.OrgDir, schema.HistoryDirName)
}

// TestCommitDir is where per-repository test-commit tables live.
func (m *Miner) TestCommitDir() string {
	return filepath.Join(m.HistoryDir(), schema.TestCommitDirName)
}

// ExportHistories writes one history table per repository using the worker pool.
// Results are sorted by project name.
func (m *Miner) ExportHistories(ctx context.Context, projects []string) ([]ExportResult, error) {
	m.Logger.Infof("=== Exporting the git log ===")
	if err := os.MkdirAll(m.HistoryDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", m.HistoryDir(), err)
	}

	results := runPool(m.workers(), projects, func(project string) ExportResult {
		return m.exportOne(ctx, project)
	})
	sort.Slice(results, func(i, j int) bool { return results[i].Project < results[j].Project })
	return results, nil
}

func (m *Miner) exportOne(ctx context.Context, project string) ExportResult {
	res := ExportResult{Project: project, Path: filepath.Join(m.HistoryDir(), project+schema.HistoryFileSuffix)}
	if _, err := os.Stat(res.Path); err == nil {
		m.Logger.Infof("Git log for %s already exists at %s. Skipping export.", project, res.Path)
		res.Reused = true
		return res
	}

	m.Logger.Infof("Exporting git log for %s...", project)
	raw, err := m.Git.GetHistoryLog(ctx, filepath.Join(m.OrgDir, project))
	if err != nil {
		m.Logger.Warnf("Failed to export git log for %s. Reason: %v", project, err)
		res.Err = err
		return res
	}
	records := history.Parse(raw)
	if err := outwriter.WriteHistoryCSV(res.Path, records); err != nil {
		m.Logger.Warnf("Failed to export git log for %s. Reason: %v", project, err)
		res.Err = err
		return res
	}
	res.Records = len(records)
	m.Logger.Infof("Successfully exported git log for %s to %s", project, res.Path)
	return res
}

// ExtractTestCommits filters every history table in HistoryDir and rewrites the
// no-test ledger. Per-table failures are logged and never stop the stage.
func (m *Miner) ExtractTestCommits(ctx context.Context) ([]ExtractOutcome, []string, error) {
	m.Logger.Infof("=== Analyzing the git log ===")
	if err := os.MkdirAll(m.TestCommitDir(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", m.TestCommitDir(), err)
	}

	tables, err := filepath.Glob(filepath.Join(m.HistoryDir(), "*"+schema.HistoryFileSuffix))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list history tables: %w", err)
	}

	outcomes := runPool(m.workers(), tables, func(table string) ExtractOutcome {
		if ctx.Err() != nil {
			return ExtractOutcome{ExtractResult: schema.ExtractResult{Project: ProjectName(table, schema.HistoryFileSuffix)}, Err: ctx.Err()}
		}
		project := ProjectName(table, schema.HistoryFileSuffix)
		out := filepath.Join(m.TestCommitDir(), project+schema.TestCommitFileSuffix)
		res, err := ExtractFile(table, out)
		return ExtractOutcome{ExtractResult: res, Err: err}
	})
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Project < outcomes[j].Project })

	var noTest []string
	for _, o := range outcomes {
		switch {
		case errors.Is(o.Err, ErrHistoryMalformed):
			m.Logger.Warnf("Skipping %s: %v", o.Project, o.Err)
		case errors.Is(o.Err, ErrHistoryEmpty), errors.Is(o.Err, ErrHistoryMissing):
			m.Logger.Warnf("Log file for project %s is empty or not valid CSV. Skipping.", o.Project)
		case o.Err != nil:
			m.Logger.Errorf("Error processing log file for %s. Reason: %v", o.Project, o.Err)
		case o.Matches == 0:
			m.Logger.Warnf("No test-related commits found for %s", o.Project)
			noTest = append(noTest, o.Project)
		default:
			m.Logger.Infof("Saved test commit log for %s", o.Project)
		}
	}

	if len(noTest) > 0 {
		m.Logger.Infof("No test-related commits found for %d repos: %s", len(noTest), outwriter.FormatList(noTest, 20))
	}
	ledger := filepath.Join(m.TestCommitDir(), schema.NoTestLedgerName)
	if err := outwriter.WriteLedger(ledger, noTest); err != nil {
		return outcomes, noTest, fmt.Errorf("failed to write no-test ledger: %w", err)
	}
	m.Logger.Infof("No test commit repos list saved to %s", ledger)
	return outcomes, noTest, nil
}

// MergeCorpus merges the subset tables and logs author statistics.
func (m *Miner) MergeCorpus() (MergeResult, []schema.AuthorStat, error) {
	m.Logger.Infof("=== Merging the test commit log ===")
	out := filepath.Join(m.TestCommitDir(), schema.MergedCorpusName)
	if _, err := os.Stat(out); err == nil {
		m.Logger.Infof("Deleting old merged test commit log: %s", out)
	}

	result, err := MergeFiles(m.TestCommitDir(), out)
	if err != nil {
		return result, nil, err
	}
	for _, skipped := range result.Skipped {
		m.Logger.Warnf("Test commit log file %s is empty or unreadable. Skipping from merge.", skipped)
	}
	if result.Inputs == 0 && len(result.Skipped) == 0 {
		m.Logger.Infof("No individual test commit logs found to merge.")
		return result, nil, nil
	}
	if len(result.Corpus) == 0 {
		m.Logger.Infof("Merged corpus is empty. No overall test commit log generated.")
		return result, nil, nil
	}
	m.Logger.Infof("💾 Saved merged test commit log to %s", out)

	stats := AuthorStats(result.Corpus)
	m.Logger.Infof("=== Test commit statistics ===")
	m.Logger.Infof("Number of unique authors per project (with test commits):")
	for _, s := range stats {
		m.Logger.Infof("%s: %d", s.Project, s.Authors)
	}
	return result, stats, nil
}

func (m *Miner) workers() int {
	if m.Workers <= 0 {
		return 1
	}
	return m.Workers
}

// runPool applies fn to every job on a fixed number of workers.
// Result order is unspecified.
func runPool[T, R any](workers int, jobs []T, fn func(T) R) []R {
	jobCh := make(chan T, len(jobs))
	resultCh := make(chan R, len(jobs))
	var wg sync.WaitGroup

	for range min(workers, max(len(jobs), 1)) {
		wg.Go(func() {
			for job := range jobCh {
				resultCh <- fn(job)
			}
		})
	}

	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	wg.Wait()
	close(resultCh)

	results := make([]R, 0, len(jobs))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}
