// Package acquire drives the quota-aware clone-and-filter loop over candidates.
//
// Each candidate goes through step, which decides an outcome and returns any
// directories that must be removed. Removal happens later in a separate
// cleanup phase, after the loop has finished or the quota breaker tripped.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Codegass/repodigger/core/buildsys"
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/schema"
)

// Signal tells the driver loop whether to keep going.
type Signal int

const (
	// Continue moves on to the next candidate.
	Continue Signal = iota
	// Abort stops the loop; the remaining candidates are quota-skipped.
	Abort
)

// ErrInvalidName is returned for candidate names that cannot be used as a directory name.
var ErrInvalidName = errors.New("invalid repository name")

// ErrPathOccupied is reported when a non-directory already sits at a checkout path.
var ErrPathOccupied = errors.New("checkout path is occupied by a non-directory")

// CleanupDirective asks the cleanup phase to remove a directory.
type CleanupDirective struct {
	Repo string
	Path string
}

// StepResult is what processing a single candidate produced.
type StepResult struct {
	Result       schema.CandidateResult
	Cleanup      []CleanupDirective
	Signal       Signal
	QuotaPercent float64
}

// Classifier inspects a directory tree and returns its build verdict.
type Classifier func(root string) (schema.BuildVerdict, error)

// Pipeline holds the collaborators of one acquisition run.
type Pipeline struct {
	OrgDir       string
	Cloner       contract.Cloner
	Quota        contract.QuotaChecker
	Classify     Classifier
	CloneTimeout time.Duration
	Logger       *contract.Logger
	LedgerPath   string
}

// New creates a pipeline rooted at orgDir using the default classifier.
func New(orgDir string, cloner contract.Cloner, quota contract.QuotaChecker, logger *contract.Logger) *Pipeline {
	return &Pipeline{
		OrgDir:       orgDir,
		Cloner:       cloner,
		Quota:        quota,
		Classify:     buildsys.Classify,
		CloneTimeout: contract.DefaultCloneTimeout,
		Logger:       logger,
		LedgerPath:   filepath.Join(orgDir, schema.FailedLedgerName),
	}
}

// Run processes candidates in order, then runs the cleanup phase and writes
// the failed/skipped ledger. Only a ledger write failure is returned as an error;
// every per-candidate problem ends up in the report instead.
func (p *Pipeline) Run(ctx context.Context, candidates []schema.RepositoryCandidate) (schema.AcquisitionReport, error) {
	var report schema.AcquisitionReport
	var cleanup []CleanupDirective

	p.Logger.Infof("=== Cloning repositories and checking build systems ===")
	for i, c := range candidates {
		step := p.step(ctx, c)
		report.Results = append(report.Results, step.Result)
		cleanup = append(cleanup, step.Cleanup...)
		if step.QuotaPercent > 0 {
			report.QuotaPercent = step.QuotaPercent
		}
		if step.Signal == Abort {
			report.Aborted = true
			remaining := candidates[i+1:]
			names := make([]string, 0, len(remaining))
			for _, r := range remaining {
				report.Results = append(report.Results, schema.CandidateResult{
					Candidate: r,
					Outcome:   schema.SkippedQuotaExceeded,
				})
				names = append(names, r.Name)
			}
			p.Logger.Infof("The following repos were not attempted due to disk space: %s", outwriter.FormatList(names, 20))
			break
		}
	}

	report.CleanupErrors = p.cleanup(cleanup)

	ledger := report.Ledger()
	if len(ledger) > 0 {
		p.Logger.Infof("Failed to clone or process %d repos: %s", len(ledger), outwriter.FormatList(ledger, 20))
	}
	if err := outwriter.WriteLedger(p.LedgerPath, ledger); err != nil {
		return report, fmt.Errorf("failed to write ledger: %w", err)
	}
	p.Logger.Infof("List of failed/skipped projects saved to %s", p.LedgerPath)
	return report, nil
}

// step decides the outcome of one candidate without deleting anything.
func (p *Pipeline) step(ctx context.Context, c schema.RepositoryCandidate) StepResult {
	res := StepResult{Result: schema.CandidateResult{Candidate: c}}

	target, err := p.targetPath(c.Name)
	if err != nil {
		p.Logger.Warnf("Failed to clone or process %s. Reason: %v", c.Name, err)
		res.Result.Outcome = schema.FailedClone
		res.Result.Err = err.Error()
		return res
	}

	_, statErr := os.Lstat(target)
	existed := statErr == nil
	if existed && !isDir(target) {
		err := fmt.Errorf("%w: %s", ErrPathOccupied, target)
		p.Logger.Warnf("Failed to clone or process %s. Reason: %v", c.Name, err)
		res.Result.Outcome = schema.FailedClone
		res.Result.Err = err.Error()
		return res
	}
	if existed {
		p.Logger.Infof("Repo %s already exists. Checking build system...", c.Name)
		res.Result.Preexisting = true
		verdict, err := p.Classify(target)
		if err != nil {
			p.Logger.Warnf("Failed to clone or process %s. Reason: %v", c.Name, err)
			res.Result.Outcome = schema.FailedClone
			res.Result.Err = err.Error()
			return res
		}
		res.Result.Verdict = &verdict
		p.logVerdict(c.Name, verdict)
		if verdict.Qualifies {
			p.Logger.Infof("Repo %s (existing) meets criteria.", c.Name)
			res.Result.Outcome = schema.Accepted
		} else {
			p.Logger.Warnf("Repo %s (existing) does not meet build system criteria. Excluding from this run.", c.Name)
			res.Result.Outcome = schema.RejectedBuildSystem
		}
		return res
	}

	p.Logger.Infof("Cloning %s from %s...", c.Name, c.CloneURL)
	if err := p.clone(ctx, c.CloneURL, target); err != nil {
		p.Logger.Warnf("Failed to clone or process %s. Reason: %v", c.Name, err)
		res.Result.Outcome = schema.FailedClone
		res.Result.Err = err.Error()
		// Only what the clone itself left behind is removed
		if _, statErr := os.Lstat(target); statErr == nil && !existed {
			res.Cleanup = append(res.Cleanup, CleanupDirective{Repo: c.Name, Path: target})
		}
		return res
	}
	p.Logger.Infof("Successfully cloned %s to %s", c.Name, target)

	verdict, err := p.Classify(target)
	if err != nil {
		p.Logger.Warnf("Failed to clone or process %s. Reason: %v", c.Name, err)
		res.Result.Outcome = schema.FailedClone
		res.Result.Err = err.Error()
		res.Cleanup = append(res.Cleanup, CleanupDirective{Repo: c.Name, Path: target})
		return res
	}
	res.Result.Verdict = &verdict
	p.logVerdict(c.Name, verdict)
	if !verdict.Qualifies {
		res.Result.Outcome = schema.RejectedBuildSystem
		res.Cleanup = append(res.Cleanup, CleanupDirective{Repo: c.Name, Path: target})
		return res
	}

	res.Result.Outcome = schema.Accepted
	exceeded, percent, err := p.Quota.Check(ctx)
	if err != nil {
		p.Logger.Warnf("Could not sample disk usage: %v", err)
		return res
	}
	res.QuotaPercent = percent
	p.Logger.Infof("Disk usage of %s: %.2f%%", filepath.Dir(p.OrgDir), percent)
	if exceeded {
		p.Logger.Warnf("Disk usage exceeded threshold (%.2f%% used). Stopping the cloning process.", percent)
		res.Signal = Abort
	}
	return res
}

// isDir reports whether path resolves to a directory, following symlinks.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// clone runs the cloner under the per-clone deadline.
func (p *Pipeline) clone(ctx context.Context, url, dest string) error {
	if p.CloneTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.CloneTimeout)
		defer cancel()
	}
	return p.Cloner.Clone(ctx, url, dest)
}

// cleanup removes every scheduled directory and returns the failures.
func (p *Pipeline) cleanup(directives []CleanupDirective) []string {
	if len(directives) == 0 {
		return nil
	}
	p.Logger.Infof("🧹 Cleaning up %d repos that failed build system check...", len(directives))
	var failures []string
	for _, d := range directives {
		if err := contract.SafeRemoveAll(p.OrgDir, d.Path); err != nil {
			p.Logger.Errorf("Failed to delete directory %s. Reason: %v", d.Path, err)
			failures = append(failures, fmt.Sprintf("%s: %v", d.Repo, err))
			continue
		}
		p.Logger.Infof("Successfully deleted %s", d.Path)
	}
	return failures
}

func (p *Pipeline) logVerdict(name string, verdict schema.BuildVerdict) {
	if verdict.Qualifies {
		p.Logger.Infof("Repo %s: Found %s. Qualifying build system.", name, buildsys.Describe(verdict))
		return
	}
	p.Logger.Warnf("Repo %s: Build system check failed. Reasons: %s. Excluding.", name, strings.Join(verdict.Reasons, "; "))
}

// targetPath maps a candidate name to its checkout directory under OrgDir.
func (p *Pipeline) targetPath(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(p.OrgDir, name), nil
}
