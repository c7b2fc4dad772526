// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/Codegass/repodigger/schema"
)

// GitClient defines the git operations needed for history mining.
// This allows the mining logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command and returns its stdout.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// GetHistoryLog returns the raw numstat history of the whole repository.
	GetHistoryLog(ctx context.Context, repoPath string) ([]byte, error)
}

// Cloner populates dest with a full history-bearing checkout of url.
// A failed clone may leave a partial directory behind.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// QuotaChecker samples disk usage and reports whether the ceiling was crossed.
type QuotaChecker interface {
	Check(ctx context.Context) (exceeded bool, percent float64, err error)
}

// CandidateSource lists the repositories an organization exposes through the hosting API.
type CandidateSource interface {
	Fetch(ctx context.Context, org string, minStars int, cutoff time.Time) ([]schema.RepositoryCandidate, error)
}

// RunStore defines the interface for tracking acquisition runs and their outcomes.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(org string, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordOutcome stores the terminal state of one candidate
	RecordOutcome(runID int64, result schema.CandidateResult) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalAccepted, totalCandidates int) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllOutcomes returns every recorded candidate outcome
	GetAllOutcomes() ([]schema.OutcomeRecord, error)

	// Close closes the underlying connection
	Close() error
}

// Publisher uploads a local artifact under the given object key.
type Publisher interface {
	Publish(ctx context.Context, key, localPath string) error
}
