// Package schema holds the shared data types used across repodigger.
package schema

import (
	"slices"
	"time"
)

// RepositoryCandidate is a repository descriptor returned by the search API.
type RepositoryCandidate struct {
	Name     string    `json:"name"`
	CloneURL string    `json:"clone_url"`
	Stars    int       `json:"stars"`
	PushedAt time.Time `json:"pushed_at"`
}

// BuildVerdict is the result of classifying a project tree.
type BuildVerdict struct {
	Qualifies bool          `json:"qualifies"`
	Detected  []BuildSystem `json:"detected"`
	Reasons   []string      `json:"reasons"`
}

// Has reports whether the given build system was detected.
func (v BuildVerdict) Has(bs BuildSystem) bool {
	return slices.Contains(v.Detected, bs)
}

// CandidateResult is the per-candidate record of one acquisition run.
type CandidateResult struct {
	Candidate   RepositoryCandidate `json:"candidate"`
	Outcome     AcquisitionOutcome  `json:"outcome"`
	Verdict     *BuildVerdict       `json:"verdict,omitempty"`
	Err         string              `json:"error,omitempty"`
	Preexisting bool                `json:"preexisting"`
}

// AcquisitionReport is everything the acquisition phase produced.
type AcquisitionReport struct {
	Results       []CandidateResult `json:"results"`
	Aborted       bool              `json:"aborted"`
	QuotaPercent  float64           `json:"quota_percent"`
	CleanupErrors []string          `json:"cleanup_errors,omitempty"`
}

// Accepted returns the candidates whose outcome is Accepted, in run order.
func (r AcquisitionReport) Accepted() []RepositoryCandidate {
	var out []RepositoryCandidate
	for _, res := range r.Results {
		if res.Outcome == Accepted {
			out = append(out, res.Candidate)
		}
	}
	return out
}

// Ledger returns the names that belong in the failed/skipped ledger.
func (r AcquisitionReport) Ledger() []string {
	var out []string
	for _, res := range r.Results {
		if res.Outcome == FailedClone || res.Outcome == SkippedQuotaExceeded {
			out = append(out, res.Candidate.Name)
		}
	}
	return out
}

// Counts tallies outcomes.
func (r AcquisitionReport) Counts() map[AcquisitionOutcome]int {
	counts := make(map[AcquisitionOutcome]int, len(OutcomeOrder))
	for _, res := range r.Results {
		counts[res.Outcome]++
	}
	return counts
}
