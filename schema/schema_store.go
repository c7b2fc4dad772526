package schema

import "time"

// RunRecord represents a row from the repodigger_runs table.
type RunRecord struct {
	RunID          int64
	Organization   string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	TotalAccepted  int32
	TotalCandidate int32
	ConfigParams   *string
}

// OutcomeRecord represents a row from the repodigger_outcomes table.
type OutcomeRecord struct {
	RunID       int64
	Repository  string
	CloneURL    string
	Stars       int32
	Outcome     string
	Reasons     *string
	RecordedAt  time.Time
	Preexisting bool
}
