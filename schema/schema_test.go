package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquisitionReport_AcceptedAndLedger(t *testing.T) {
	report := AcquisitionReport{
		Results: []CandidateResult{
			{Candidate: RepositoryCandidate{Name: "a"}, Outcome: Accepted},
			{Candidate: RepositoryCandidate{Name: "b"}, Outcome: RejectedBuildSystem},
			{Candidate: RepositoryCandidate{Name: "c"}, Outcome: FailedClone},
			{Candidate: RepositoryCandidate{Name: "d"}, Outcome: Accepted},
			{Candidate: RepositoryCandidate{Name: "e"}, Outcome: SkippedQuotaExceeded},
		},
	}

	accepted := report.Accepted()
	assert.Len(t, accepted, 2)
	assert.Equal(t, "a", accepted[0].Name)
	assert.Equal(t, "d", accepted[1].Name)

	assert.Equal(t, []string{"c", "e"}, report.Ledger(), "rejected repos never land in the failed ledger")

	counts := report.Counts()
	assert.Equal(t, 2, counts[Accepted])
	assert.Equal(t, 1, counts[RejectedBuildSystem])
	assert.Equal(t, 1, counts[FailedClone])
	assert.Equal(t, 1, counts[SkippedQuotaExceeded])
}

func TestFileChangeRecord_Row(t *testing.T) {
	rec := FileChangeRecord{
		CommitHeader: CommitHeader{Hash: "h", Date: "2021-01-01", AuthorName: "Doe, Jane", AuthorEmail: "jane@x.com"},
		Added:        2,
		Deleted:      1,
		FilePath:     "src/test/java/FooTest.java",
	}
	row := rec.Row()
	assert.Len(t, row, len(HistoryHeader))
	assert.Equal(t, []string{"h", "2021-01-01", "Doe, Jane", "jane@x.com", "2", "1", "src/test/java/FooTest.java"}, row)

	corpusRow := CorpusRecord{Project: "p", FileChangeRecord: rec}.Row()
	assert.Len(t, corpusRow, len(CorpusHeader))
	assert.Equal(t, "p", corpusRow[0])
	assert.Equal(t, "Project", CorpusHeader[0])
	assert.Equal(t, "Commit Hash", CorpusHeader[1])
}

func TestBuildVerdict_Has(t *testing.T) {
	v := BuildVerdict{Detected: []BuildSystem{MavenBuild, BazelBuild}}
	assert.True(t, v.Has(MavenBuild))
	assert.True(t, v.Has(BazelBuild))
	assert.False(t, v.Has(GradleBuild))
}
