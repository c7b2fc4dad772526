package runstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Codegass/repodigger/internal/parquet"
	"github.com/Codegass/repodigger/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []schema.CandidateResult {
	return []schema.CandidateResult{
		{
			Candidate: schema.RepositoryCandidate{Name: "kept", CloneURL: "https://x/kept.git", Stars: 900},
			Outcome:   schema.Accepted,
			Verdict:   &schema.BuildVerdict{Qualifies: true, Detected: []schema.BuildSystem{schema.MavenBuild}, Reasons: []string{}},
		},
		{
			Candidate: schema.RepositoryCandidate{Name: "legacy", CloneURL: "https://x/legacy.git", Stars: 300},
			Outcome:   schema.RejectedBuildSystem,
			Verdict:   &schema.BuildVerdict{Detected: []schema.BuildSystem{schema.AntBuild}, Reasons: []string{"no maven", "ant"}},
		},
		{
			Candidate:   schema.RepositoryCandidate{Name: "broken", CloneURL: "https://x/broken.git", Stars: 250},
			Outcome:     schema.FailedClone,
			Err:         "timeout",
			Preexisting: true,
		},
	}
}

func TestRunStore_NoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("org", time.Now(), map[string]any{"k": "v"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), runID)
	assert.NoError(t, store.RecordOutcome(1, sampleResults()[0]))
	assert.NoError(t, store.EndRun(1, time.Now(), 1, 1))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)

	runs, err := store.GetAllRuns()
	assert.NoError(t, err)
	assert.Nil(t, runs)
	assert.NoError(t, store.Close())
}

func TestRunStore_UnsupportedBackend(t *testing.T) {
	_, err := NewRunStore("oracle", "")
	assert.Error(t, err)
}

func TestRunStore_SQLite(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	recordedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return recordedAt }

	start := time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)
	runID, err := store.BeginRun("apache", start, map[string]any{"min_stars": 200})
	require.NoError(t, err)
	assert.Positive(t, runID)

	for _, res := range sampleResults() {
		require.NoError(t, store.RecordOutcome(runID, res))
	}
	require.NoError(t, store.EndRun(runID, start.Add(2*time.Second), 1, 3))

	runs, err := store.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, "apache", run.Organization)
	assert.True(t, run.StartTime.Equal(start))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(2000), *run.RunDurationMs)
	assert.Equal(t, int32(1), run.TotalAccepted)
	assert.Equal(t, int32(3), run.TotalCandidate)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"min_stars":200}`, *run.ConfigParams)

	outcomes, err := store.GetAllOutcomes()
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	// Ordered by repository name
	assert.Equal(t, "broken", outcomes[0].Repository)
	assert.True(t, outcomes[0].Preexisting)
	require.NotNil(t, outcomes[0].Reasons)
	assert.Equal(t, "timeout", *outcomes[0].Reasons)
	assert.Equal(t, "kept", outcomes[1].Repository)
	assert.Nil(t, outcomes[1].Reasons)
	assert.Equal(t, int32(900), outcomes[1].Stars)
	assert.Equal(t, "legacy", outcomes[2].Repository)
	assert.Equal(t, "rejected_build_system", outcomes[2].Outcome)
	require.NotNil(t, outcomes[2].Reasons)
	assert.Equal(t, "no maven; ant", *outcomes[2].Reasons)
	assert.True(t, outcomes[2].RecordedAt.Equal(recordedAt))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, runID, status.LastRunID)
	assert.Equal(t, 1, status.TotalAccepted)
	assert.Equal(t, int64(3), status.TableSizes[outcomesTable])
	assert.True(t, status.OldestRunTime.Equal(start))
}

func TestRunStore_DuplicateOutcome(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	runID, err := store.BeginRun("org", time.Now(), nil)
	require.NoError(t, err)
	res := sampleResults()[0]
	require.NoError(t, store.RecordOutcome(runID, res))
	assert.Error(t, store.RecordOutcome(runID, res))
}

func TestRunStore_EndUnknownRun(t *testing.T) {
	store, err := NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, store.EndRun(42, time.Now(), 0, 0))
}

func TestExportRuns(t *testing.T) {
	dir := t.TempDir()
	store, err := NewRunStore(schema.SQLiteBackend, filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	assert.Error(t, ExportRuns(store, ""))
	assert.ErrorContains(t, ExportRuns(store, filepath.Join(dir, "export")), "no run data")

	runID, err := store.BeginRun("apache", time.Now(), nil)
	require.NoError(t, err)
	for _, res := range sampleResults() {
		require.NoError(t, store.RecordOutcome(runID, res))
	}
	require.NoError(t, store.EndRun(runID, time.Now(), 1, 3))

	base := filepath.Join(dir, "export")
	require.NoError(t, ExportRuns(store, base))

	runs, err := pq.ReadFile[parquet.Run](base + ".runs.parquet")
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	outcomes, err := pq.ReadFile[parquet.Outcome](base + ".outcomes.parquet")
	require.NoError(t, err)
	assert.Len(t, outcomes, 3)
}

func TestClearRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Missing file is fine
	assert.NoError(t, ClearRuns(schema.SQLiteBackend, dbPath, ""))
	assert.Error(t, ClearRuns(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearRuns(schema.NoneBackend, "", ""))
	assert.Error(t, ClearRuns("oracle", "", ""))
}

func TestMigrateRuns_NoneBackend(t *testing.T) {
	err := MigrateRuns(schema.NoneBackend, "", -1)
	assert.ErrorContains(t, err, "migrations are not supported for NoneBackend")
}

func TestMigrateRuns_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	require.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	// Idempotent at latest
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, -1))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 1))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 0))
	assert.NoError(t, MigrateRuns(schema.SQLiteBackend, dbPath, 2))

	// A migrated database is usable by the store
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	_, err = store.BeginRun("org", time.Now(), nil)
	assert.NoError(t, err)
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`repodigger_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"repodigger_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"repodigger_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))
}
