package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func rec(hash, email, path string) schema.FileChangeRecord {
	return schema.FileChangeRecord{
		CommitHeader: schema.CommitHeader{Hash: hash, Date: "2024-01-01", AuthorName: "dev", AuthorEmail: email},
		Added:        1,
		FilePath:     path,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"src/test/java/com/acme/FooTest.java", true},
		{"module/src/test/java/TestUtils.java", true},
		{"src/test/java/com/acme/Helper.java", false},
		{"src/main/java/com/acme/FooTest.java", false},
		{"src/test/java/FooTest.kt", false},
		{"src/test/java/FooTest.java.orig", false},
		{"SRC/TEST/java/FooTest.java", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsTestFile(tt.path))
		})
	}
}

func TestExtractPreservesOrder(t *testing.T) {
	records := []schema.FileChangeRecord{
		rec(hashA, "a@x", "src/test/java/BTest.java"),
		rec(hashA, "a@x", "README.md"),
		rec(hashB, "b@x", "src/test/java/ATest.java"),
	}
	got := Extract(records)
	require.Len(t, got, 2)
	assert.Equal(t, "src/test/java/BTest.java", got[0].FilePath)
	assert.Equal(t, "src/test/java/ATest.java", got[1].FilePath)
	assert.Empty(t, Extract(nil))
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "demo"+schema.HistoryFileSuffix)
	out := filepath.Join(dir, "c4t", "demo"+schema.TestCommitFileSuffix)
	require.NoError(t, outwriter.WriteHistoryCSV(table, []schema.FileChangeRecord{
		rec(hashA, "a@x", "src/test/java/FooTest.java"),
		rec(hashA, "a@x", "src/main/java/Foo.java"),
	}))

	result, err := ExtractFile(table, out)
	require.NoError(t, err)
	assert.Equal(t, "demo", result.Project)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Matches)
	assert.Equal(t, out, result.Output)

	subset, err := ReadHistoryCSV(out)
	require.NoError(t, err)
	require.Len(t, subset, 1)
	assert.Equal(t, "src/test/java/FooTest.java", subset[0].FilePath)
	assert.Equal(t, 1, subset[0].Added)
}

func TestExtractFileNoMatches(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "plain"+schema.HistoryFileSuffix)
	out := filepath.Join(dir, "plain"+schema.TestCommitFileSuffix)
	require.NoError(t, outwriter.WriteHistoryCSV(table, []schema.FileChangeRecord{rec(hashA, "a@x", "README.md")}))

	result, err := ExtractFile(table, out)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Matches)
	assert.Empty(t, result.Output)
	assert.NoFileExists(t, out)
}

func TestExtractFileErrors(t *testing.T) {
	dir := t.TempDir()
	header := strings.Join(schema.HistoryHeader, ",") + "\n"

	writeFile(t, filepath.Join(dir, "zero.csv"), "")
	writeFile(t, filepath.Join(dir, "nopath.csv"), "Commit Hash,Date\nabc,2024-01-01\n")
	writeFile(t, filepath.Join(dir, "ragged.csv"), header+"a,b\n")

	tests := []struct {
		name     string
		file     string
		expected error
	}{
		{"missing", "absent.csv", ErrHistoryMissing},
		{"zero byte", "zero.csv", ErrHistoryEmpty},
		{"no file path column", "nopath.csv", ErrHistoryMalformed},
		{"ragged rows", "ragged.csv", ErrHistoryMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractFile(filepath.Join(dir, tt.file), filepath.Join(dir, "out.csv"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.expected), err.Error())
		})
	}
}

func TestExtractFileHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "quiet"+schema.HistoryFileSuffix)
	writeFile(t, table, strings.Join(schema.HistoryHeader, ",")+"\n")

	out := filepath.Join(dir, "quiet"+schema.TestCommitFileSuffix)
	result, err := ExtractFile(table, out)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Matches)
	assert.NoFileExists(t, out)
}

func TestExtractTestCommitsEmptyHistoryGoesToLedger(t *testing.T) {
	miner := &Miner{OrgDir: t.TempDir(), Git: &contract.MockGitClient{}, Workers: 1, Logger: contract.DiscardLogger()}

	// A repository with no commits exports a header-only table
	require.NoError(t, outwriter.WriteHistoryCSV(filepath.Join(miner.HistoryDir(), "fresh"+schema.HistoryFileSuffix), nil))
	writeFile(t, filepath.Join(miner.HistoryDir(), "blank"+schema.HistoryFileSuffix), "")

	outcomes, noTest, err := miner.ExtractTestCommits(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, "blank", outcomes[0].Project)
	assert.ErrorIs(t, outcomes[0].Err, ErrHistoryEmpty)
	assert.Equal(t, "fresh", outcomes[1].Project)
	assert.NoError(t, outcomes[1].Err)
	assert.Equal(t, 0, outcomes[1].Matches)
	assert.Equal(t, []string{"fresh"}, noTest)

	ledger, err := outwriter.ReadLedger(filepath.Join(miner.TestCommitDir(), schema.NoTestLedgerName))
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ledger)
}

func TestMerge(t *testing.T) {
	subsets := map[string][]schema.FileChangeRecord{
		"alpha": {rec(hashA, "a@x", "src/test/java/ATest.java"), rec(hashB, "b@x", "src/test/java/BTest.java")},
		"beta":  {rec(hashA, "c@x", "src/test/java/CTest.java")},
	}
	merged := Merge(subsets, []string{"beta", "alpha", "gamma"})

	require.Len(t, merged, 3)
	assert.Equal(t, "beta", merged[0].Project)
	assert.Equal(t, "alpha", merged[1].Project)
	assert.Equal(t, "alpha", merged[2].Project)
	assert.Equal(t, "src/test/java/BTest.java", merged[2].FilePath)
}

func TestAuthorStats(t *testing.T) {
	corpus := []schema.CorpusRecord{
		{Project: "A", FileChangeRecord: rec(hashA, "one@x", "src/test/java/ATest.java")},
		{Project: "A", FileChangeRecord: rec(hashB, "two@x", "src/test/java/ATest.java")},
		{Project: "A", FileChangeRecord: rec(hashB, "two@x", "src/test/java/BTest.java")},
		{Project: "C", FileChangeRecord: rec(hashA, "one@x", "src/test/java/CTest.java")},
	}
	stats := AuthorStats(corpus)
	assert.Equal(t, []schema.AuthorStat{{Project: "A", Authors: 2}, {Project: "C", Authors: 1}}, stats)
	assert.Empty(t, AuthorStats(nil))
}

func TestMergeFiles(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, schema.MergedCorpusName)
	writeFile(t, out, "stale")

	require.NoError(t, outwriter.WriteHistoryCSV(filepath.Join(dir, "alpha"+schema.TestCommitFileSuffix), []schema.FileChangeRecord{
		rec(hashA, "a@x", "src/test/java/ATest.java"),
		rec(hashB, "b@x", "src/test/java/BTest.java"),
	}))
	require.NoError(t, outwriter.WriteHistoryCSV(filepath.Join(dir, "beta"+schema.TestCommitFileSuffix), []schema.FileChangeRecord{
		rec(hashA, "a@x", "src/test/java/CTest.java"),
	}))
	writeFile(t, filepath.Join(dir, "empty"+schema.TestCommitFileSuffix), "")

	result, err := MergeFiles(dir, out)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Inputs)
	assert.Len(t, result.Skipped, 1)
	assert.Equal(t, out, result.Output)
	require.Len(t, result.Corpus, 3)

	corpus, err := ReadCorpusCSV(out)
	require.NoError(t, err)
	assert.Equal(t, result.Corpus, corpus)
	assert.Equal(t, "alpha", corpus[0].Project)
	assert.Equal(t, "beta", corpus[2].Project)
}

func TestMergeFilesEmpty(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, schema.MergedCorpusName)
	writeFile(t, out, "stale")

	result, err := MergeFiles(dir, out)
	require.NoError(t, err)
	assert.Zero(t, result.Inputs)
	assert.Empty(t, result.Output)
	assert.NoFileExists(t, out)
}

func TestMinerStages(t *testing.T) {
	orgDir := t.TempDir()
	gitClient := &contract.MockGitClient{}
	miner := &Miner{OrgDir: orgDir, Git: gitClient, Workers: 2, Logger: contract.DiscardLogger()}

	withTests := hashA + ",2024-01-01,Ann,ann@x\n" +
		"3\t1\tsrc/test/java/FooTest.java\n" +
		"2\t0\tsrc/main/java/Foo.java\n\n" +
		hashB + ",2024-01-02,Bob,bob@x\n" +
		"-\t-\tsrc/test/java/BarTest.java\n"
	noTests := hashA + ",2024-01-01,Ann,ann@x\n1\t1\tREADME.md\n"

	gitClient.On("GetHistoryLog", mock.Anything, filepath.Join(orgDir, "alpha")).Return([]byte(withTests), nil)
	gitClient.On("GetHistoryLog", mock.Anything, filepath.Join(orgDir, "beta")).Return([]byte(noTests), nil)
	gitClient.On("GetHistoryLog", mock.Anything, filepath.Join(orgDir, "broken")).Return(nil, errors.New("not a git repository"))

	// A table left by an earlier run is reused as is
	require.NoError(t, outwriter.WriteHistoryCSV(filepath.Join(miner.HistoryDir(), "cached"+schema.HistoryFileSuffix), []schema.FileChangeRecord{
		rec(hashA, "carl@x", "src/test/java/CachedTest.java"),
	}))

	exports, err := miner.ExportHistories(context.Background(), []string{"beta", "broken", "alpha", "cached"})
	require.NoError(t, err)
	require.Len(t, exports, 4)
	assert.Equal(t, "alpha", exports[0].Project)
	assert.Equal(t, 3, exports[0].Records)
	assert.Error(t, exports[2].Err)
	assert.True(t, exports[3].Reused)
	gitClient.AssertNotCalled(t, "GetHistoryLog", mock.Anything, filepath.Join(orgDir, "cached"))

	outcomes, noTest, err := miner.ExtractTestCommits(context.Background())
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{"beta"}, noTest)
	assert.Equal(t, 2, outcomes[0].Matches)

	ledger, err := outwriter.ReadLedger(filepath.Join(miner.TestCommitDir(), schema.NoTestLedgerName))
	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, ledger)

	merged, stats, err := miner.MergeCorpus()
	require.NoError(t, err)
	assert.Len(t, merged.Corpus, 3)
	assert.Equal(t, []schema.AuthorStat{{Project: "alpha", Authors: 2}, {Project: "cached", Authors: 1}}, stats)
	assert.FileExists(t, filepath.Join(miner.TestCommitDir(), schema.MergedCorpusName))
}

func TestRunPool(t *testing.T) {
	jobs := []int{1, 2, 3, 4, 5}
	results := runPool(3, jobs, func(n int) int { return n * n })
	assert.ElementsMatch(t, []int{1, 4, 9, 16, 25}, results)
	assert.Empty(t, runPool(4, []int{}, func(n int) int { return n }))
}
