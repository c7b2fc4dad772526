package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/schema"
)

// Merge concatenates per-project subsets in the given order, tagging each
// record with its project. Projects missing from subsets contribute nothing.
func Merge(subsets map[string][]schema.FileChangeRecord, order []string) []schema.CorpusRecord {
	total := 0
	for _, project := range order {
		total += len(subsets[project])
	}
	out := make([]schema.CorpusRecord, 0, total)
	for _, project := range order {
		for _, rec := range subsets[project] {
			out = append(out, schema.CorpusRecord{Project: project, FileChangeRecord: rec})
		}
	}
	return out
}

// AuthorStats counts distinct author emails per project, sorted by project.
// Projects without rows do not appear.
func AuthorStats(corpus []schema.CorpusRecord) []schema.AuthorStat {
	emails := make(map[string]map[string]struct{})
	for _, rec := range corpus {
		set, ok := emails[rec.Project]
		if !ok {
			set = make(map[string]struct{})
			emails[rec.Project] = set
		}
		set[rec.AuthorEmail] = struct{}{}
	}

	stats := make([]schema.AuthorStat, 0, len(emails))
	for project, set := range emails {
		stats = append(stats, schema.AuthorStat{Project: project, Authors: len(set)})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Project < stats[j].Project })
	return stats
}

// SubsetFiles lists the per-project test-commit tables in dir, sorted by name.
// The merged corpus itself is never included.
func SubsetFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+schema.TestCommitFileSuffix))
	if err != nil {
		return nil, err
	}
	out := matches[:0]
	for _, m := range matches {
		if filepath.Base(m) == schema.MergedCorpusName {
			continue
		}
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

// MergeResult describes what MergeFiles did.
type MergeResult struct {
	Corpus  []schema.CorpusRecord
	Inputs  int
	Skipped []string
	Output  string
}

// MergeFiles merges every subset table in dir into outPath. Any previous
// merged table is removed first; no file is written when the merge is empty.
func MergeFiles(dir, outPath string) (MergeResult, error) {
	var result MergeResult
	if err := os.Remove(outPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return result, fmt.Errorf("failed to remove old corpus %s: %w", outPath, err)
	}

	files, err := SubsetFiles(dir)
	if err != nil {
		return result, fmt.Errorf("failed to list subsets in %s: %w", dir, err)
	}

	subsets := make(map[string][]schema.FileChangeRecord, len(files))
	order := make([]string, 0, len(files))
	for _, f := range files {
		project := ProjectName(f, schema.TestCommitFileSuffix)
		records, err := ReadHistoryCSV(f)
		if err != nil {
			result.Skipped = append(result.Skipped, f)
			continue
		}
		subsets[project] = records
		order = append(order, project)
	}
	result.Inputs = len(order)
	result.Corpus = Merge(subsets, order)
	if len(result.Corpus) == 0 {
		return result, nil
	}
	if err := outwriter.WriteCorpusCSV(outPath, result.Corpus); err != nil {
		return result, err
	}
	result.Output = outPath
	return result, nil
}

// ReadCorpusCSV reads a merged corpus table written by MergeFiles.
func ReadCorpusCSV(path string) ([]schema.CorpusRecord, error) {
	var corpus []schema.CorpusRecord
	err := readTable(path, func(cols columnIndex, row []string) {
		corpus = append(corpus, schema.CorpusRecord{
			Project:          cols.get(row, schema.CorpusHeader[0]),
			FileChangeRecord: cols.record(row),
		})
	})
	if err != nil {
		return nil, err
	}
	return corpus, nil
}
