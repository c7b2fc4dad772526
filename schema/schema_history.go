package schema

import "strconv"

// CommitHeader identifies one commit in a repository's history.
type CommitHeader struct {
	Hash        string `json:"hash"`
	Date        string `json:"date"` // verbatim YYYY-MM-DD from git
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// FileChangeRecord is one file touched by one commit, with the header denormalized onto it.
type FileChangeRecord struct {
	CommitHeader
	Added    int    `json:"added"`
	Deleted  int    `json:"deleted"`
	FilePath string `json:"file_path"`
}

// Row returns the record in HistoryHeader column order.
func (r FileChangeRecord) Row() []string {
	return []string{
		r.Hash,
		r.Date,
		r.AuthorName,
		r.AuthorEmail,
		strconv.Itoa(r.Added),
		strconv.Itoa(r.Deleted),
		r.FilePath,
	}
}

// CorpusRecord is one row of the merged corpus.
type CorpusRecord struct {
	Project string `json:"project"`
	FileChangeRecord
}

// Row returns the record in CorpusHeader column order.
func (r CorpusRecord) Row() []string {
	return append([]string{r.Project}, r.FileChangeRecord.Row()...)
}

// AuthorStat is the number of distinct test-commit author emails in a project.
type AuthorStat struct {
	Project string `json:"project"`
	Authors int    `json:"authors"`
}

// ExtractResult summarizes the test-commit extraction of one repository.
type ExtractResult struct {
	Project string `json:"project"`
	Total   int    `json:"total"`
	Matches int    `json:"matches"`
	Output  string `json:"output,omitempty"`
}
