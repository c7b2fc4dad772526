// Package history turns the raw output of
// `git log --date=short --numstat --pretty=format:%H,%ad,%aN,%ae`
// into typed per-file change records.
//
// The output interleaves two line shapes with no explicit delimiter:
//
//	<40 hex hash>,<YYYY-MM-DD>,<author name>,<author email>
//	<added>\t<deleted>\t<path>
//
// A header line is recognized only by splitting it into at most four comma
// fields and checking that the first is a 40 character lowercase hex string.
// Author names may contain commas, in which case the extra text spills into
// the email field, exactly as the split produces it.
//
// Known limitation: the header check runs first and wins. A stat line whose
// text splits into four comma fields with a 40 character hex first field
// would be taken for a header. Well-formed git output never produces one
// because numstat lines start with a count and a tab.
package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Codegass/repodigger/schema"
)

// LineKind is the shape of one line of history output.
type LineKind int

// All line kinds. Header is checked before Stat.
const (
	Unrecognized LineKind = iota
	Header
	Stat
)

// String implements fmt.Stringer.
func (k LineKind) String() string {
	switch k {
	case Header:
		return "header"
	case Stat:
		return "stat"
	default:
		return "unrecognized"
	}
}

const (
	hashLength     = 40
	headerFields   = 4
	statFields     = 3
	maxLineBytes   = 1024 * 1024
	initialBufSize = 64 * 1024
)

// ClassifyLine reports the shape of a single line without extracting fields.
func ClassifyLine(line string) LineKind {
	if _, ok := parseHeader(line); ok {
		return Header
	}
	if strings.Contains(line, "\t") && len(strings.Split(line, "\t")) == statFields {
		return Stat
	}
	return Unrecognized
}

// parseHeader extracts a commit header. Fields are copied verbatim.
func parseHeader(line string) (schema.CommitHeader, bool) {
	parts := strings.SplitN(line, ",", headerFields)
	if len(parts) != headerFields || !isCommitHash(parts[0]) {
		return schema.CommitHeader{}, false
	}
	return schema.CommitHeader{
		Hash:        parts[0],
		Date:        parts[1],
		AuthorName:  parts[2],
		AuthorEmail: parts[3],
	}, true
}

// isCommitHash reports whether s is exactly 40 lowercase hex digits.
func isCommitHash(s string) bool {
	if len(s) != hashLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// parseStatLine splits a numstat line into its counts and path.
func parseStatLine(line string) (int, int, string, bool) {
	parts := strings.Split(line, "\t")
	if len(parts) != statFields {
		return 0, 0, "", false
	}
	return parseCount(parts[0]), parseCount(parts[1]), parts[2], true
}

// parseCount converts a numstat count to int. Binary files report "-",
// which maps to 0 like any other unparseable or negative value.
func parseCount(s string) int {
	if s == "-" {
		return 0
	}
	if val, err := strconv.Atoi(s); err == nil && val >= 0 {
		return val
	}
	return 0
}

// Parser holds the "current header" state of one history stream.
// The zero value is ready to use.
type Parser struct {
	current schema.CommitHeader
	seen    bool
}

// Feed consumes one line and returns a record when the line is a stat line
// that belongs to a previously seen header.
func (p *Parser) Feed(line string) (schema.FileChangeRecord, bool) {
	if strings.TrimSpace(line) == "" {
		return schema.FileChangeRecord{}, false
	}
	switch ClassifyLine(line) {
	case Header:
		p.current, _ = parseHeader(line)
		p.seen = true
	case Stat:
		if !p.seen {
			return schema.FileChangeRecord{}, false
		}
		added, deleted, path, _ := parseStatLine(line)
		return schema.FileChangeRecord{
			CommitHeader: p.current,
			Added:        added,
			Deleted:      deleted,
			FilePath:     path,
		}, true
	}
	return schema.FileChangeRecord{}, false
}

// Parse converts a complete history output into records, in stream order.
// It never fails: lines that match neither shape, and lines longer than
// maxLineBytes, are skipped.
func Parse(raw []byte) []schema.FileChangeRecord {
	var records []schema.FileChangeRecord
	// An in-memory reader cannot fail and the callback never does
	_ = Scan(bytes.NewReader(raw), func(rec schema.FileChangeRecord) error {
		records = append(records, rec)
		return nil
	})
	return records
}

// Scan streams history output from r and calls fn for every record.
// Lines longer than maxLineBytes are dropped and scanning goes on.
// It stops at the first error returned by fn or by the reader.
func Scan(r io.Reader, fn func(schema.FileChangeRecord) error) error {
	reader := bufio.NewReaderSize(r, initialBufSize)

	var p Parser
	for {
		line, skipped, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}
		if skipped {
			continue
		}
		rec, ok := p.Feed(line)
		if !ok {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// readLine returns the next line without its LF or CRLF terminator. A line
// over maxLineBytes is consumed in full and reported as skipped. The final
// line may lack a terminator; io.EOF is returned only once nothing is left.
func readLine(r *bufio.Reader) (string, bool, error) {
	var buf []byte
	skipped := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !skipped {
			if len(buf)+len(chunk) > maxLineBytes {
				skipped, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if len(buf) == 0 && !skipped {
				return "", false, io.EOF
			}
		case err != nil:
			return "", false, err
		}
		buf = bytes.TrimSuffix(buf, []byte("\n"))
		buf = bytes.TrimSuffix(buf, []byte("\r"))
		return string(buf), skipped, nil
	}
}

// Summary is a compact description of a parsed history.
type Summary struct {
	Commits int `json:"commits"`
	Records int `json:"records"`
	Authors int `json:"authors"`
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

// Summarize counts distinct commits and author emails across records.
// Commits without file stats are not visible here.
func Summarize(records []schema.FileChangeRecord) Summary {
	commits := make(map[string]struct{})
	authors := make(map[string]struct{})
	s := Summary{Records: len(records)}
	for _, rec := range records {
		commits[rec.Hash] = struct{}{}
		authors[rec.AuthorEmail] = struct{}{}
		s.Added += rec.Added
		s.Deleted += rec.Deleted
	}
	s.Commits = len(commits)
	s.Authors = len(authors)
	return s
}
