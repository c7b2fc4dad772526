package history

import (
	_ "embed"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/Codegass/repodigger/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/numstat.log
var numstatFixture []byte

const hash40 = "0123456789abcdef0123456789abcdef01234567"

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected LineKind
	}{
		{"header", hash40 + ",2021-01-01,Jane Doe,jane@x.com", Header},
		{"header with comma in author", hash40 + ",2021-01-01,Doe, Jane,jane@x.com", Header},
		{"39 char hash is not a header", hash40[:39] + ",2021-01-01,Jane Doe,jane@x.com", Unrecognized},
		{"41 char hash is not a header", hash40 + "0,2021-01-01,Jane Doe,jane@x.com", Unrecognized},
		{"uppercase hash is not a header", strings.ToUpper(hash40) + ",2021-01-01,Jane Doe,jane@x.com", Unrecognized},
		{"three fields is not a header", hash40 + ",2021-01-01,Jane Doe", Unrecognized},
		{"stat", "2\t1\tsrc/test/java/FooTest.java", Stat},
		{"binary stat", "-\t-\tlogo.png", Stat},
		{"two tab fields", "2\tsrc/Foo.java", Unrecognized},
		{"four tab fields", "2\t1\tsrc/Foo.java\textra", Unrecognized},
		{"blank", "", Unrecognized},
		{"header wins over stat", hash40 + ",2021-01-01,Jane\tDoe,jane\t@x.com", Header},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyLine(tt.line))
		})
	}
}

func TestParse_SingleRecord(t *testing.T) {
	raw := hash40 + ",2021-01-01,Jane Doe,jane@x.com\n2\t1\tsrc/test/java/FooTest.java\n"

	records := Parse([]byte(raw))
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, hash40, rec.Hash)
	assert.Equal(t, "2021-01-01", rec.Date)
	assert.Equal(t, "Jane Doe", rec.AuthorName)
	assert.Equal(t, "jane@x.com", rec.AuthorEmail)
	assert.Equal(t, 2, rec.Added)
	assert.Equal(t, 1, rec.Deleted)
	assert.Equal(t, "src/test/java/FooTest.java", rec.FilePath)
}

func TestParse_StatBeforeHeaderIsSkipped(t *testing.T) {
	raw := "-\t3\tREADME.md\n" + hash40 + ",2021-01-01,Jane Doe,jane@x.com\n1\t0\tA.java\n"

	records := Parse([]byte(raw))
	require.Len(t, records, 1, "the orphan stat line must not produce a record")
	assert.Equal(t, "A.java", records[0].FilePath)
}

func TestParse_OnlyOrphanStat(t *testing.T) {
	assert.Empty(t, Parse([]byte("-\t3\tREADME.md\n")))
	assert.Empty(t, Parse(nil))
}

func TestParse_Fixture(t *testing.T) {
	records := Parse(numstatFixture)
	require.Len(t, records, 5, "the merge commit without stats yields nothing")

	// Every record keeps the header that immediately preceded it.
	assert.Equal(t, "0123456789abcdef0123456789abcdef01234567", records[0].Hash)
	assert.Equal(t, records[0].CommitHeader, records[1].CommitHeader)
	assert.Equal(t, 10, records[0].Added)
	assert.Equal(t, 2, records[0].Deleted)

	binary := records[2]
	assert.Equal(t, "docs/logo.png", binary.FilePath)
	assert.Equal(t, 0, binary.Added, "- maps to 0")
	assert.Equal(t, 0, binary.Deleted, "- maps to 0")
	assert.Equal(t, "Doe", binary.AuthorName)
	assert.Equal(t, " John,john@x.com", binary.AuthorEmail, "extra commas spill into the last field")

	last := records[4]
	assert.Equal(t, "abcdefabcdefabcdefabcdefabcdefabcdefabcd", last.Hash)
	assert.Equal(t, "legacy/a,b,c/Old.java", last.FilePath, "paths may contain commas")
}

func TestParse_CRLF(t *testing.T) {
	raw := hash40 + ",2021-01-01,Jane Doe,jane@x.com\r\n4\t4\tsrc/A.java\r\n"
	records := Parse([]byte(raw))
	require.Len(t, records, 1)
	assert.Equal(t, "jane@x.com", records[0].AuthorEmail)
	assert.Equal(t, "src/A.java", records[0].FilePath)
}

func TestParse_OverlongLineIsSkipped(t *testing.T) {
	second := "fedcba9876543210fedcba9876543210fedcba98"
	raw := hash40 + ",2021-01-01,Jane Doe,jane@x.com\n" +
		"1\t0\tsrc/A.java\n" +
		"2\t2\t" + strings.Repeat("x", 2*maxLineBytes) + "\n\n" +
		second + ",2021-01-02,John Roe,john@x.com\n" +
		"3\t1\tsrc/B.java\n"

	records := Parse([]byte(raw))
	require.Len(t, records, 2)
	assert.Equal(t, "src/A.java", records[0].FilePath)
	assert.Equal(t, second, records[1].Hash)
	assert.Equal(t, "src/B.java", records[1].FilePath)
	assert.Equal(t, 3, records[1].Added)
}

func TestScan_LastLineWithoutNewline(t *testing.T) {
	var paths []string
	err := Scan(strings.NewReader(hash40+",2021-01-01,Jane Doe,jane@x.com\n5\t0\tsrc/C.java"), func(rec schema.FileChangeRecord) error {
		paths = append(paths, rec.FilePath)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/C.java"}, paths)
}

func TestScan_ReaderError(t *testing.T) {
	broken := io.MultiReader(strings.NewReader(hash40+",2021-01-01,Jane Doe,jane@x.com\n"), iotest.ErrReader(errors.New("disk gone")))
	err := Scan(broken, func(schema.FileChangeRecord) error { return nil })
	assert.ErrorContains(t, err, "disk gone")
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 0, parseCount("-"))
	assert.Equal(t, 0, parseCount("abc"))
	assert.Equal(t, 0, parseCount("-5"))
	assert.Equal(t, 0, parseCount(""))
	assert.Equal(t, 42, parseCount("42"))
}

func TestScan_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := Scan(strings.NewReader(string(numstatFixture)), func(schema.FileChangeRecord) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestSummarize(t *testing.T) {
	s := Summarize(Parse(numstatFixture))
	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 3, s.Commits)
	assert.Equal(t, 2, s.Authors)
	assert.Equal(t, 19, s.Added)
	assert.Equal(t, 4, s.Deleted)
}

func TestLineKind_String(t *testing.T) {
	assert.Equal(t, "header", Header.String())
	assert.Equal(t, "stat", Stat.String())
	assert.Equal(t, "unrecognized", Unrecognized.String())
}
