package schema

// Custom string types for type safety.
type (
	// BuildSystem represents a build tool detected in a project tree.
	BuildSystem string

	// AcquisitionOutcome represents the terminal state of a candidate in one run.
	AcquisitionOutcome string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for run tracking.
	DatabaseBackend string
)

// All build systems recognized by the classifier.
const (
	MavenBuild  BuildSystem = "maven"
	GradleBuild BuildSystem = "gradle"
	AntBuild    BuildSystem = "ant"
	BazelBuild  BuildSystem = "bazel"
)

// BuildSystemOrder is the stable order used when reporting detected systems.
var BuildSystemOrder = []BuildSystem{MavenBuild, GradleBuild, AntBuild, BazelBuild}

// All acquisition outcomes. Exactly one applies to every candidate.
const (
	Accepted             AcquisitionOutcome = "accepted"
	RejectedBuildSystem  AcquisitionOutcome = "rejected_build_system"
	FailedClone          AcquisitionOutcome = "failed_clone"
	SkippedQuotaExceeded AcquisitionOutcome = "skipped_quota_exceeded"
)

// OutcomeOrder is the stable order used in summaries.
var OutcomeOrder = []AcquisitionOutcome{Accepted, RejectedBuildSystem, FailedClone, SkippedQuotaExceeded}

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All run store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes is the set of output modes accepted on the command line.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends is the set of run store backends accepted on the command line.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Files and directories produced under the organization projects directory.
const (
	LogFileName           = "repodigger.log"
	FailedLedgerName      = "failed_or_skipped_projects.txt"
	HistoryDirName        = "git_log"
	TestCommitDirName     = "c4t"
	NoTestLedgerName      = "no_test_commit_repos.txt"
	MergedCorpusName      = "all_test_commit_log.csv"
	MergedCorpusParquet   = "all_test_commit_log.parquet"
	HistoryFileSuffix     = "_git_log.csv"
	TestCommitFileSuffix  = "_test_commit_log.csv"
	ProjectsDirNameSuffix = "-projects"
)

// HistoryHeader is the column layout of every per-repository history table.
var HistoryHeader = []string{"Commit Hash", "Date", "Author Name", "Author Email", "Added Lines", "Deleted Lines", "File Path"}

// CorpusHeader is the column layout of the merged corpus table.
var CorpusHeader = append([]string{"Project"}, HistoryHeader...)

// FilePathColumn is the history column the test predicate is evaluated against.
const FilePathColumn = "File Path"
