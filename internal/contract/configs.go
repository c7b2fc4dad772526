package contract

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Codegass/repodigger/schema"
)

// Default values for configuration.
const (
	DefaultMinStars         = 200
	DefaultPushedWithinDays = 3 * 365
	DefaultLanguage         = "Java"
	DefaultCloneTimeout     = 30 * time.Minute
	DefaultQuotaThreshold   = 90.0
)

// DefaultWorkers is the default number of concurrent history-mining workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated runtime configuration.
type Config struct {
	// Acquisition
	Organization     string
	DownloadFolder   string // absolute
	MinStars         int
	Language         string
	PushedWithinDays int
	Cutoff           time.Time
	CloneTimeout     time.Duration
	QuotaThreshold   float64

	// Hosting API
	GitHubToken string
	APIBaseURL  string

	// History mining
	ExportGitLog  bool
	Workers       int
	CorpusParquet bool

	// Run tracking
	RunBackend   schema.DatabaseBackend
	RunDBConnect string

	// Artifact publishing
	PublishEndpoint  string
	PublishBucket    string
	PublishAccessKey string
	PublishSecretKey string
	PublishUseSSL    bool

	// Presentation
	UseColors  bool
	Output     schema.OutputMode
	OutputFile string
	Width      int
}

// ConfigRawInput holds the raw, unvalidated values merged by Viper from
// defaults, config file, environment and flags.
type ConfigRawInput struct {
	Organization     string  `mapstructure:"organization"`
	DownloadFolder   string  `mapstructure:"download-folder"`
	MinStars         int     `mapstructure:"min-stars"`
	Language         string  `mapstructure:"language"`
	PushedWithinDays int     `mapstructure:"pushed-within-days"`
	CloneTimeout     string  `mapstructure:"clone-timeout"`
	QuotaThreshold   float64 `mapstructure:"quota-threshold"`

	GitHubToken string `mapstructure:"github-token"`
	APIBaseURL  string `mapstructure:"api-base-url"`

	ExportGitLog  bool `mapstructure:"export-git-log"`
	Workers       int  `mapstructure:"workers"`
	CorpusParquet bool `mapstructure:"corpus-parquet"`

	RunBackend   string `mapstructure:"run-backend"`
	RunDBConnect string `mapstructure:"run-db-connect"`

	PublishEndpoint  string `mapstructure:"publish-endpoint"`
	PublishBucket    string `mapstructure:"publish-bucket"`
	PublishAccessKey string `mapstructure:"publish-access-key"`
	PublishSecretKey string `mapstructure:"publish-secret-key"`
	PublishUseSSL    bool   `mapstructure:"publish-use-ssl"`

	Color      string `mapstructure:"color"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
}

// ProcessAndValidate validates the settings shared by every subcommand and
// populates cfg from input.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return validatePublishConfigs(cfg, input)
}

// ValidateRunConfig checks the settings that only the acquisition run needs.
// A missing organization, download folder or credential is fatal at startup.
func ValidateRunConfig(cfg *Config, now time.Time) error {
	if cfg.Organization == "" {
		return fmt.Errorf("organization is required (use --organization or REPODIGGER_ORGANIZATION)")
	}
	if cfg.DownloadFolder == "" {
		return fmt.Errorf("download-folder is required (use --download-folder or REPODIGGER_DOWNLOAD_FOLDER)")
	}
	if cfg.GitHubToken == "" {
		return fmt.Errorf("github token is required (set GITHUB_TOKEN in the environment or a .env file)")
	}
	cfg.Cutoff = now.AddDate(0, 0, -cfg.PushedWithinDays)
	return nil
}

// OrgDir returns the directory that holds every clone and artifact of the organization.
func (c *Config) OrgDir() string {
	return filepath.Join(c.DownloadFolder, c.Organization+schema.ProjectsDirNameSuffix)
}

// HistoryDir returns the directory of the per-repository history tables.
func (c *Config) HistoryDir() string {
	return filepath.Join(c.OrgDir(), schema.HistoryDirName)
}

// TestCommitDir returns the directory of the per-repository test-commit tables.
func (c *Config) TestCommitDir() string {
	return filepath.Join(c.HistoryDir(), schema.TestCommitDirName)
}

// PublishEnabled reports whether artifacts should be uploaded after a run.
func (c *Config) PublishEnabled() bool {
	return c.PublishEndpoint != ""
}

// Params returns the non-secret settings recorded alongside each run.
func (c *Config) Params() map[string]any {
	return map[string]any{
		"organization":       c.Organization,
		"min_stars":          c.MinStars,
		"language":           c.Language,
		"pushed_within_days": c.PushedWithinDays,
		"quota_threshold":    c.QuotaThreshold,
		"clone_timeout":      c.CloneTimeout.String(),
		"export_git_log":     c.ExportGitLog,
		"workers":            c.Workers,
	}
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("run-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Organization = strings.TrimSpace(input.Organization)
	cfg.GitHubToken = strings.TrimSpace(input.GitHubToken)
	cfg.APIBaseURL = input.APIBaseURL
	cfg.ExportGitLog = input.ExportGitLog
	cfg.CorpusParquet = input.CorpusParquet
	cfg.OutputFile = input.OutputFile

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Download folder ---
	if input.DownloadFolder != "" {
		abs, err := filepath.Abs(input.DownloadFolder)
		if err != nil {
			return fmt.Errorf("invalid download-folder %q: %w", input.DownloadFolder, err)
		}
		cfg.DownloadFolder = abs
	}

	// --- 2. Search filters ---
	if input.MinStars < 0 {
		return fmt.Errorf("min-stars cannot be negative (received %d)", input.MinStars)
	}
	cfg.MinStars = input.MinStars

	if input.PushedWithinDays <= 0 {
		return fmt.Errorf("pushed-within-days must be greater than 0 (received %d)", input.PushedWithinDays)
	}
	cfg.PushedWithinDays = input.PushedWithinDays

	cfg.Language = strings.TrimSpace(input.Language)
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}

	// --- 3. Clone timeout and quota ---
	cfg.CloneTimeout = DefaultCloneTimeout
	if input.CloneTimeout != "" {
		d, err := time.ParseDuration(input.CloneTimeout)
		if err != nil {
			return fmt.Errorf("invalid clone-timeout %q: %w", input.CloneTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("clone-timeout must be positive (received %s)", d)
		}
		cfg.CloneTimeout = d
	}

	if input.QuotaThreshold <= 0 || input.QuotaThreshold > 100 {
		return fmt.Errorf("quota-threshold must be in (0, 100] (received %.1f)", input.QuotaThreshold)
	}
	cfg.QuotaThreshold = input.QuotaThreshold

	// --- 4. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 5. Output Validation ---
	cfg.Output = schema.TextOut
	if input.Output != "" {
		cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}
	cfg.Width = input.Width

	return nil
}

// validateBackendConfigs validates the run store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		cfg.RunBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	return ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect)
}

// validatePublishConfigs validates the optional artifact publishing settings.
func validatePublishConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.PublishEndpoint = strings.TrimSpace(input.PublishEndpoint)
	cfg.PublishBucket = strings.TrimSpace(input.PublishBucket)
	cfg.PublishAccessKey = input.PublishAccessKey
	cfg.PublishSecretKey = input.PublishSecretKey
	cfg.PublishUseSSL = input.PublishUseSSL

	if cfg.PublishEndpoint == "" {
		return nil
	}
	if strings.Contains(cfg.PublishEndpoint, "://") {
		return fmt.Errorf("publish-endpoint must be host[:port] without a scheme (received %q)", cfg.PublishEndpoint)
	}
	if cfg.PublishBucket == "" {
		return fmt.Errorf("publish-bucket is required when publish-endpoint is set")
	}
	return nil
}
