package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Codegass/repodigger/core/acquire"
	"github.com/Codegass/repodigger/core/corpus"
	"github.com/Codegass/repodigger/internal/artifact"
	"github.com/Codegass/repodigger/internal/clone"
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/internal/parquet"
	"github.com/Codegass/repodigger/internal/quota"
	"github.com/Codegass/repodigger/internal/runstore"
	"github.com/Codegass/repodigger/internal/search"
	"github.com/Codegass/repodigger/schema"
	"github.com/spf13/cobra"
)

// runCmd performs a full acquisition run for one organization.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search, clone and vet an organization's repositories, then optionally mine their history",
	Long: `Search GitHub for an organization's active Java repositories and clone each one.

Every clone is checked for its build system. Only projects built with Maven or Gradle,
and nothing else, are kept. Rejected or failed clones are deleted. Cloning stops once
the disk holding the download folder passes the quota threshold.

With --export-git-log, every kept repository's history is exported, commits that touch
src/test/**/*Test*.java are extracted, and the subsets are merged into one corpus.

Outputs (under <download-folder>/<organization>-projects):
  failed_or_skipped_projects.txt
  git_log/<repo>_git_log.csv
  git_log/c4t/<repo>_test_commit_log.csv
  git_log/c4t/no_test_commit_repos.txt
  git_log/c4t/all_test_commit_log.csv
  repodigger.log

Examples:
  # Acquire only
  repodigger run --organization apache --download-folder ~/corpus

  # Acquire and mine test commits with 8 workers
  repodigger run -o apache -d ~/corpus --export-git-log --workers 8

  # Publish the corpus to MinIO after the run
  repodigger run -o apache -d ~/corpus --export-git-log \
    --publish-endpoint localhost:9000 --publish-bucket corpus --publish-use-ssl=false`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return executeRun(cmd.Context())
	},
}

// executeRun drives search, acquisition, mining and publishing for cfg.
func executeRun(ctx context.Context) error {
	start := time.Now()
	if err := contract.ValidateRunConfig(cfg, start); err != nil {
		return err
	}

	orgDir := cfg.OrgDir()
	if err := os.MkdirAll(orgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", orgDir, err)
	}

	logger := contract.NewConsoleLogger()
	if err := logger.TeeFile(filepath.Join(orgDir, schema.LogFileName)); err != nil {
		contract.LogWarn("Could not open run log", err)
	}
	defer func() { _ = logger.Close() }()

	store := runstore.Manager.GetRunStore()
	runID := beginRun(store, logger, start)

	logger.Infof("🔎 Searching %s for %s repositories with at least %d stars pushed since %s",
		cfg.Organization, cfg.Language, cfg.MinStars, cfg.Cutoff.Format("2006-01-02"))
	source, err := search.NewGitHubSource(cfg.GitHubToken, cfg.APIBaseURL, cfg.Language, logger)
	if err != nil {
		return err
	}
	candidates, err := source.Fetch(ctx, cfg.Organization, cfg.MinStars, cfg.Cutoff)
	if err != nil {
		endRun(store, logger, runID, 0, 0)
		return fmt.Errorf("repository search failed: %w", err)
	}
	if len(candidates) == 0 {
		endRun(store, logger, runID, 0, 0)
		return fmt.Errorf("no repositories found for organization %s", cfg.Organization)
	}
	logger.Infof("Found %d candidate repositories", len(candidates))

	pipeline := acquire.New(orgDir, clone.NewGoGitCloner(cfg.GitHubToken), quota.NewMonitor(cfg.DownloadFolder, cfg.QuotaThreshold), logger)
	pipeline.CloneTimeout = cfg.CloneTimeout
	report, err := pipeline.Run(ctx, candidates)
	if err != nil {
		logger.Errorf("%v", err)
	}
	recordOutcomes(store, logger, runID, report)

	if len(report.CleanupErrors) > 0 {
		logger.Warnf("%d directories could not be cleaned up", len(report.CleanupErrors))
	}
	artifacts := []string{pipeline.LedgerPath}

	if cfg.ExportGitLog {
		mined, err := mineCorpus(ctx, logger, orgDir, report.Accepted())
		if err != nil {
			logger.Errorf("%v", err)
		}
		artifacts = append(artifacts, mined...)
	}

	accepted := len(report.Accepted())
	endRun(store, logger, runID, accepted, len(candidates))

	if cfg.PublishEnabled() {
		publishArtifacts(ctx, logger, runID, artifacts)
	}

	logger.Infof("✅ Done: %d of %d repositories kept", accepted, len(candidates))
	return outwriter.WriteAcquisitionSummary(report, outwriter.SummaryOptions{
		Output:     cfg.Output,
		OutputFile: cfg.OutputFile,
		UseColors:  cfg.UseColors,
		Width:      cfg.Width,
		RunID:      runID,
	}, time.Since(start))
}

func beginRun(store contract.RunStore, logger *contract.Logger, start time.Time) int64 {
	if store == nil {
		return 0
	}
	runID, err := store.BeginRun(cfg.Organization, start, cfg.Params())
	if err != nil {
		logger.Warnf("could not record run start: %v", err)
		return 0
	}
	return runID
}

func recordOutcomes(store contract.RunStore, logger *contract.Logger, runID int64, report schema.AcquisitionReport) {
	if store == nil || runID == 0 {
		return
	}
	for _, res := range report.Results {
		if err := store.RecordOutcome(runID, res); err != nil {
			logger.Warnf("could not record outcome for %s: %v", res.Candidate.Name, err)
		}
	}
}

func endRun(store contract.RunStore, logger *contract.Logger, runID int64, accepted, total int) {
	if store == nil || runID == 0 {
		return
	}
	if err := store.EndRun(runID, time.Now(), accepted, total); err != nil {
		logger.Warnf("could not record run end: %v", err)
	}
}

// mineCorpus runs the history stages over the accepted checkouts and returns
// the artifacts it produced.
func mineCorpus(ctx context.Context, logger *contract.Logger, orgDir string, accepted []schema.RepositoryCandidate) ([]string, error) {
	miner := &corpus.Miner{
		OrgDir:  orgDir,
		Git:     contract.NewLocalGitClient(),
		Workers: cfg.Workers,
		Logger:  logger,
	}

	projects := make([]string, 0, len(accepted))
	for _, c := range accepted {
		projects = append(projects, c.Name)
	}
	if _, err := miner.ExportHistories(ctx, projects); err != nil {
		return nil, err
	}
	if _, _, err := miner.ExtractTestCommits(ctx); err != nil {
		return nil, err
	}

	artifacts := []string{filepath.Join(miner.TestCommitDir(), schema.NoTestLedgerName)}
	merged, stats, err := miner.MergeCorpus()
	if err != nil {
		return artifacts, err
	}
	if merged.Output == "" {
		return artifacts, nil
	}
	artifacts = append(artifacts, merged.Output)

	if cfg.CorpusParquet {
		path := filepath.Join(miner.TestCommitDir(), schema.MergedCorpusParquet)
		if err := parquet.WriteCorpusParquet(parquet.ConvertCorpusRecords(merged.Corpus), path); err != nil {
			logger.Warnf("could not write %s: %v", path, err)
		} else {
			logger.Infof("💾 Corpus Parquet saved to %s", path)
			artifacts = append(artifacts, path)
		}
	}

	mode := cfg.Output
	if mode == schema.ParquetOut {
		mode = schema.TextOut
	}
	if err := outwriter.WriteAuthorStats(stats, mode, ""); err != nil {
		logger.Warnf("could not print author stats: %v", err)
	}
	return artifacts, nil
}

func publishArtifacts(ctx context.Context, logger *contract.Logger, runID int64, files []string) {
	pub, err := artifact.NewS3Publisher(artifact.S3Config{
		Endpoint:  cfg.PublishEndpoint,
		AccessKey: cfg.PublishAccessKey,
		SecretKey: cfg.PublishSecretKey,
		Bucket:    cfg.PublishBucket,
		UseSSL:    cfg.PublishUseSSL,
	})
	if err != nil {
		logger.Errorf("artifact publishing disabled: %v", err)
		return
	}
	keys, err := artifact.PublishAll(ctx, pub, cfg.Organization, runID, files)
	for _, key := range keys {
		logger.Infof("📦 Published s3://%s/%s", cfg.PublishBucket, key)
	}
	if err != nil {
		logger.Errorf("artifact publishing stopped: %v", err)
	}
}
