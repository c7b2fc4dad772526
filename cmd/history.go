package cmd

import (
	"fmt"
	"os"

	"github.com/Codegass/repodigger/core/corpus"
	"github.com/Codegass/repodigger/core/history"
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/Codegass/repodigger/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyCmd parses the numstat history of one local repository.
var historyCmd = &cobra.Command{
	Use:   "history <repo-dir>",
	Short: "Parse a repository's Git history into per-file change records",
	Long: `Read the full numstat history of a local clone and flatten it into one record per
file per commit. A summary is always printed. Use --output-file to also write the
records as CSV (or --output csv for stdout) with the same columns as git_log/<repo>_git_log.csv.

Examples:
  repodigger history ./commons-lang
  repodigger history ./commons-lang --tests-only --output-file commons-lang_tests.csv`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		repoPath := args[0]
		raw, err := contract.NewLocalGitClient().GetHistoryLog(cmd.Context(), repoPath)
		if err != nil {
			return fmt.Errorf("failed to read history of %s: %w", repoPath, err)
		}

		records := history.Parse(raw)
		if viper.GetBool("tests-only") {
			records = corpus.Extract(records)
		}
		summary := history.Summarize(records)
		fmt.Fprintf(os.Stderr, "🧠 %s: %d commits, %d file changes, %d authors, +%d/-%d lines\n",
			repoPath, summary.Commits, summary.Records, summary.Authors, summary.Added, summary.Deleted)

		mode, err := outputMode()
		if err != nil {
			return err
		}
		outputFile := viper.GetString("output-file")
		if outputFile != "" || mode == schema.CSVOut {
			return outwriter.WriteHistory(outputFile, records)
		}
		return nil
	},
}
