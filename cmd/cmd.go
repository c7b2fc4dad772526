// Package cmd defines the command-line interface for repodigger.
package cmd

import (
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("run-backend", string(schema.SQLiteBackend), "Run tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for mysql/postgresql (mysql needs parseTime=true, e.g. user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of runCmd to Viper
	runCmd.Flags().StringP("organization", "o", "", "GitHub organization to search")
	runCmd.Flags().StringP("download-folder", "d", "", "Base folder that receives <org>-projects")
	runCmd.Flags().Int("min-stars", contract.DefaultMinStars, "Minimum stargazer count")
	runCmd.Flags().Bool("export-git-log", false, "Mine histories and build the test-commit corpus after cloning")
	runCmd.Flags().String("language", contract.DefaultLanguage, "Primary language filter for the search")
	runCmd.Flags().Int("pushed-within-days", contract.DefaultPushedWithinDays, "Only keep repositories pushed within this many days")
	runCmd.Flags().String("clone-timeout", contract.DefaultCloneTimeout.String(), "Deadline for a single clone")
	runCmd.Flags().Float64("quota-threshold", contract.DefaultQuotaThreshold, "Stop cloning once disk usage exceeds this percentage")
	runCmd.Flags().Int("workers", contract.DefaultWorkers, "Number of concurrent history-mining workers")
	runCmd.Flags().String("api-base-url", "", "GitHub API base URL override (GitHub Enterprise)")
	runCmd.Flags().Bool("corpus-parquet", false, "Also write the merged corpus as Parquet")
	runCmd.Flags().String("publish-endpoint", "", "S3-compatible endpoint (host:port) to upload artifacts to")
	runCmd.Flags().String("publish-bucket", "", "Bucket for published artifacts")
	runCmd.Flags().String("publish-access-key", "", "Access key for the artifact store")
	runCmd.Flags().String("publish-secret-key", "", "Secret key for the artifact store")
	runCmd.Flags().Bool("publish-use-ssl", true, "Use TLS when talking to the artifact store")
	if err := viper.BindPFlags(runCmd.Flags()); err != nil {
		contract.LogFatal("Error binding run flags", err)
	}

	// Bind all flags of historyCmd to Viper
	historyCmd.Flags().Bool("tests-only", false, "Keep only records that touch Java test sources")
	if err := viper.BindPFlags(historyCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
