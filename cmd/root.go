package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/runstore"
	"github.com/Codegass/repodigger/schema"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "repodigger",
	Short: "Collect Java repositories and mine their test-commit history.",
	Long: `Repodigger searches a GitHub organization for active Java repositories, keeps the
ones built only with Maven or Gradle, and turns their Git history into a corpus of
commits that touched test files.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// A missing .env file is fine; the token can come from the real environment.
	_ = godotenv.Load()

	setConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("REPODIGGER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match
	_ = viper.BindEnv("github-token", "REPODIGGER_GITHUB_TOKEN", "GITHUB_TOKEN")

	// Set defaults in Viper
	viper.SetDefault("min-stars", contract.DefaultMinStars)
	viper.SetDefault("pushed-within-days", contract.DefaultPushedWithinDays)
	viper.SetDefault("language", contract.DefaultLanguage)
	viper.SetDefault("clone-timeout", contract.DefaultCloneTimeout.String())
	viper.SetDefault("quota-threshold", contract.DefaultQuotaThreshold)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("output", string(schema.TextOut))
	viper.SetDefault("run-backend", string(schema.SQLiteBackend))
	viper.SetDefault("run-db-connect", "")
	viper.SetDefault("publish-use-ssl", true)
	viper.SetDefault("color", "yes")
}

// setConfigFile points viper at --config or the default .repodigger.yaml locations.
func setConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".repodigger") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if one is present.
func loadConfigFile() error {
	setConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the run store.
func sharedSetup(_ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Initialize run tracking with validated config
	if err := runstore.InitRunStore(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}
	return nil
}

// outputMode reads and validates the --output flag for the lightweight subcommands.
func outputMode() (schema.OutputMode, error) {
	mode := schema.OutputMode(strings.ToLower(viper.GetString("output")))
	if mode == "" {
		return schema.TextOut, nil
	}
	if _, ok := schema.ValidOutputModes[mode]; !ok {
		return "", fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", mode)
	}
	return mode, nil
}

// Execute runs the root command. An interrupt cancels in-flight clones and git calls.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
