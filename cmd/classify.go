package cmd

import (
	"fmt"
	"os"

	"github.com/Codegass/repodigger/core/buildsys"
	"github.com/Codegass/repodigger/internal/outwriter"
	"github.com/spf13/cobra"
)

// classifyCmd runs the build-system classifier on a local directory.
var classifyCmd = &cobra.Command{
	Use:   "classify <dir>",
	Short: "Report whether a project directory is built with Maven/Gradle only",
	Long: `Walk a project tree and report which build systems it uses.

A project qualifies when it has a pom.xml or build.gradle(.kts) and no build.xml,
BUILD(.bazel) or WORKSPACE anywhere below the root. Version-control directories are
not searched.

Examples:
  repodigger classify ./commons-lang
  repodigger classify ./some-repo --output json`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	RunE: func(_ *cobra.Command, args []string) error {
		mode, err := outputMode()
		if err != nil {
			return err
		}
		verdict, err := buildsys.Classify(args[0])
		if err != nil {
			return fmt.Errorf("failed to classify %s: %w", args[0], err)
		}
		return outwriter.WriteVerdict(os.Stdout, args[0], verdict, mode)
	},
}
