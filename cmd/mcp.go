package cmd

import (
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the repodigger MCP server",
	Long: `Launch an MCP server over stdio so AI agents can classify build systems, parse
Git histories and summarize test-commit corpora.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(cmd.Context(), contract.NewLocalGitClient(), version)
	},
}
