package cmd

import (
	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the gitsize MCP server",
	Long:  `Launch an MCP server that allows AI agents to measure repository size history via standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Progress bars would write over the protocol stream.
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		cfg.Progress = false
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, contract.NewLocalGitClient(), runStore)
	},
}
