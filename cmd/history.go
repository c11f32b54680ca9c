package cmd

import (
	"github.com/huangsam/gitsize/core"
	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/internal/outwriter"
	"github.com/spf13/cobra"
)

// historyCmd samples the repository over time and reports its size at each point.
var historyCmd = &cobra.Command{
	Use:   "history [repo-path]",
	Short: "Show how the repository size changed over its history",
	Long: `Walk the commit history of a ref, pick one commit per sampling date and measure
how much disk space the repository took at that commit.

Sampling is yearly for histories longer than six years and monthly otherwise,
unless --sampling, --yearly or --monthly says otherwise.

Sizes:
- Cumulative size - packed bytes of every object reachable from the commit
- Uncompressed size - sum of the object sizes, with --uncompressed (slow)

Examples:
  # Size history of the current repository
  gitsize history

  # Monthly history of a release branch, with uncompressed sizes
  gitsize history /path/to/repo --ref release --monthly --uncompressed

  # Keep going when single samples fail, and write a chart
  gitsize history --policy continue --plot size.html

  # Export for spreadsheets
  gitsize history --output csv --output-file size.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx := rootCtx
		bar := outwriter.NewProgressBar(cfg)
		if callback := bar.Callback(); callback != nil {
			ctx = core.WithProgress(ctx, callback)
		}
		err := core.ExecuteSizeHistory(ctx, cfg, contract.NewLocalGitClient(), outwriter.NewOutWriter(), runStore)
		bar.Stop()
		if err != nil {
			contract.LogFatal("Size history failed", err)
		}
	},
}
