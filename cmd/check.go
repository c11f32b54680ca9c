package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/gitsize/core"
	"github.com/huangsam/gitsize/internal/contract"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD policy enforcement.
var checkCmd = &cobra.Command{
	Use:   "check [repo-path]",
	Short: "Enforce size limits for CI/CD pipelines (fails build on violations)",
	Long: `Measure the size of a ref and compare it against limits.

Designed for CI/CD integration - exits with status 1 when a limit is exceeded.
Only the target ref is measured (plus --base when a growth limit is set), so the
check stays fast even on long histories.

Limits:
- --max-size         packed size of --ref
- --max-uncompressed uncompressed size of --ref
- --max-growth       packed growth in percent from --base to --ref

Examples:
  # Fail when the repository grows past 500MB
  gitsize check --max-size 500MB

  # Block pull requests that grow the repository by more than 5 percent
  gitsize check --base origin/main --ref HEAD --max-growth 5`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteSizeCheck(rootCtx, cfg, contract.NewLocalGitClient())
		if errors.Is(err, core.ErrCheckFailed) {
			_ = Shutdown()
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Size check failed", err)
		}
	},
}
