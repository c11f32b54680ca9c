package outwriter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/gitsize/internal/contract"
)

// LogAnalysisHeader prints a concise, 2-line header before sampling starts.
// It goes to stderr so csv and json output on stdout stay machine readable.
func LogAnalysisHeader(cfg *contract.Config) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}

	measure := "packed"
	if cfg.WantUncompressed {
		measure = "packed + uncompressed"
	}

	if cfg.UseEmojis {
		fmt.Fprintf(os.Stderr, "🔎 Repo: %s (Ref: %s)\n", repoName, cfg.Ref)
		fmt.Fprintf(os.Stderr, "📏 Measuring: %s (Sampling: %s, Workers: %d)\n", measure, cfg.Sampling, cfg.Workers)
		return
	}
	fmt.Fprintf(os.Stderr, "Repo: %s (Ref: %s)\n", repoName, cfg.Ref)
	fmt.Fprintf(os.Stderr, "Measuring: %s (Sampling: %s, Workers: %d)\n", measure, cfg.Sampling, cfg.Workers)
}
