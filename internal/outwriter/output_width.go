package outwriter

import (
	"os"

	"github.com/huangsam/gitsize/internal/contract"
	"golang.org/x/term"
)

// Widths of the commit column.
const (
	shortCommitWidth = 10
	fullCommitWidth  = 40
	wideTableWidth   = 120 // Terminals at least this wide show full commit ids
)

// GetTerminalWidth returns the configured width override, the detected
// terminal width of stdout, or a conservative default of 80.
func GetTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetCommitColumnWidth returns how many characters of each commit id the table shows.
func GetCommitColumnWidth(cfg *contract.Config) int {
	if GetTerminalWidth(cfg) >= wideTableWidth {
		return fullCommitWidth
	}
	return shortCommitWidth
}

// truncateID shortens id to at most width characters.
func truncateID(id string, width int) string {
	if len(id) <= width {
		return id
	}
	return id[:width]
}
