// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.ResultWriter = &OutWriter{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteHistory prints a size history using the configured output format,
// then renders the HTML plot when one was requested.
func (ow *OutWriter) WriteHistory(history *schema.SizeHistory, cfg *contract.Config, duration time.Duration) error {
	if err := WriteSizeHistory(history, cfg, duration); err != nil {
		return err
	}
	if cfg.PlotFile == "" {
		return nil
	}
	return WriteSizePlot(history, cfg.PlotFile)
}
