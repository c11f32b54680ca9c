package outwriter

import (
	"os"
	"sync"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// ProgressBar renders sampling progress on stderr.
// The bar starts on the first update, once the number of samples is known.
// A nil *ProgressBar is valid and does nothing.
type ProgressBar struct {
	mu  sync.Mutex
	bar *pterm.ProgressbarPrinter
}

// NewProgressBar returns a progress bar when progress is enabled and stderr
// is a terminal, nil otherwise.
func NewProgressBar(cfg *contract.Config) *ProgressBar {
	if !cfg.Progress || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return &ProgressBar{}
}

// Update moves the bar to done out of total samples.
func (p *ProgressBar) Update(done, total int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(total).
			WithTitle("Measuring samples").
			WithWriter(os.Stderr).
			WithRemoveWhenDone(true).
			Start()
		if err != nil {
			contract.LogDebug("progress bar disabled: %v", err)
			return
		}
		p.bar = bar
	}
	if delta := done - p.bar.Current; delta > 0 {
		p.bar.Add(delta)
	}
}

// Callback returns Update as a progress hook, or nil for a nil bar.
func (p *ProgressBar) Callback() func(done, total int) {
	if p == nil {
		return nil
	}
	return p.Update
}

// Stop clears the bar from the terminal.
func (p *ProgressBar) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_, _ = p.bar.Stop()
		p.bar = nil
	}
}
