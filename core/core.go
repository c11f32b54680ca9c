// Package core has core logic for sampling commit history and measuring repository size.
package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/gitsize/internal/contract"
	"github.com/huangsam/gitsize/internal/outwriter"
	"github.com/huangsam/gitsize/schema"
)

// ExecutorFunc defines the function signature for executing an analysis command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, client contract.GitClient, writer contract.ResultWriter, store contract.RunStore) error

// errNoBitmap is reported when the pack directory has no reachability bitmap.
var errNoBitmap = errors.New("no bitmap index found; size calculations may be slow. Consider running 'git repack -adb'")

// ExecuteSizeHistory runs the size history analysis and writes the results.
// It serves as the main entry point for the 'history' command.
func ExecuteSizeHistory(ctx context.Context, cfg *contract.Config, client contract.GitClient, writer contract.ResultWriter, store contract.RunStore) error {
	start := time.Now()
	if !shouldSuppressHeader(ctx) {
		outwriter.LogAnalysisHeader(cfg)
		if err := CheckBitmapIndex(ctx, client, cfg.RepoPath); err != nil {
			contract.LogWarn("Slow measurement", err)
		}
	}

	runID := beginRun(store, cfg, start)

	history, err := Analyze(ctx, client, AnalyzeOptions{
		RepoPath:         cfg.RepoPath,
		StartRef:         cfg.Ref,
		Mode:             cfg.Sampling,
		WantUncompressed: cfg.WantUncompressed,
		Workers:          cfg.Workers,
		Policy:           cfg.Policy,
		Progress:         progressFromContext(ctx),
	})
	if err != nil {
		endRun(store, runID, nil)
		return err
	}

	recordRun(store, runID, history)
	duration := time.Since(start)
	return writer.WriteHistory(history, cfg, duration)
}

// CheckBitmapIndex returns errNoBitmap when the repository has no *.bitmap pack file.
// Only the hint depends on the result, so lookup failures are ignored.
func CheckBitmapIndex(ctx context.Context, client contract.GitClient, repoPath string) error {
	packDir, err := client.PackDir(ctx, repoPath)
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(packDir)
	if err != nil {
		return errNoBitmap
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".bitmap" {
			return nil
		}
	}
	return errNoBitmap
}

// beginRun starts run tracking if a store is configured. Store failures only warn.
func beginRun(store contract.RunStore, cfg *contract.Config, start time.Time) int64 {
	if store == nil {
		return 0
	}
	runID, err := store.BeginRun(cfg.RepoPath, cfg.Ref, start, cfg.ConfigParams())
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

// recordRun stores every sample of a finished run and closes it.
func recordRun(store contract.RunStore, runID int64, history *schema.SizeHistory) {
	if store == nil || runID <= 0 {
		return
	}
	for _, sample := range history.Samples {
		if err := store.RecordSample(runID, sample); err != nil {
			contract.LogWarn("Recording sample failed", err)
			break
		}
	}
	endRun(store, runID, history)
}

// endRun marks a run as finished; a nil history means the run failed before sampling.
func endRun(store contract.RunStore, runID int64, history *schema.SizeHistory) {
	if store == nil || runID <= 0 {
		return
	}
	var summary schema.RunSummary
	if history != nil {
		summary = schema.RunSummary{
			HeadCommit:   history.HeadCommit,
			Sampling:     history.Interval,
			TotalCommits: history.TotalCommits,
			SampleCount:  len(history.Results),
			FailedCount:  CountFailures(history.Results),
		}
	}
	if err := store.EndRun(runID, time.Now(), summary); err != nil {
		contract.LogWarn("Run tracking completion failed", err)
	}
}
