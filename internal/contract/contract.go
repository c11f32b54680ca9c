// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"iter"
	"time"

	"github.com/huangsam/gitsize/schema"
)

// GitClient defines the object store operations needed for size analysis.
// This allows the core analysis logic to be tested without needing a real git executable.
//
// Streaming methods return iterators. Breaking out of the loop early stops
// the underlying process; an error is yielded at most once, as the last element.
type GitClient interface {
	// --- Reference Resolution ---

	// ResolveCommit resolves ref to a full commit id.
	// It returns ok=false when ref names no commit (e.g. an unborn HEAD).
	ResolveCommit(ctx context.Context, repoPath string, ref string) (id string, ok bool, err error)

	// PackDir returns the absolute path of the repository's pack directory.
	PackDir(ctx context.Context, repoPath string) (string, error)

	// --- History ---

	// ListHistory yields commit ids and committer timestamps reachable from startID, newest first.
	ListHistory(ctx context.Context, repoPath string, startID string) iter.Seq2[schema.CommitRecord, error]

	// --- Size Accounting ---

	// DiskUsage returns the on-disk size of all objects reachable from commitID.
	DiskUsage(ctx context.Context, repoPath string, commitID string) (uint64, error)

	// ListReachableObjects yields every object reachable from commitID.
	ListReachableObjects(ctx context.Context, repoPath string, commitID string) iter.Seq2[schema.ReachableObject, error]

	// BatchObjectSize yields type and uncompressed size for each id read from ids.
	BatchObjectSize(ctx context.Context, repoPath string, ids iter.Seq2[string, error]) iter.Seq2[schema.ObjectSize, error]
}

// RunStore defines the interface for tracking analysis runs and their samples.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(repoPath, ref string, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordSample stores one measured (or failed) sample for a run
	RecordSample(runID int64, sample schema.SampleOutput) error

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the store
	GetStatus() (schema.StoreStatus, error)

	// GetAllRuns returns every stored run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllSamples returns every stored sample, ordered by run and date
	GetAllSamples() ([]schema.SampleRecord, error)

	// Clear removes all runs and samples
	Clear() error

	// Close closes the underlying connection
	Close() error
}

// ResultWriter renders a finished analysis in the configured output format.
// This allows the output layer to be swapped out in tests.
type ResultWriter interface {
	WriteHistory(history *schema.SizeHistory, cfg *Config, duration time.Duration) error
}
