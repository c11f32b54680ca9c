package schema

import "time"

// RunRecord represents a row from the gitsize_runs table.
type RunRecord struct {
	RunID        int64
	RepoPath     string
	Ref          string
	HeadCommit   string
	Sampling     string
	StartedAt    time.Time
	FinishedAt   *time.Time
	DurationMs   *int64
	TotalCommits int64
	SampleCount  int64
	FailedCount  int64
	ConfigParams *string
}

// SampleRecord represents a row from the gitsize_samples table.
type SampleRecord struct {
	RunID             int64
	SampleDate        string
	CommitID          string
	CommitTime        int64
	PackedBytes       int64
	UncompressedBytes *int64
	ErrorKind         *string
	ErrorMessage      *string
}

// RunSummary is what a finished run reports back to the store.
type RunSummary struct {
	HeadCommit   string
	Sampling     Interval
	TotalCommits int
	SampleCount  int
	FailedCount  int
}
