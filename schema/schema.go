// Package schema has configs, models and global variables for all parts of gitsize.
package schema

import "time"

// DateFormat is the calendar date layout used for sample dates everywhere.
const DateFormat = "2006-01-02"

// CommitRecord is a single entry of the commit history walk.
// It only carries cheap metadata: the full object id and the committer timestamp.
type CommitRecord struct {
	ID        string `json:"id"`        // Full lowercase hex object id (40 or 64 chars)
	Timestamp int64  `json:"timestamp"` // Committer time in seconds since epoch
}

// Time returns the commit timestamp as a UTC time.
func (c CommitRecord) Time() time.Time {
	return time.Unix(c.Timestamp, 0).UTC()
}

// SamplePoint pairs a target date with the commit resolved for it.
type SamplePoint struct {
	TargetDate time.Time `json:"target_date"`
	CommitID   string    `json:"commit_id"`
	CommitTime int64     `json:"commit_time"`
}

// Date returns the calendar date of the sample (YYYY-MM-DD, UTC).
func (s SamplePoint) Date() string {
	return s.TargetDate.UTC().Format(DateFormat)
}

// SizeMeasurement holds the sizes reported for a single commit.
type SizeMeasurement struct {
	PackedBytes       uint64  `json:"packed_bytes"`
	UncompressedBytes *uint64 `json:"uncompressed_bytes,omitempty"` // nil unless requested
}

// SizeResult is the outcome of measuring one sample point.
// Err is set only when the measurement failed and the run continued anyway.
type SizeResult struct {
	Sample            SamplePoint `json:"sample"`
	PackedBytes       uint64      `json:"packed_bytes"`
	UncompressedBytes *uint64     `json:"uncompressed_bytes,omitempty"`
	Err               error       `json:"-"`
}

// Failed reports whether this sample could not be measured.
func (r SizeResult) Failed() bool {
	return r.Err != nil
}

// SizeHistory is the full report of one analysis run, ordered by sample date.
type SizeHistory struct {
	RepoPath         string         `json:"repo_path"`
	Ref              string         `json:"ref"`
	HeadCommit       string         `json:"head_commit"`
	FirstCommit      CommitRecord   `json:"first_commit"`
	LastCommit       CommitRecord   `json:"last_commit"`
	TotalCommits     int            `json:"total_commits"`
	SpanYears        float64        `json:"span_years"`
	Interval         Interval       `json:"interval"`
	WantUncompressed bool           `json:"uncompressed"`
	Results          []SizeResult   `json:"-"`
	Duration         time.Duration  `json:"duration"`
	Samples          []SampleOutput `json:"samples"` // Serializable view of Results
}

// SampleOutput is the serializable view of a SizeResult.
type SampleOutput struct {
	Date              string  `json:"date"`
	CommitID          string  `json:"commit_id"`
	CommitTime        int64   `json:"commit_time"`
	PackedBytes       uint64  `json:"packed_bytes"`
	UncompressedBytes *uint64 `json:"uncompressed_bytes,omitempty"`
	ErrorKind         string  `json:"error_kind,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// ReachableObject is one line of the reachable-object listing.
// Name is the path hint git prints for trees and blobs; it may be empty.
type ReachableObject struct {
	ID   string
	Name string
}

// ObjectSize is one line reported by the batch size reporter.
// Missing is set when the object store does not have the requested object.
type ObjectSize struct {
	ID      string
	Type    string
	Size    uint64
	Missing bool
}
