// Package parquet provides data structures and functions for exporting gitsize
// size histories and stored runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/gitsize/schema"
	"github.com/parquet-go/parquet-go"
)

// SizeRun represents a single stored size history run with metadata.
// This struct maps to the gitsize_runs database table.
type SizeRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RepoPath is the absolute path of the analysed repository
	RepoPath string `parquet:"repo_path,snappy"`

	// Ref is the starting ref the history was walked from
	Ref string `parquet:"ref,snappy"`

	// HeadCommit is the commit id Ref resolved to
	HeadCommit string `parquet:"head_commit,snappy"`

	// Sampling is the interval that was actually used (yearly or monthly)
	Sampling string `parquet:"sampling,snappy"`

	// StartedAt is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// FinishedAt is when the run completed (nullable)
	FinishedAt *time.Time `parquet:"finished_at,optional,snappy"`

	// DurationMs is the duration of the run in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	TotalCommits int64 `parquet:"total_commits,snappy"`
	SampleCount  int64 `parquet:"sample_count,snappy"`
	FailedCount  int64 `parquet:"failed_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SizeSample represents the measured size of a repository at one sample date.
// This struct maps to the gitsize_samples database table.
type SizeSample struct {
	// RunID references the parent run; 0 for a direct --output parquet export
	RunID int64 `parquet:"run_id,snappy"`

	// SampleDate is the target calendar date (YYYY-MM-DD)
	SampleDate string `parquet:"sample_date,snappy"`

	// CommitID is the commit the sample date resolved to
	CommitID string `parquet:"commit_id,snappy"`

	// CommitTime is the committer timestamp of CommitID
	CommitTime time.Time `parquet:"commit_time,snappy"`

	// PackedBytes is the on-disk size of all reachable objects
	PackedBytes int64 `parquet:"packed_bytes,snappy"`

	// UncompressedBytes is the total size of reachable blobs (nullable)
	UncompressedBytes *int64 `parquet:"uncompressed_bytes,optional,snappy"`

	// ErrorKind and ErrorMessage are set for failed samples (nullable)
	ErrorKind    *string `parquet:"error_kind,optional,snappy"`
	ErrorMessage *string `parquet:"error_message,optional,snappy"`
}

// WriteRunsParquet writes a slice of SizeRun structs to a Parquet file.
func WriteRunsParquet(data []SizeRun, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error {
		return writeRows(w, data)
	})
}

// WriteSamplesParquet writes a slice of SizeSample structs to a Parquet file.
func WriteSamplesParquet(data []SizeSample, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error {
		return writeRows(w, data)
	})
}

// WriteSamples writes SizeSample rows to an already opened writer.
func WriteSamples(w io.Writer, data []SizeSample) error {
	return writeRows(w, data)
}

// writeFile creates outputPath and hands it to write.
func writeFile(outputPath string, write func(io.Writer) error) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeRows writes rows using a schema inferred from the struct tags of T.
// The writer is closed explicitly since Close flushes the footer.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to SizeRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []SizeRun {
	result := make([]SizeRun, len(records))
	for i, record := range records {
		result[i] = SizeRun{
			RunID:        record.RunID,
			RepoPath:     record.RepoPath,
			Ref:          record.Ref,
			HeadCommit:   record.HeadCommit,
			Sampling:     record.Sampling,
			StartedAt:    record.StartedAt,
			FinishedAt:   record.FinishedAt,
			DurationMs:   record.DurationMs,
			TotalCommits: record.TotalCommits,
			SampleCount:  record.SampleCount,
			FailedCount:  record.FailedCount,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertSampleRecords converts schema.SampleRecord to SizeSample for Parquet export.
func ConvertSampleRecords(records []schema.SampleRecord) []SizeSample {
	result := make([]SizeSample, len(records))
	for i, record := range records {
		result[i] = SizeSample{
			RunID:             record.RunID,
			SampleDate:        record.SampleDate,
			CommitID:          record.CommitID,
			CommitTime:        time.Unix(record.CommitTime, 0).UTC(),
			PackedBytes:       record.PackedBytes,
			UncompressedBytes: record.UncompressedBytes,
			ErrorKind:         record.ErrorKind,
			ErrorMessage:      record.ErrorMessage,
		}
	}
	return result
}

// ConvertSampleOutputs converts the samples of a finished history to SizeSample rows.
func ConvertSampleOutputs(runID int64, samples []schema.SampleOutput) []SizeSample {
	result := make([]SizeSample, len(samples))
	for i, s := range samples {
		row := SizeSample{
			RunID:       runID,
			SampleDate:  s.Date,
			CommitID:    s.CommitID,
			CommitTime:  time.Unix(s.CommitTime, 0).UTC(),
			PackedBytes: int64(s.PackedBytes),
		}
		if s.UncompressedBytes != nil {
			v := int64(*s.UncompressedBytes)
			row.UncompressedBytes = &v
		}
		if s.ErrorKind != "" {
			kind, msg := s.ErrorKind, s.Error
			row.ErrorKind = &kind
			row.ErrorMessage = &msg
		}
		result[i] = row
	}
	return result
}
