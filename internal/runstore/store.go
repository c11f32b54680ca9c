package runstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/gitsize/schema"
)

// BeginRun creates a new run and returns its unique ID.
func (s *Store) BeginRun(repoPath, ref string, startTime time.Time, configParams map[string]any) (int64, error) {
	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s (repo_path, ref, started_at, config_params) VALUES (?, ?, ?, ?)`,
		quoteTableName(runsTable, s.backend))
	args := []any{repoPath, ref, formatTime(startTime, s.backend), string(configJSON)}

	var runID int64
	switch s.backend {
	case schema.PostgreSQLBackend:
		err = s.db.QueryRow(rebind(query+" RETURNING run_id", s.backend), args...).Scan(&runID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = s.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// RecordSample stores one measured (or failed) sample for a run.
func (s *Store) RecordSample(runID int64, sample schema.SampleOutput) error {
	var uncompressed, errorKind, errorMessage any
	if sample.UncompressedBytes != nil {
		uncompressed = int64(*sample.UncompressedBytes)
	}
	if sample.ErrorKind != "" {
		errorKind = sample.ErrorKind
		errorMessage = sample.Error
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, sample_date, commit_id, commit_time, packed_bytes,
		                uncompressed_bytes, error_kind, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTableName(samplesTable, s.backend))
	_, err := s.db.Exec(rebind(query, s.backend),
		runID, sample.Date, sample.CommitID, sample.CommitTime, int64(sample.PackedBytes),
		uncompressed, errorKind, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to insert sample %s of run %d: %w", sample.Date, runID, err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (s *Store) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	quotedTableName := quoteTableName(runsTable, s.backend)

	// First, get the start time to calculate duration
	started := timeScanner{backend: s.backend}
	query := fmt.Sprintf(`SELECT started_at FROM %s WHERE run_id = ?`, quotedTableName)
	if err := s.db.QueryRow(rebind(query, s.backend), runID).Scan(started.dest()); err != nil {
		return fmt.Errorf("failed to get started_at for run %d: %w", runID, err)
	}
	startTime, err := started.value()
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(*startTime).Milliseconds()

	update := fmt.Sprintf(`
		UPDATE %s SET finished_at = ?, duration_ms = ?, head_commit = ?, sampling = ?,
		              total_commits = ?, sample_count = ?, failed_count = ?
		WHERE run_id = ?
	`, quotedTableName)
	_, err = s.db.Exec(rebind(update, s.backend),
		formatTime(endTime, s.backend), durationMs, summary.HeadCommit, string(summary.Sampling),
		summary.TotalCommits, summary.SampleCount, summary.FailedCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetAllRuns retrieves all runs from the store, oldest first.
func (s *Store) GetAllRuns() ([]schema.RunRecord, error) {
	query := fmt.Sprintf(`SELECT run_id, repo_path, ref, head_commit, sampling, started_at, finished_at,
		duration_ms, total_commits, sample_count, failed_count, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var headCommit, sampling sql.NullString
		started := timeScanner{backend: s.backend}
		finished := timeScanner{backend: s.backend}
		if err := rows.Scan(&record.RunID, &record.RepoPath, &record.Ref, &headCommit, &sampling,
			started.dest(), finished.dest(), &record.DurationMs, &record.TotalCommits,
			&record.SampleCount, &record.FailedCount, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		record.HeadCommit = headCommit.String
		record.Sampling = sampling.String

		startTime, err := started.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartedAt = *startTime
		}
		if record.FinishedAt, err = finished.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllSamples retrieves all samples from the store, ordered by run and date.
func (s *Store) GetAllSamples() ([]schema.SampleRecord, error) {
	query := fmt.Sprintf(`SELECT run_id, sample_date, commit_id, commit_time, packed_bytes,
		uncompressed_bytes, error_kind, error_message
		FROM %s ORDER BY run_id, sample_date`, quoteTableName(samplesTable, s.backend))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SampleRecord
	for rows.Next() {
		var record schema.SampleRecord
		if err := rows.Scan(&record.RunID, &record.SampleDate, &record.CommitID, &record.CommitTime,
			&record.PackedBytes, &record.UncompressedBytes, &record.ErrorKind, &record.ErrorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}
	return results, nil
}

// GetStatus returns status information about the run store.
func (s *Store) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		TableSizes: make(map[string]int64),
	}
	runs := quoteTableName(runsTable, s.backend)

	if err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runs)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: s.backend}
		row := s.db.QueryRow(fmt.Sprintf("SELECT run_id, started_at FROM %s ORDER BY run_id DESC LIMIT 1", runs))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.value()
		if err != nil {
			return status, err
		}
		status.LastRunTime = *lastTime

		oldest := timeScanner{backend: s.backend}
		row = s.db.QueryRow(fmt.Sprintf("SELECT started_at FROM %s ORDER BY run_id ASC LIMIT 1", runs))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.value()
		if err != nil {
			return status, err
		}
		status.OldestRun = *oldestTime
	}

	// Get table sizes
	for _, table := range []string{runsTable, samplesTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, s.backend))
		if err := s.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalSamples = status.TableSizes[samplesTable]
	return status, nil
}

// Clear removes all runs and samples while keeping the tables.
func (s *Store) Clear() error {
	for _, table := range []string{samplesTable, runsTable} {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", quoteTableName(table, s.backend))); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
