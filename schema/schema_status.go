package schema

import "time"

// StoreStatus represents the status of the run store.
type StoreStatus struct {
	Backend      string           `json:"backend"`
	Connected    bool             `json:"connected"`
	TotalRuns    int              `json:"total_runs"`
	LastRunID    int64            `json:"last_run_id"`
	LastRunTime  time.Time        `json:"last_run_time"`
	OldestRun    time.Time        `json:"oldest_run_time"`
	TotalSamples int64            `json:"total_samples"`
	TableSizes   map[string]int64 `json:"table_sizes"`
}
