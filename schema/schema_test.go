package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSamplePointDate(t *testing.T) {
	// A target late in the day east of UTC still reports the UTC calendar date
	zone := time.FixedZone("UTC+9", 9*3600)
	p := SamplePoint{TargetDate: time.Date(2021, 3, 1, 2, 0, 0, 0, zone)}
	assert.Equal(t, "2021-02-28", p.Date())
}

func TestCommitRecordTime(t *testing.T) {
	rec := CommitRecord{Timestamp: 1577836800}
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), rec.Time())
}

func TestSizeResultFailed(t *testing.T) {
	assert.False(t, SizeResult{}.Failed())
	assert.True(t, SizeResult{Err: errors.New("boom")}.Failed())
}

func TestValidEnums(t *testing.T) {
	for _, mode := range []SamplingMode{AutoSampling, YearlySampling, MonthlySampling} {
		assert.Contains(t, ValidSamplingModes, mode)
	}
	for _, out := range []OutputMode{CSVOut, TextOut, JSONOut, ParquetOut} {
		assert.Contains(t, ValidOutputModes, out)
	}
	for _, policy := range []FailurePolicy{FailFast, ContinueOnError} {
		assert.Contains(t, ValidFailurePolicies, policy)
	}
	for _, backend := range []DatabaseBackend{SQLiteBackend, MySQLBackend, PostgreSQLBackend, NoneBackend} {
		assert.Contains(t, ValidDatabaseBackends, backend)
	}
	assert.NotContains(t, ValidSamplingModes, SamplingMode("weekly"))
}
