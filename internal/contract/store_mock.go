package contract

import (
	"time"

	"github.com/huangsam/gitsize/schema"
	"github.com/stretchr/testify/mock"
)

// MockRunStore is a testify mock of RunStore.
type MockRunStore struct {
	mock.Mock
}

var _ RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(repoPath, ref string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(repoPath, ref, startTime, configParams)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

// RecordSample implements the RunStore interface.
func (m *MockRunStore) RecordSample(runID int64, sample schema.SampleOutput) error {
	args := m.Called(runID, sample)
	return args.Error(0)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	args := m.Called(runID, endTime, summary)
	return args.Error(0)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.StoreStatus, error) {
	args := m.Called()
	status, _ := args.Get(0).(schema.StoreStatus)
	return status, args.Error(1)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllSamples implements the RunStore interface.
func (m *MockRunStore) GetAllSamples() ([]schema.SampleRecord, error) {
	args := m.Called()
	samples, _ := args.Get(0).([]schema.SampleRecord)
	return samples, args.Error(1)
}

// Clear implements the RunStore interface.
func (m *MockRunStore) Clear() error {
	return m.Called().Error(0)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	return m.Called().Error(0)
}
