package contract

import (
	"context"
	"iter"

	"github.com/huangsam/gitsize/schema"
	"github.com/stretchr/testify/mock"
)

// MockGitClient is a testify mock of GitClient.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// SeqFrom returns an iterator yielding items and then err, if non-nil.
// It is handy for programming MockGitClient streams.
func SeqFrom[T any](items []T, err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		if err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// ResolveCommit implements the GitClient interface.
func (m *MockGitClient) ResolveCommit(ctx context.Context, repoPath string, ref string) (string, bool, error) {
	ret := m.Called(ctx, repoPath, ref)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

// PackDir implements the GitClient interface.
func (m *MockGitClient) PackDir(ctx context.Context, repoPath string) (string, error) {
	ret := m.Called(ctx, repoPath)
	return ret.String(0), ret.Error(1)
}

// ListHistory implements the GitClient interface.
func (m *MockGitClient) ListHistory(ctx context.Context, repoPath string, startID string) iter.Seq2[schema.CommitRecord, error] {
	ret := m.Called(ctx, repoPath, startID)
	seq, _ := ret.Get(0).(iter.Seq2[schema.CommitRecord, error])
	return seq
}

// DiskUsage implements the GitClient interface.
func (m *MockGitClient) DiskUsage(ctx context.Context, repoPath string, commitID string) (uint64, error) {
	ret := m.Called(ctx, repoPath, commitID)
	size, _ := ret.Get(0).(uint64)
	return size, ret.Error(1)
}

// ListReachableObjects implements the GitClient interface.
func (m *MockGitClient) ListReachableObjects(ctx context.Context, repoPath string, commitID string) iter.Seq2[schema.ReachableObject, error] {
	ret := m.Called(ctx, repoPath, commitID)
	seq, _ := ret.Get(0).(iter.Seq2[schema.ReachableObject, error])
	return seq
}

// BatchObjectSize implements the GitClient interface.
// The ids iterator is drained before the programmed stream is returned.
func (m *MockGitClient) BatchObjectSize(ctx context.Context, repoPath string, ids iter.Seq2[string, error]) iter.Seq2[schema.ObjectSize, error] {
	ret := m.Called(ctx, repoPath, mock.Anything)
	seq, _ := ret.Get(0).(iter.Seq2[schema.ObjectSize, error])
	return func(yield func(schema.ObjectSize, error) bool) {
		for _, err := range ids {
			if err != nil {
				yield(schema.ObjectSize{}, err)
				return
			}
		}
		if seq != nil {
			seq(yield)
		}
	}
}
